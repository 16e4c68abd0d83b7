// Package scheduler реализует отложенный запуск бронирований.
//
// Scheduler хранит расписания в памяти и периодически проверяет
// записи с истекшим next_due_at; для каждой вызывается запуск
// бронирования через engine.
//
// Структура:
//   - scheduler.go — Scheduler (Add, Remove, List, Tick, цикл)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    Starter: eng,
//	    Logger:  logger,
//	})
//	sched.Start(ctx)
//	defer sched.Stop()
//
// Расписания живут столько же, сколько процесс: система обслуживает
// одного оператора, и потеря расписаний при рестарте допустима.
package scheduler
