// Package fsm реализует детерминированную машину состояний workflow.
//
// Все допустимые переходы заданы фиксированной таблицей
// (состояние, действие) → состояние. Машина не выполняет I/O,
// не делает runtime-решений и не бросает ошибок: запрос
// недопустимого перехода возвращает Transition{Valid: false}
// и оставляет текущее состояние без изменений.
//
// Машина синхронна; сериализация конкурентного доступа —
// обязанность вызывающего кода.
package fsm
