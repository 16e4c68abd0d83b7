// Package retry реализует выполнение операций с повторными попытками
// и exponential backoff.
//
// Executor изолирован от предметной области: принимает произвольную
// функцию и политику повторов. Используется обработчиками шагов
// workflow для сетевых и браузерных операций.
//
// Контракт:
//   - всего выполняется не более MaxRetries+1 попыток;
//   - задержка между попытками растёт умножением на Multiplier и
//     ограничена сверху MaxDelay;
//   - после последней неудачной попытки задержки нет;
//   - ожидание прерывается отменой context;
//   - ShouldRetry позволяет прекратить повторы для невосстановимых
//     ошибок.
package retry
