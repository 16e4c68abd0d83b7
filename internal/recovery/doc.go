// Package recovery сохраняет контрольную точку workflow для
// диагностики после аварийного завершения процесса.
//
// Контрольная точка пишется в last_state.json при каждой смене
// состояния и удаляется при штатном завершении. После перезапуска
// она используется только для отчёта оператору: бронирование всегда
// начинается заново, восстановление середины платёжного шага
// небезопасно.
package recovery
