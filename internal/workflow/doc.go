// Package workflow реализует оркестратор бронирования.
//
// Оркестратор крутит цикл над машиной состояний: для каждого активного
// состояния выполняется обработчик шага, успех продвигает машину
// действием Next, ошибка переводит в Failed. Паузы и остановки
// обрабатываются между шагами, отмена context завершает цикл действием
// Stop.
//
// Обработчики шагов не знают о браузере напрямую: они работают через
// browser.Port и таблицы локаторов из selectors.go. Каждая смена
// состояния пишется контрольной точкой и публикуется подписчикам
// через Hub.
package workflow
