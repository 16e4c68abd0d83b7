// Package browser изолирует автоматизацию браузера за интерфейсом Port.
//
// Реализация построена на go-rod с stealth-профилем: скрытие признаков
// автоматизации, переопределение user agent, часового пояса и локали.
// Все операции поиска элементов принимают упорядоченный список запасных
// селекторов: вёрстка целевого сайта меняется, первый найденный видимый
// элемент выигрывает.
//
// Обработчики workflow зависят только от Port, что позволяет
// тестировать их без браузера.
package browser
