// Package cli реализует инструмент командной строки Railbot.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Railbot API.
// Работает через HTTP, не импортирует внутренние пакеты движка.
// CLI используется для управления workflow бронирования, историей
// тикетов, расписаниями и поиском станций.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Railbot API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	status, err := client.BookingStatus()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: railbot ticket list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - booking:  start, stop, pause, resume, recover, status, logs
//   - config:   show, save, delete
//   - station:  search
//   - ticket:   list, show, delete
//   - schedule: list, create, delete
//
// Каждая группа создаётся через фабричную функцию (NewBookingCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
