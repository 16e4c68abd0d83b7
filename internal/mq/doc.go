// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queues, bindings
//   - publisher.go  — публикация сообщений
//   - bridge.go     — трансляция событий workflow в шину
//
// Типы сообщений:
//   - booking.state_changed — workflow перешёл в новое состояние
//   - booking.finished      — бронирование завершилось финальным состоянием
//
// Шина опциональна: при отсутствии RABBITMQ_URL процесс работает
// без неё, события остаются доступны через HTTP API и логи.
package mq
