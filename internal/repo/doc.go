// Package repo — репозитории PostgreSQL.
//
// Хранится история бронирований (tickets), сохранённые учётные
// записи IRCTC (accounts) и способы оплаты (payment_options).
// Репозитории stateless-обёртки над pgxpool.Pool; бизнес-логики
// здесь нет.
package repo
