// Package engine управляет жизненным циклом workflow бронирования.
//
// Engine гарантирует, что в процессе выполняется не более одного
// workflow одновременно: браузерная сессия и профиль пользователя не
// переживают параллельные бронирования. Попытка запустить второе
// бронирование возвращает ErrAlreadyRunning.
//
// Engine собирает зависимости workflow из заявки: браузерный порт,
// решатель captcha, хранилища сессии и контрольных точек. Фабрики
// зависимостей переопределяются в тестах.
package engine
