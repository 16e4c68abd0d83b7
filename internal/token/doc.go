// Package token получает и кэширует токены авторизации для
// токен-бронирования.
//
// Токен либо задан в конфигурации заранее, либо запрашивается с
// внешнего API. Ответ API принимается как JSON ({"token": ...},
// {"Token": ...} или {"data": {"token": ...}}) либо как токен
// простым текстом.
package token
