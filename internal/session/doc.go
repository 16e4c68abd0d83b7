// Package session хранит cookies браузерной сессии между запусками.
//
// Cookies сохраняются в robot.json в формате, совместимом с
// Chrome-расширениями: name, value, domain, path, expirationDate
// (unix seconds), httpOnly, secure, sameSite. Нулевой expirationDate
// означает сессионный cookie и считается действительным.
//
// Восстановление сессии позволяет пропустить повторный логин, когда
// сохранённые cookies ещё не истекли. При включённом прокси cookies
// сбрасываются: сессия привязана к исходному IP.
package session
