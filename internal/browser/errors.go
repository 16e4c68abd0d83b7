package browser

import "errors"

// Ошибки браузерного слоя.
var (
	// ErrNotInitialized — операция вызвана до Init или после Close.
	ErrNotInitialized = errors.New("browser not initialized")

	// ErrElementNotFound — ни один селектор из списка не дал видимого
	// элемента за отведённое время.
	ErrElementNotFound = errors.New("element not found")

	// ErrNavigationFailed — страница не загрузилась.
	ErrNavigationFailed = errors.New("navigation failed")

	// ErrUnsupportedKey — клавиша не поддерживается Press.
	ErrUnsupportedKey = errors.New("unsupported key")
)
