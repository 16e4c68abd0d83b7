package browser

import (
	"context"
	"time"

	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/session"
)

// ResponseSignature — сигнатура сетевого ответа, по которой
// распознаётся завершение логина.
type ResponseSignature struct {
	// URLSubstring — подстрока URL ответа.
	URLSubstring string

	// Method — HTTP-метод запроса.
	Method string

	// Status — код ответа.
	Status int
}

// Options — настройки запуска браузера.
type Options struct {
	// Headless — запуск без видимого окна.
	Headless bool

	// Proxy — прокси исходящих соединений. nil отключает прокси.
	Proxy *domain.ProxyConfig

	// UserAgent подменяет user agent браузера.
	UserAgent string

	// Locale и Timezone подменяют окружение страницы.
	Locale   string
	Timezone string

	// ViewportWidth, ViewportHeight — размер окна.
	ViewportWidth  int
	ViewportHeight int

	// LoginSignature — ответ, означающий успешный логин.
	LoginSignature ResponseSignature

	// ScreenshotDir — каталог диагностических снимков.
	ScreenshotDir string

	// ElementTimeout — время ожидания элемента по умолчанию.
	ElementTimeout time.Duration

	// NavigationTimeout — время ожидания загрузки страницы.
	NavigationTimeout time.Duration
}

// DefaultOptions возвращает настройки по умолчанию.
func DefaultOptions() Options {
	return Options{
		Headless:  false,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Locale:    "en-US",
		Timezone:  "Asia/Kolkata",

		ViewportWidth:  1478,
		ViewportHeight: 1056,

		LoginSignature: ResponseSignature{
			URLSubstring: "/authprovider/webtoken",
			Method:       "POST",
			Status:       200,
		},

		ScreenshotDir:     "screenshots",
		ElementTimeout:    15 * time.Second,
		NavigationTimeout: 90 * time.Second,
	}
}

// Port — порт автоматизации браузера.
//
// Методы, принимающие список локаторов, перебирают его по порядку и
// работают с первым видимым элементом.
type Port interface {
	// Init запускает браузер и открывает страницу.
	Init(ctx context.Context) error

	// Close завершает браузер. Повторный вызов безопасен.
	Close() error

	// Navigate переходит по URL и ждёт загрузки.
	Navigate(ctx context.Context, url string) error

	// URL возвращает текущий адрес страницы.
	URL() string

	// Click кликает по первому видимому элементу из списка.
	Click(ctx context.Context, locators []Locator) error

	// Fill очищает поле и вводит значение с проверкой результата.
	Fill(ctx context.Context, locators []Locator, value string) error

	// Press нажимает клавишу на первом видимом элементе из списка.
	Press(ctx context.Context, locators []Locator, key string) error

	// Select выбирает пункт выпадающего списка по видимому тексту.
	Select(ctx context.Context, locators []Locator, value string) error

	// Text возвращает текстовое содержимое элемента.
	Text(ctx context.Context, selector string) (string, error)

	// Attribute возвращает значение атрибута. Второй результат false,
	// когда элемент или атрибут отсутствует.
	Attribute(ctx context.Context, selector, name string) (string, bool, error)

	// Visible сообщает, присутствует ли видимый элемент.
	// Отсутствие элемента не является ошибкой.
	Visible(ctx context.Context, selector string) (bool, error)

	// WaitVisible ждёт появления видимого элемента.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// WaitForLogin ждёт сетевого ответа с сигнатурой логина.
	// Возвращает false без ошибки по истечении timeout.
	WaitForLogin(ctx context.Context, timeout time.Duration) (bool, error)

	// WaitForClicks ждёт threshold кликов пользователя по странице.
	// Возвращает false без ошибки по истечении timeout.
	WaitForClicks(ctx context.Context, threshold int, timeout time.Duration) (bool, error)

	// Cookies возвращает cookies браузера.
	Cookies(ctx context.Context) ([]session.Cookie, error)

	// SetCookies загружает cookies в браузер до навигации.
	SetCookies(ctx context.Context, cookies []session.Cookie) error

	// Screenshot сохраняет снимок страницы и возвращает путь к файлу.
	Screenshot(ctx context.Context, name string) (string, error)
}
