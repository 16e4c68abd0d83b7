package workflow

import (
	"time"

	"github.com/shaiso/railbot/internal/retry"
)

// Config — настройки оркестратора.
type Config struct {
	// SearchURL — стартовая страница поиска поездов.
	SearchURL string

	// ClickThreshold — число кликов пользователя перед сохранением
	// cookies после логина.
	ClickThreshold int

	// LoginWait — ожидание сетевого подтверждения логина.
	LoginWait time.Duration

	// ClickWait — ожидание порога кликов.
	ClickWait time.Duration

	// StatePause — пауза между шагами.
	StatePause time.Duration

	// PausedPoll — период опроса в состоянии Paused.
	PausedPoll time.Duration

	// QuotaPollInterval — период опроса окна квоты.
	QuotaPollInterval time.Duration

	// QuotaMaxAttempts — число опросов окна квоты до отказа.
	QuotaMaxAttempts int

	// PageSettle — пауза после загрузки страницы.
	PageSettle time.Duration

	// ActionSettle — пауза после кликов, меняющих страницу.
	ActionSettle time.Duration

	// InputSettle — пауза на отрисовку подсказок и выпадающих списков.
	InputSettle time.Duration

	// Retry — политика повторов сетевых и браузерных операций.
	Retry retry.Policy
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		SearchURL:         "https://www.irctc.co.in/nget/train-search",
		ClickThreshold:    2,
		LoginWait:         60 * time.Second,
		ClickWait:         60 * time.Second,
		StatePause:        500 * time.Millisecond,
		PausedPoll:        time.Second,
		QuotaPollInterval: time.Second,
		QuotaMaxAttempts:  300,
		PageSettle:        3 * time.Second,
		ActionSettle:      2 * time.Second,
		InputSettle:       time.Second,
		Retry:             retry.DefaultPolicy(),
	}
}

// withDefaults заполняет нулевые поля значениями по умолчанию.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SearchURL == "" {
		c.SearchURL = d.SearchURL
	}
	if c.ClickThreshold <= 0 {
		c.ClickThreshold = d.ClickThreshold
	}
	if c.LoginWait <= 0 {
		c.LoginWait = d.LoginWait
	}
	if c.ClickWait <= 0 {
		c.ClickWait = d.ClickWait
	}
	if c.StatePause <= 0 {
		c.StatePause = d.StatePause
	}
	if c.PausedPoll <= 0 {
		c.PausedPoll = d.PausedPoll
	}
	if c.QuotaPollInterval <= 0 {
		c.QuotaPollInterval = d.QuotaPollInterval
	}
	if c.QuotaMaxAttempts <= 0 {
		c.QuotaMaxAttempts = d.QuotaMaxAttempts
	}
	if c.PageSettle <= 0 {
		c.PageSettle = d.PageSettle
	}
	if c.ActionSettle <= 0 {
		c.ActionSettle = d.ActionSettle
	}
	if c.InputSettle <= 0 {
		c.InputSettle = d.InputSettle
	}
	return c
}
