package captcha

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/telemetry"
)

// Page — подмножество браузерного порта, нужное для решения captcha.
type Page interface {
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	Fill(ctx context.Context, locators []browser.Locator, value string) error
	Press(ctx context.Context, locators []browser.Locator, key string) error
	Click(ctx context.Context, locators []browser.Locator) error
	Visible(ctx context.Context, selector string) (bool, error)
	Text(ctx context.Context, selector string) (string, error)
	URL() string
}

// Локаторы captcha: картинка, поле ввода, кнопка отправки.
// Порядок определяет приоритет.
var (
	imageSelectors = []string{
		".captcha-img",
		"img[id*='captcha']",
		"img[src*='captcha']",
	}

	inputLocators = []browser.Locator{
		browser.Sel("#captcha"),
		browser.Sel("input[id*='captcha']"),
		browser.Sel("input[name*='captcha']"),
		browser.Sel("input[placeholder*='Captcha']"),
		browser.Sel("input[type='text']"),
	}

	submitLocators = []browser.Locator{
		browser.Sel("button[type='submit']"),
		browser.SelText("button", "Submit"),
		browser.SelText("button", "SUBMIT"),
		browser.Sel(".submit-btn"),
		browser.Sel("[class*='submit']"),
	}
)

// Ключевые слова классификации результата по тексту страницы.
var (
	successKeywords = []string{
		"Payment Methods",
		"Passenger Details",
		"Book Ticket",
		"Select Train",
	}

	failureKeywords = []string{
		"Enter Captcha",
		"Invalid Captcha",
		"Wrong Captcha",
		"Captcha Error",
	}
)

// Config — настройки решателя.
type Config struct {
	// MaxAttempts — число попыток решения.
	MaxAttempts int

	// AttemptPause — пауза перед повторной попыткой.
	AttemptPause time.Duration

	// SubmitWait — ожидание реакции страницы после отправки.
	SubmitWait time.Duration

	// ManualTimeout — сколько ждать ручного ввода оператором.
	ManualTimeout time.Duration
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   5,
		AttemptPause:  2 * time.Second,
		SubmitWait:    3 * time.Second,
		ManualTimeout: 2 * time.Minute,
	}
}

// Solver решает captcha на странице.
// recognizer == nil означает ручной режим.
type Solver struct {
	recognizer Recognizer
	cfg        Config
	logger     *slog.Logger
}

// NewSolver создаёт решатель.
func NewSolver(recognizer Recognizer, cfg Config, logger *slog.Logger) *Solver {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.AttemptPause <= 0 {
		cfg.AttemptPause = 2 * time.Second
	}
	if cfg.SubmitWait <= 0 {
		cfg.SubmitWait = 3 * time.Second
	}
	if cfg.ManualTimeout <= 0 {
		cfg.ManualTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{recognizer: recognizer, cfg: cfg, logger: logger}
}

// Solve распознаёт текст captcha с картинки на странице.
func (s *Solver) Solve(ctx context.Context, page Page) (string, error) {
	var src string
	for _, sel := range imageSelectors {
		v, found, err := page.Attribute(ctx, sel, "src")
		if err != nil {
			continue
		}
		if found && v != "" {
			src = v
			break
		}
	}
	if src == "" {
		return "", ErrImageNotFound
	}

	image, err := DecodeDataURL(src)
	if err != nil {
		return "", err
	}

	raw, err := s.recognizer.Recognize(ctx, image)
	if err != nil {
		return "", err
	}

	text := Clean(raw)
	if len(text) < 3 {
		return "", fmt.Errorf("%w: %q", ErrEmptyText, text)
	}

	s.logger.Info("captcha recognized", "length", len(text))
	return text, nil
}

// SolveAndSubmit решает captcha, заполняет поле и отправляет форму,
// повторяя до принятия или исчерпания попыток.
//
// В ручном режиме (recognizer == nil) форму заполняет оператор:
// решатель только ждёт появления признаков успеха.
func (s *Solver) SolveAndSubmit(ctx context.Context, page Page) error {
	if s.recognizer == nil {
		return s.waitManual(ctx, page)
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.logger.Info("captcha attempt", "attempt", attempt, "max_attempts", s.cfg.MaxAttempts)

		err := s.attempt(ctx, page)
		if err == nil {
			telemetry.CaptchaAttempts.WithLabelValues("success").Inc()
			return nil
		}

		telemetry.CaptchaAttempts.WithLabelValues("failure").Inc()
		s.logger.Warn("captcha attempt failed", "attempt", attempt, "error", err)

		if attempt < s.cfg.MaxAttempts {
			select {
			case <-time.After(s.cfg.AttemptPause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return ErrMaxAttempts
}

// attempt — одна попытка: решить, заполнить, отправить, классифицировать.
func (s *Solver) attempt(ctx context.Context, page Page) error {
	text, err := s.Solve(ctx, page)
	if err != nil {
		return err
	}

	if err := page.Fill(ctx, inputLocators, text); err != nil {
		return fmt.Errorf("%w: %v", ErrInputNotFound, err)
	}

	// Отправка: сначала Enter, затем кнопки.
	if err := page.Press(ctx, inputLocators, "Enter"); err != nil {
		if err := page.Click(ctx, submitLocators); err != nil {
			return fmt.Errorf("submit captcha: %w", err)
		}
	}

	select {
	case <-time.After(s.cfg.SubmitWait):
	case <-ctx.Done():
		return ctx.Err()
	}

	return s.classify(ctx, page)
}

// classify определяет результат по тексту страницы.
//
// Явный признак неудачи сильнее признака успеха: после отклонения
// captcha страница логина остаётся с обоими наборами слов.
func (s *Solver) classify(ctx context.Context, page Page) error {
	body, err := page.Text(ctx, "body")
	if err != nil {
		return fmt.Errorf("read page text: %w", err)
	}

	failed := containsAny(body, failureKeywords)
	succeeded := containsAny(body, successKeywords)

	switch {
	case succeeded && !failed:
		return nil
	case failed:
		return fmt.Errorf("captcha rejected")
	}

	// Явных признаков нет: уход со страницы логина считается успехом.
	url := strings.ToLower(page.URL())
	if !strings.Contains(url, "login") && !strings.Contains(url, "captcha") {
		return nil
	}
	return fmt.Errorf("captcha status unclear")
}

// waitManual опрашивает страницу, пока оператор не решит captcha сам.
func (s *Solver) waitManual(ctx context.Context, page Page) error {
	s.logger.Info("waiting for manual captcha input", "timeout", s.cfg.ManualTimeout)

	deadline := time.Now().Add(s.cfg.ManualTimeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := s.classify(ctx, page); err == nil {
			telemetry.CaptchaAttempts.WithLabelValues("manual").Inc()
			return nil
		}
	}
	return ErrMaxAttempts
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
