package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/session"
)

// stepInitialize запускает браузер и восстанавливает сессию.
//
// При включённом прокси сохранённые cookies сбрасываются: сессия
// привязана к исходному IP.
func (w *Workflow) stepInitialize(ctx context.Context) error {
	w.log("initializing browser, headless=%v", w.req.Headless)

	if err := w.port.Init(ctx); err != nil {
		return fmt.Errorf("init browser: %w", err)
	}

	if w.cookies == nil {
		return nil
	}

	if w.req.Proxy != nil && w.req.Proxy.Enabled {
		w.log("proxy enabled, clearing saved cookies")
		if err := w.cookies.Clear(); err != nil {
			w.logger.Warn("failed to clear cookies", "error", err)
		}
		return nil
	}

	saved, err := w.cookies.Load()
	if err != nil {
		w.logger.Warn("failed to load cookies", "error", err)
		return nil
	}
	if !session.Valid(saved) {
		return nil
	}

	if err := w.port.SetCookies(ctx, saved); err != nil {
		w.logger.Warn("failed to restore cookies", "error", err)
		return nil
	}
	w.log("session restored from %d cookies", len(saved))
	return nil
}

// stepAuthenticate подготавливает авторизацию: обновляет токен,
// когда заявка использует внешний генератор.
func (w *Workflow) stepAuthenticate(ctx context.Context) error {
	if w.tokens != nil && w.req.Token != nil && w.req.Token.UseToken {
		w.log("refreshing auth token")
		if err := w.tokens.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh token: %w", err)
		}
	}
	return sleep(ctx, w.cfg.InputSettle)
}

// stepLogin открывает сайт и выполняет логин.
func (w *Workflow) stepLogin(ctx context.Context) error {
	w.log("navigating to %s", w.cfg.SearchURL)
	err := w.retrier.Execute(ctx, "navigate", func(ctx context.Context) error {
		return w.port.Navigate(ctx, w.cfg.SearchURL)
	})
	if err != nil {
		return err
	}
	if err := sleep(ctx, w.cfg.PageSettle); err != nil {
		return err
	}

	w.dismissAlerts(ctx)

	if w.isLoggedIn(ctx) {
		w.log("already logged in, skipping login form")
		w.saveCookies(ctx)
		return nil
	}

	w.log("opening login form")
	if err := w.port.Click(ctx, loginButtonLocators); err != nil {
		return fmt.Errorf("%w: %v", ErrLoginFormNotFound, err)
	}
	if err := sleep(ctx, w.cfg.ActionSettle); err != nil {
		return err
	}

	w.log("filling credentials")
	if err := w.port.Fill(ctx, usernameLocators, w.req.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := w.port.Fill(ctx, passwordLocators, w.req.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	w.log("solving login captcha")
	if err := w.solver.SolveAndSubmit(ctx, w.port); err != nil {
		return fmt.Errorf("login captcha: %w", err)
	}

	w.log("submitting login form")
	if err := w.port.Click(ctx, loginSubmitLocators); err != nil {
		// Запасной путь: Enter на поле пароля.
		if err := w.port.Press(ctx, passwordSubmitLocators, "Enter"); err != nil {
			return fmt.Errorf("submit login: %w", err)
		}
	}

	detected, err := w.port.WaitForLogin(ctx, w.cfg.LoginWait)
	if err != nil {
		return err
	}
	if !detected {
		w.log("login response not detected, verifying by page state")
	}
	if err := sleep(ctx, w.cfg.PageSettle); err != nil {
		return err
	}

	if !w.isLoggedIn(ctx) {
		if msg := w.loginError(ctx); msg != "" {
			return fmt.Errorf("%w: %s", ErrLoginFailed, msg)
		}
		return ErrLoginFailed
	}

	// Cookies сохраняются после порога кликов: сессионные cookies
	// доезжают не сразу после логина.
	reached, err := w.port.WaitForClicks(ctx, w.cfg.ClickThreshold, w.cfg.ClickWait)
	if err != nil {
		return err
	}
	if !reached {
		w.log("click threshold not reached, saving cookies anyway")
	}
	w.saveCookies(ctx)

	w.log("login completed")
	return nil
}

// stepSearch заполняет форму поиска и запускает поиск.
func (w *Workflow) stepSearch(ctx context.Context) error {
	if !strings.Contains(w.port.URL(), "train-search") {
		err := w.retrier.Execute(ctx, "navigate", func(ctx context.Context) error {
			return w.port.Navigate(ctx, w.cfg.SearchURL)
		})
		if err != nil {
			return err
		}
		if err := sleep(ctx, w.cfg.PageSettle); err != nil {
			return err
		}
	}

	w.log("entering route %s -> %s", w.req.SourceStation, w.req.DestinationStation)
	if err := w.fillStation(ctx, sourceLocators, w.req.SourceStation); err != nil {
		return fmt.Errorf("fill source station: %w", err)
	}
	if err := w.fillStation(ctx, destinationLocators, w.req.DestinationStation); err != nil {
		return fmt.Errorf("fill destination station: %w", err)
	}

	w.log("selecting travel date %s", w.req.TravelDate)
	if err := w.selectDate(ctx, w.req.TravelDate); err != nil {
		return fmt.Errorf("select travel date: %w", err)
	}

	if w.req.QuotaGated() {
		if err := w.selectQuota(ctx); err != nil {
			return fmt.Errorf("select quota: %w", err)
		}
	}

	w.log("submitting search")
	err := w.retrier.Execute(ctx, "search", func(ctx context.Context) error {
		return w.port.Click(ctx, searchButtonLocators)
	})
	if err != nil {
		return err
	}
	return sleep(ctx, w.cfg.PageSettle)
}

// stepQuotaWindow ждёт открытия окна квоты для Tatkal-бронирований.
func (w *Workflow) stepQuotaWindow(ctx context.Context) error {
	if !w.req.QuotaGated() {
		return nil
	}

	w.log("waiting for quota window")
	for i := 0; i < w.cfg.QuotaMaxAttempts; i++ {
		for _, probe := range quotaOpenProbes {
			open, err := w.port.Visible(ctx, probe)
			if err != nil {
				return err
			}
			if open {
				w.log("quota window is open")
				return nil
			}
		}
		if err := sleep(ctx, w.cfg.QuotaPollInterval); err != nil {
			return err
		}
	}
	return ErrQuotaWindowTimeout
}

// stepSelectTrain находит поезд в результатах и открывает бронирование.
func (w *Workflow) stepSelectTrain(ctx context.Context) error {
	if err := sleep(ctx, w.cfg.ActionSettle); err != nil {
		return err
	}

	w.log("selecting train %s %s", w.req.TrainNo, w.req.TrainCoach)
	rows := trainRowLocators(w.req.TrainNo, w.req.TrainCoach)

	// Сначала кнопка бронирования, затем клик по строке поезда.
	if err := w.port.Click(ctx, bookButtonLocators); err != nil {
		if err := w.port.Click(ctx, rows); err != nil {
			return fmt.Errorf("%w: %s", ErrTrainNotFound, w.req.TrainNo)
		}
	}

	return sleep(ctx, w.cfg.ActionSettle)
}

// stepFillDetails заполняет пассажиров, посадочную станцию и способ
// оплаты, затем продолжает к оплате.
func (w *Workflow) stepFillDetails(ctx context.Context) error {
	if err := sleep(ctx, w.cfg.ActionSettle); err != nil {
		return err
	}

	for i, p := range w.req.Passengers {
		n := i + 1
		if i > 0 {
			if err := w.port.Click(ctx, addPassengerLocators); err != nil {
				w.logger.Warn("failed to add passenger slot", "passenger", n, "error", err)
			}
			if err := sleep(ctx, w.cfg.InputSettle); err != nil {
				return err
			}
		}

		w.log("filling passenger %d: %s", n, p.Name)
		if err := w.port.Fill(ctx, passengerNameLocators(n), p.Name); err != nil {
			return fmt.Errorf("fill passenger %d name: %w", n, err)
		}
		if err := w.port.Fill(ctx, passengerAgeLocators(n), strconv.Itoa(p.Age)); err != nil {
			return fmt.Errorf("fill passenger %d age: %w", n, err)
		}
		if err := w.port.Select(ctx, passengerGenderLocators(n), p.Gender); err != nil {
			w.logger.Warn("failed to select gender", "passenger", n, "error", err)
		}
		if p.Seat != "" {
			if err := w.port.Select(ctx, passengerBerthLocators(n), p.Seat); err != nil {
				w.logger.Warn("failed to select berth", "passenger", n, "error", err)
			}
		}
		if p.Food != "" {
			if err := w.port.Select(ctx, passengerFoodLocators(n), p.Food); err != nil {
				w.logger.Warn("failed to select food", "passenger", n, "error", err)
			}
		}
	}

	if w.req.BoardingStation != "" {
		w.log("selecting boarding station %s", w.req.BoardingStation)
		if err := w.port.Click(ctx, boardingDropdownLocators); err == nil {
			if err := w.port.Click(ctx, boardingOptionLocators(w.req.BoardingStation)); err != nil {
				w.logger.Warn("failed to select boarding station", "error", err)
			}
		}
	}

	if err := w.port.Click(ctx, paymentRadioLocators); err != nil {
		w.logger.Warn("failed to preselect payment method", "error", err)
	}

	w.log("proceeding to payment")
	if err := w.port.Click(ctx, proceedLocators); err != nil {
		return fmt.Errorf("%w: %v", ErrProceedNotFound, err)
	}
	return sleep(ctx, w.cfg.PageSettle)
}

// stepPayment выбирает UPI и инициирует платёж.
func (w *Workflow) stepPayment(ctx context.Context) error {
	if err := sleep(ctx, w.cfg.ActionSettle); err != nil {
		return err
	}

	// Вторая captcha перед оплатой появляется не всегда.
	for _, probe := range paymentCaptchaProbes {
		present, err := w.port.Visible(ctx, probe)
		if err != nil {
			return err
		}
		if present {
			w.log("solving payment captcha")
			if err := w.solver.SolveAndSubmit(ctx, w.port); err != nil {
				return fmt.Errorf("payment captcha: %w", err)
			}
			break
		}
	}

	w.log("selecting UPI payment")
	if err := w.port.Click(ctx, upiSectionLocators); err != nil {
		w.logger.Warn("failed to select UPI section", "error", err)
	}
	if err := w.port.Click(ctx, bankTypeLocators); err == nil {
		if err := w.port.Click(ctx, upiBankOptionLocators); err != nil {
			w.logger.Warn("failed to select UPI bank option", "error", err)
		}
	}

	if w.req.UpiID == "" {
		w.log("no UPI id provided, waiting for manual payment entry")
		return nil
	}

	w.log("entering UPI id")
	if err := w.port.Click(ctx, upiInputLocators); err != nil {
		return fmt.Errorf("focus UPI input: %w", err)
	}
	if err := w.port.Fill(ctx, upiInputLocators, w.req.UpiID); err != nil {
		return fmt.Errorf("fill UPI id: %w", err)
	}
	if err := w.port.Click(ctx, payButtonLocators); err != nil {
		return fmt.Errorf("submit payment: %w", err)
	}

	w.log("payment initiated")
	return sleep(ctx, w.cfg.PageSettle)
}

// fillStation вводит станцию и подтверждает подсказку автодополнения.
func (w *Workflow) fillStation(ctx context.Context, field []browser.Locator, station string) error {
	if err := w.port.Fill(ctx, field, station); err != nil {
		return err
	}
	// Пауза на появление подсказок.
	if err := sleep(ctx, w.cfg.InputSettle); err != nil {
		return err
	}
	if err := w.port.Click(ctx, suggestionLocators); err != nil {
		return fmt.Errorf("pick suggestion: %w", err)
	}
	return nil
}

// selectDate выставляет дату поездки.
//
// Стратегии по порядку: прямой ввод с Enter, выбор дня в календаре,
// ввод с Tab без проверки.
func (w *Workflow) selectDate(ctx context.Context, date string) error {
	day := strings.TrimLeft(strings.Split(date, "/")[0], "0")

	if err := w.port.Click(ctx, dateInputLocators); err != nil {
		return err
	}
	if err := sleep(ctx, w.cfg.InputSettle); err != nil {
		return err
	}

	if err := w.port.Fill(ctx, dateInputLocators, date); err == nil {
		if err := w.port.Press(ctx, dateInputLocators, "Enter"); err == nil {
			return nil
		}
	}

	if err := w.port.Click(ctx, calendarDayLocators(day)); err == nil {
		return nil
	}

	if err := w.port.Fill(ctx, dateInputLocators, date); err != nil {
		return err
	}
	return w.port.Press(ctx, dateInputLocators, "Tab")
}

// selectQuota выбирает квоту Tatkal или Premium Tatkal.
func (w *Workflow) selectQuota(ctx context.Context) error {
	w.log("selecting quota")
	if err := w.port.Click(ctx, quotaDropdownLocators); err != nil {
		return err
	}
	if err := sleep(ctx, w.cfg.InputSettle); err != nil {
		return err
	}

	if w.req.PremiumTatkal {
		return w.port.Click(ctx, premiumTatkalOptionLocators)
	}
	return w.port.Click(ctx, tatkalOptionLocators)
}

// isLoggedIn проверяет признаки выполненного логина.
func (w *Workflow) isLoggedIn(ctx context.Context) bool {
	for _, probe := range loggedInProbes {
		visible, err := w.port.Visible(ctx, probe)
		if err == nil && visible {
			return true
		}
	}

	url := strings.ToLower(w.port.URL())
	if strings.Contains(url, "login") || strings.Contains(url, "auth") {
		return false
	}
	body, err := w.port.Text(ctx, "body")
	if err != nil {
		return false
	}
	return strings.Contains(body, "Book Ticket") || strings.Contains(body, "My Account")
}

// loginError возвращает текст видимого сообщения об ошибке логина.
func (w *Workflow) loginError(ctx context.Context) string {
	for _, probe := range loginErrorProbes {
		visible, err := w.port.Visible(ctx, probe)
		if err != nil || !visible {
			continue
		}
		text, err := w.port.Text(ctx, probe)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

// dismissAlerts закрывает информационные модальные окна.
func (w *Workflow) dismissAlerts(ctx context.Context) {
	if err := w.port.Click(ctx, alertButtonLocators); err == nil {
		w.log("dismissed modal dialog")
	}
}

// saveCookies сохраняет cookies браузера в хранилище сессии.
func (w *Workflow) saveCookies(ctx context.Context) {
	if w.cookies == nil {
		return
	}
	cookies, err := w.port.Cookies(ctx)
	if err != nil {
		w.logger.Warn("failed to read cookies", "error", err)
		return
	}
	if err := w.cookies.Save(cookies); err != nil {
		w.logger.Warn("failed to save cookies", "error", err)
	}
}

// log пишет сообщение в логгер и рассылает его подписчикам.
func (w *Workflow) log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.logger.Info(msg, "state", w.machine.Current())
	w.publish(Event{Type: EventLog, Curr: w.machine.Current(), Message: msg})
}
