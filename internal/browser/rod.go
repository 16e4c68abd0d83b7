package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/shaiso/railbot/internal/session"
)

// Дополнительные stealth-скрипты поверх профиля go-rod/stealth.
const extraStealthJS = `
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined
	});
	Object.defineProperty(navigator, 'plugins', {
		get: () => [1, 2, 3, 4, 5]
	});
	Object.defineProperty(navigator, 'languages', {
		get: () => ['en-US', 'en']
	});
	window.chrome = { runtime: {} };
	const originalQuery = window.navigator.permissions.query;
	window.navigator.permissions.query = (parameters) => (
		parameters.name === 'notifications' ?
			Promise.resolve({ state: Notification.permission }) :
			originalQuery(parameters)
	);
`

// Счётчик кликов пользователя для WaitForClicks.
const clickCounterJS = `() => {
	if (window.__rbClickCounter !== undefined) return null;
	window.__rbClickCounter = 0;
	window.__rbClickThresholdReached = false;
	const handleClick = () => {
		window.__rbClickCounter++;
		if (window.__rbClickCounter >= window.__rbClickThreshold) {
			window.__rbClickThresholdReached = true;
			document.removeEventListener('click', handleClick);
		}
	};
	document.addEventListener('click', handleClick);
	return null;
}`

// Driver — реализация Port на go-rod.
type Driver struct {
	opts   Options
	logger *slog.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	loginSeen chan struct{}
}

// NewDriver создаёт драйвер. Браузер запускается в Init.
func NewDriver(opts Options, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ElementTimeout <= 0 {
		opts.ElementTimeout = 15 * time.Second
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 90 * time.Second
	}
	return &Driver{
		opts:      opts,
		logger:    logger,
		loginSeen: make(chan struct{}),
	}
}

// Init запускает Chromium, применяет stealth-профиль и настраивает
// наблюдение за сетевыми ответами и диалогами.
func (d *Driver) Init(ctx context.Context) error {
	d.logger.Info("initializing browser", "headless", d.opts.Headless)

	l := launcher.New().
		Headless(d.opts.Headless).
		Leakless(true).
		Set("disable-blink-features", "AutomationControlled")

	if d.opts.Proxy != nil && d.opts.Proxy.Enabled {
		l = l.Proxy(d.opts.Proxy.Server())
		d.logger.Info("using proxy", "server", d.opts.Proxy.Server())
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	d.launcher = l

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}
	d.browser = b

	// Авторизация на прокси через Fetch-домен.
	if d.opts.Proxy != nil && d.opts.Proxy.Enabled && d.opts.Proxy.Username != "" {
		go d.browser.HandleAuth(d.opts.Proxy.Username, d.opts.Proxy.Password)()
	}

	page, err := stealth.Page(b)
	if err != nil {
		return fmt.Errorf("create stealth page: %w", err)
	}
	d.page = page

	if err := d.configurePage(); err != nil {
		return err
	}

	d.watchDialogs()
	d.watchLoginResponse()

	d.logger.Info("browser initialized")
	return nil
}

func (d *Driver) configurePage() error {
	if d.opts.ViewportWidth > 0 && d.opts.ViewportHeight > 0 {
		err := d.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             d.opts.ViewportWidth,
			Height:            d.opts.ViewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
	}

	if d.opts.UserAgent != "" {
		err := d.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      d.opts.UserAgent,
			AcceptLanguage: d.opts.Locale,
		})
		if err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}

	if d.opts.Timezone != "" {
		err := proto.EmulationSetTimezoneOverride{TimezoneID: d.opts.Timezone}.Call(d.page)
		if err != nil {
			return fmt.Errorf("set timezone: %w", err)
		}
	}

	_, err := proto.PageAddScriptToEvaluateOnNewDocument{Source: extraStealthJS}.Call(d.page)
	if err != nil {
		return fmt.Errorf("add stealth script: %w", err)
	}
	return nil
}

// watchDialogs автоматически принимает alert/confirm/prompt.
func (d *Driver) watchDialogs() {
	page := d.page
	go page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		d.logger.Info("dialog detected", "type", string(e.Type), "message", e.Message)
		err := proto.PageHandleJavaScriptDialog{Accept: true}.Call(page)
		if err != nil {
			d.logger.Warn("failed to accept dialog", "error", err)
		}
	})()
}

// watchLoginResponse закрывает loginSeen при ответе с сигнатурой логина.
func (d *Driver) watchLoginResponse() {
	sig := d.opts.LoginSignature
	if sig.URLSubstring == "" {
		return
	}

	page := d.page
	methods := make(map[proto.NetworkRequestID]string)

	go page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			methods[e.RequestID] = e.Request.Method
		},
		func(e *proto.NetworkResponseReceived) bool {
			method := methods[e.RequestID]
			delete(methods, e.RequestID)

			if !strings.EqualFold(method, sig.Method) {
				return false
			}
			if e.Response.Status != sig.Status {
				return false
			}
			if !strings.Contains(e.Response.URL, sig.URLSubstring) {
				return false
			}

			d.logger.Info("login response detected", "url", e.Response.URL)
			close(d.loginSeen)
			return true
		},
	)()
}

// Close завершает браузер. Повторный вызов безопасен.
func (d *Driver) Close() error {
	if d.browser == nil {
		return nil
	}
	if err := d.browser.Close(); err != nil {
		d.logger.Warn("browser close", "error", err)
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
	}
	d.browser = nil
	d.page = nil
	d.logger.Info("browser closed")
	return nil
}

// Navigate переходит по URL и ждёт загрузки страницы.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	if d.page == nil {
		return ErrNotInitialized
	}
	d.logger.Info("navigating", "url", url)

	page := d.page.Context(ctx).Timeout(d.opts.NavigationTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigationFailed, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %v", ErrNavigationFailed, err)
	}

	// Пауза на стабилизацию SPA после загрузки DOM.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// URL возвращает текущий адрес страницы.
func (d *Driver) URL() string {
	if d.page == nil {
		return ""
	}
	info, err := d.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// find возвращает первый видимый элемент из списка локаторов,
// опрашивая страницу до истечения ElementTimeout.
func (d *Driver) find(ctx context.Context, locators []Locator) (*rod.Element, error) {
	if d.page == nil {
		return nil, ErrNotInitialized
	}

	deadline := time.Now().Add(d.opts.ElementTimeout)
	page := d.page.Context(ctx)

	for {
		for _, loc := range locators {
			el := d.match(page, loc)
			if el != nil {
				return el, nil
			}
		}

		if time.Now().After(deadline) {
			break
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if path, err := d.Screenshot(ctx, "element-not-found"); err == nil {
		d.logger.Warn("element not found", "locators", Describe(locators), "screenshot", path)
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, Describe(locators))
}

// match возвращает первый видимый элемент по локатору без ожидания.
func (d *Driver) match(page *rod.Page, loc Locator) *rod.Element {
	if loc.Text == "" {
		has, el, err := page.Has(loc.CSS)
		if err != nil || !has {
			return nil
		}
		if visible, err := el.Visible(); err != nil || !visible {
			return nil
		}
		return el
	}

	els, err := page.Elements(loc.CSS)
	if err != nil {
		return nil
	}
	for _, el := range els {
		text, err := el.Text()
		if err != nil || !strings.Contains(text, loc.Text) {
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			continue
		}
		return el
	}
	return nil
}

// Click кликает по первому видимому элементу из списка.
func (d *Driver) Click(ctx context.Context, locators []Locator) error {
	el, err := d.find(ctx, locators)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	// Пауза на реакцию страницы.
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Fill очищает поле, вводит значение и сверяет результат.
// При расхождении ввод повторяется один раз.
func (d *Driver) Fill(ctx context.Context, locators []Locator, value string) error {
	el, err := d.find(ctx, locators)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll into view: %w", err)
	}

	if err := d.fillElement(el, value); err != nil {
		return err
	}

	actual, err := el.Eval(`() => this.value`)
	if err == nil && actual.Value.Str() != value {
		d.logger.Warn("fill verification mismatch, retrying")
		if err := d.fillElement(el, value); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) fillElement(el *rod.Element, value string) error {
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

// Press нажимает клавишу на первом видимом элементе из списка.
func (d *Driver) Press(ctx context.Context, locators []Locator, key string) error {
	el, err := d.find(ctx, locators)
	if err != nil {
		return err
	}

	var k input.Key
	switch key {
	case "Enter":
		k = input.Enter
	case "Tab":
		k = input.Tab
	case "Escape":
		k = input.Escape
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedKey, key)
	}

	if err := el.Type(k); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	return nil
}

// Select выбирает пункт выпадающего списка по видимому тексту.
func (d *Driver) Select(ctx context.Context, locators []Locator, value string) error {
	el, err := d.find(ctx, locators)
	if err != nil {
		return err
	}
	if err := el.Select([]string{value}, true, rod.SelectorTypeText); err != nil {
		return fmt.Errorf("select option %q: %w", value, err)
	}
	return nil
}

// Text возвращает текстовое содержимое элемента.
func (d *Driver) Text(ctx context.Context, selector string) (string, error) {
	el, err := d.find(ctx, []Locator{{CSS: selector}})
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return text, nil
}

// Attribute возвращает значение атрибута элемента.
func (d *Driver) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	if d.page == nil {
		return "", false, ErrNotInitialized
	}

	has, el, err := d.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return "", false, nil
	}
	v, err := el.Attribute(name)
	if err != nil || v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// Visible сообщает, присутствует ли видимый элемент.
func (d *Driver) Visible(ctx context.Context, selector string) (bool, error) {
	if d.page == nil {
		return false, ErrNotInitialized
	}

	has, el, err := d.page.Context(ctx).Has(selector)
	if err != nil {
		return false, nil
	}
	if !has {
		return false, nil
	}
	visible, err := el.Visible()
	if err != nil {
		return false, nil
	}
	return visible, nil
}

// WaitVisible ждёт появления видимого элемента.
func (d *Driver) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if d.page == nil {
		return ErrNotInitialized
	}
	if timeout <= 0 {
		timeout = d.opts.ElementTimeout
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		visible, err := d.Visible(ctx, selector)
		if err != nil {
			return err
		}
		if visible {
			return nil
		}
		select {
		case <-time.After(250 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if path, err := d.Screenshot(ctx, "wait-visible-timeout"); err == nil {
		d.logger.Warn("element wait timeout", "selector", selector, "screenshot", path)
	}
	return fmt.Errorf("%w: %s", ErrElementNotFound, selector)
}

// WaitForLogin ждёт сетевого ответа с сигнатурой логина.
func (d *Driver) WaitForLogin(ctx context.Context, timeout time.Duration) (bool, error) {
	if d.page == nil {
		return false, ErrNotInitialized
	}

	select {
	case <-d.loginSeen:
		return true, nil
	case <-time.After(timeout):
		d.logger.Warn("login response wait timeout", "timeout", timeout)
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// WaitForClicks ждёт threshold кликов пользователя по странице.
// Используется в ручных сценариях перед сохранением cookies.
func (d *Driver) WaitForClicks(ctx context.Context, threshold int, timeout time.Duration) (bool, error) {
	if d.page == nil {
		return false, ErrNotInitialized
	}

	page := d.page.Context(ctx)
	if _, err := page.Eval(fmt.Sprintf("() => { window.__rbClickThreshold = %d; }", threshold)); err != nil {
		return false, fmt.Errorf("set click threshold: %w", err)
	}
	if _, err := page.Eval(clickCounterJS); err != nil {
		return false, fmt.Errorf("inject click counter: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		res, err := page.Eval(`() => window.__rbClickThresholdReached === true`)
		if err == nil && res.Value.Bool() {
			d.logger.Info("click threshold reached", "threshold", threshold)
			return true, nil
		}
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	d.logger.Warn("click threshold wait timeout", "threshold", threshold)
	return false, nil
}

// Cookies возвращает cookies браузера в формате хранилища сессии.
func (d *Driver) Cookies(ctx context.Context) ([]session.Cookie, error) {
	if d.browser == nil {
		return nil, ErrNotInitialized
	}

	raw, err := d.browser.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}

	cookies := make([]session.Cookie, 0, len(raw))
	for _, c := range raw {
		expires := float64(c.Expires)
		if expires < 0 {
			expires = 0
		}
		cookies = append(cookies, session.Cookie{
			Name:           c.Name,
			Value:          c.Value,
			Domain:         c.Domain,
			Path:           c.Path,
			ExpirationDate: expires,
			HTTPOnly:       c.HTTPOnly,
			Secure:         c.Secure,
			SameSite:       string(c.SameSite),
		})
	}
	return cookies, nil
}

// SetCookies загружает сохранённые cookies в браузер.
func (d *Driver) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	if d.browser == nil {
		return ErrNotInitialized
	}

	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: sameSiteFrom(c.SameSite),
		}
		if c.ExpirationDate > 0 {
			p.Expires = proto.TimeSinceEpoch(c.ExpirationDate)
		}
		params = append(params, p)
	}

	if err := d.browser.SetCookies(params); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	d.logger.Info("cookies restored", "count", len(params))
	return nil
}

func sameSiteFrom(s string) proto.NetworkCookieSameSite {
	switch s {
	case "Strict":
		return proto.NetworkCookieSameSiteStrict
	case "Lax":
		return proto.NetworkCookieSameSiteLax
	default:
		return proto.NetworkCookieSameSiteNone
	}
}

// Screenshot сохраняет полностраничный снимок и возвращает путь.
func (d *Driver) Screenshot(ctx context.Context, name string) (string, error) {
	if d.page == nil {
		return "", ErrNotInitialized
	}

	dir := d.opts.ScreenshotDir
	if dir == "" {
		dir = "screenshots"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	data, err := d.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", name, time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

// compile-time проверка соответствия порту.
var _ Port = (*Driver)(nil)
