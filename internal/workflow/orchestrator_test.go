package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/captcha"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/recovery"
	"github.com/shaiso/railbot/internal/retry"
	"github.com/shaiso/railbot/internal/session"
)

// fakePort — управляемая реализация browser.Port для тестов.
type fakePort struct {
	mu sync.Mutex

	url        string
	visible    map[string]bool
	texts      map[string]string
	cookieJar  []session.Cookie
	setCookies []session.Cookie

	navigations []string
	clicks      []string
	fills       []string

	clickErr func(locs []browser.Locator) error
	fillErr  func(locs []browser.Locator) error

	inits  int
	closes int
}

func newFakePort() *fakePort {
	return &fakePort{
		visible: map[string]bool{},
		texts:   map[string]string{},
	}
}

func (f *fakePort) Init(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
	return nil
}

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakePort) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigations = append(f.navigations, url)
	f.url = url
	return nil
}

func (f *fakePort) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *fakePort) Click(ctx context.Context, locs []browser.Locator) error {
	f.mu.Lock()
	clickErr := f.clickErr
	f.clicks = append(f.clicks, browser.Describe(locs))
	f.mu.Unlock()
	if clickErr != nil {
		return clickErr(locs)
	}
	return nil
}

func (f *fakePort) Fill(ctx context.Context, locs []browser.Locator, value string) error {
	f.mu.Lock()
	fillErr := f.fillErr
	f.fills = append(f.fills, value)
	f.mu.Unlock()
	if fillErr != nil {
		return fillErr(locs)
	}
	return nil
}

func (f *fakePort) Press(ctx context.Context, locs []browser.Locator, key string) error {
	return nil
}

func (f *fakePort) Select(ctx context.Context, locs []browser.Locator, value string) error {
	return nil
}

func (f *fakePort) Text(ctx context.Context, selector string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.texts[selector], nil
}

func (f *fakePort) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	return "", false, nil
}

func (f *fakePort) Visible(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible[selector], nil
}

func (f *fakePort) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (f *fakePort) WaitForLogin(ctx context.Context, timeout time.Duration) (bool, error) {
	return true, nil
}

func (f *fakePort) WaitForClicks(ctx context.Context, threshold int, timeout time.Duration) (bool, error) {
	return true, nil
}

func (f *fakePort) Cookies(ctx context.Context) ([]session.Cookie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cookieJar, nil
}

func (f *fakePort) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCookies = append(f.setCookies, cookies...)
	return nil
}

func (f *fakePort) Screenshot(ctx context.Context, name string) (string, error) {
	return "", nil
}

var _ browser.Port = (*fakePort)(nil)

// fakeSolver считает вызовы решения captcha.
type fakeSolver struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *fakeSolver) SolveAndSubmit(ctx context.Context, page captcha.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func testConfig() Config {
	return Config{
		SearchURL:         "https://example.test/nget/train-search",
		ClickThreshold:    2,
		LoginWait:         time.Millisecond,
		ClickWait:         time.Millisecond,
		StatePause:        time.Millisecond,
		PausedPoll:        time.Millisecond,
		QuotaPollInterval: time.Millisecond,
		QuotaMaxAttempts:  3,
		PageSettle:        time.Millisecond,
		ActionSettle:      time.Millisecond,
		InputSettle:       time.Millisecond,
		Retry:             retry.Policy{MaxRetries: 1, InitialDelay: time.Millisecond, Multiplier: 2, MaxDelay: time.Millisecond},
	}
}

func testRequest() *domain.BookingRequest {
	return &domain.BookingRequest{
		TrainNo:            "12301",
		TrainCoach:         "SL",
		SourceStation:      "NDLS",
		DestinationStation: "HWH",
		TravelDate:         "15/09/2026",
		Username:           "user",
		Password:           "pass",
		Passengers: []domain.Passenger{
			{Name: "Ivan", Age: 30, Gender: "Male"},
		},
	}
}

func TestRunCompletesBooking(t *testing.T) {
	port := newFakePort()
	// Признак выполненного логина: форма пропускается.
	port.visible[loggedInProbes[0]] = true
	port.cookieJar = []session.Cookie{{Name: "sid", Value: "abc", Domain: "example.test"}}

	cookies, err := session.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("не удалось создать хранилище сессии: %v", err)
	}
	ckpts, err := recovery.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("не удалось создать хранилище контрольных точек: %v", err)
	}
	solver := &fakeSolver{}
	hub := NewHub()
	events, unsubscribe := hub.Subscribe(64)
	defer unsubscribe()

	w, err := New(testRequest(), Deps{
		Port:        port,
		Solver:      solver,
		Cookies:     cookies,
		Checkpoints: ckpts,
		Events:      hub,
	}, testConfig(), nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run вернул ошибку: %v", err)
	}

	if got := w.State(); got != domain.StateCompleted {
		t.Fatalf("финальное состояние %s, ожидалось %s", got, domain.StateCompleted)
	}
	if port.inits != 1 {
		t.Errorf("браузер инициализирован %d раз", port.inits)
	}
	if port.closes == 0 {
		t.Error("браузер не закрыт после завершения")
	}

	// Cookies сохранены после логина.
	saved, err := cookies.Load()
	if err != nil {
		t.Fatalf("не удалось прочитать cookies: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "sid" {
		t.Errorf("сохранённые cookies %v, ожидался sid", saved)
	}

	// Контрольная точка удалена после успешного завершения.
	ckpt, err := ckpts.Load()
	if err != nil {
		t.Fatalf("не удалось прочитать контрольную точку: %v", err)
	}
	if ckpt != nil {
		t.Errorf("контрольная точка не удалена: %+v", ckpt)
	}

	var finished bool
	for len(events) > 0 {
		e := <-events
		if e.Type == EventFinished {
			finished = true
			if e.Curr != domain.StateCompleted {
				t.Errorf("EventFinished с состоянием %s", e.Curr)
			}
		}
	}
	if !finished {
		t.Error("EventFinished не опубликован")
	}
}

func TestRunStepErrorLeadsToFailed(t *testing.T) {
	port := newFakePort()
	port.visible[loggedInProbes[0]] = true

	// Клик по подсказке автодополнения не срабатывает.
	bad := browser.Describe(suggestionLocators)
	port.clickErr = func(locs []browser.Locator) error {
		if browser.Describe(locs) == bad {
			return errors.New("suggestion list empty")
		}
		return nil
	}

	ckpts, err := recovery.NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("не удалось создать хранилище контрольных точек: %v", err)
	}
	w, err := New(testRequest(), Deps{
		Port:        port,
		Solver:      &fakeSolver{},
		Checkpoints: ckpts,
	}, testConfig(), nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}

	runErr := w.Run(context.Background())
	if runErr == nil {
		t.Fatal("Run не вернул ошибку при сбое шага")
	}
	if got := w.State(); got != domain.StateFailed {
		t.Fatalf("финальное состояние %s, ожидалось %s", got, domain.StateFailed)
	}
	if !strings.Contains(w.LastError(), "suggestion list empty") {
		t.Errorf("LastError = %q, ожидалась причина сбоя", w.LastError())
	}

	// Контрольная точка хранит состояние сбоя для восстановления.
	ckpt, err := ckpts.Load()
	if err != nil || ckpt == nil {
		t.Fatalf("контрольная точка не сохранена: %v", err)
	}
	if ckpt.CurrentState != domain.StateFailed {
		t.Errorf("состояние контрольной точки %s", ckpt.CurrentState)
	}
	if ckpt.LastError == "" {
		t.Error("контрольная точка без текста ошибки")
	}
}

func TestRunCancelledContextStops(t *testing.T) {
	port := newFakePort()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := New(testRequest(), Deps{Port: port, Solver: &fakeSolver{}}, testConfig(), nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}

	if err := w.Run(ctx); err != nil {
		t.Fatalf("Run после отмены вернул ошибку: %v", err)
	}
	if got := w.State(); got != domain.StateStopped {
		t.Fatalf("финальное состояние %s, ожидалось %s", got, domain.StateStopped)
	}
}

func TestPauseAndResume(t *testing.T) {
	port := newFakePort()
	port.visible[loggedInProbes[0]] = true

	cfg := testConfig()
	cfg.StatePause = 20 * time.Millisecond

	w, err := New(testRequest(), Deps{Port: port, Solver: &fakeSolver{}}, cfg, nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	// Дождаться выхода из Idle и поставить на паузу.
	deadline := time.After(5 * time.Second)
	for w.State() == domain.StateIdle {
		select {
		case <-deadline:
			t.Fatal("workflow не стартовал")
		case <-time.After(time.Millisecond):
		}
	}
	if !w.Pause() {
		t.Fatal("Pause отклонена в активном состоянии")
	}

	for w.State() != domain.StatePaused {
		select {
		case <-deadline:
			t.Fatal("workflow не перешёл в Paused")
		case <-time.After(time.Millisecond):
		}
	}

	if !w.Resume() {
		t.Fatal("Resume отклонена в состоянии Paused")
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run вернул ошибку: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("workflow не завершился после Resume")
	}
	if got := w.State(); got != domain.StateCompleted {
		t.Fatalf("финальное состояние %s, ожидалось %s", got, domain.StateCompleted)
	}
}

func TestRunTatkalWaitsForQuotaWindow(t *testing.T) {
	port := newFakePort()
	port.visible[loggedInProbes[0]] = true
	port.visible[quotaOpenProbes[0]] = true

	req := testRequest()
	req.Tatkal = true

	solver := &fakeSolver{}
	w, err := New(req, Deps{Port: port, Solver: solver}, testConfig(), nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run вернул ошибку: %v", err)
	}
	if got := w.State(); got != domain.StateCompleted {
		t.Fatalf("финальное состояние %s, ожидалось %s", got, domain.StateCompleted)
	}
}

func TestRunQuotaWindowTimeout(t *testing.T) {
	port := newFakePort()
	port.visible[loggedInProbes[0]] = true

	req := testRequest()
	req.Tatkal = true

	w, err := New(req, Deps{Port: port, Solver: &fakeSolver{}}, testConfig(), nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}

	runErr := w.Run(context.Background())
	if runErr == nil {
		t.Fatal("Run не вернул ошибку по тайм-ауту окна квоты")
	}
	if got := w.State(); got != domain.StateFailed {
		t.Fatalf("финальное состояние %s, ожидалось %s", got, domain.StateFailed)
	}
	if !strings.Contains(w.LastError(), ErrQuotaWindowTimeout.Error()) {
		t.Errorf("LastError = %q", w.LastError())
	}
}

func TestRunSolvesLoginCaptcha(t *testing.T) {
	port := newFakePort()
	solver := &fakeSolver{}

	// Логин становится видимым только после отправки формы.
	submit := browser.Describe(loginSubmitLocators)
	port.clickErr = func(locs []browser.Locator) error {
		if browser.Describe(locs) == submit {
			port.mu.Lock()
			port.visible[loggedInProbes[0]] = true
			port.mu.Unlock()
		}
		return nil
	}

	w, err := New(testRequest(), Deps{Port: port, Solver: solver}, testConfig(), nil)
	if err != nil {
		t.Fatalf("не удалось создать workflow: %v", err)
	}
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run вернул ошибку: %v", err)
	}

	solver.mu.Lock()
	calls := solver.calls
	solver.mu.Unlock()
	if calls != 1 {
		t.Errorf("captcha решалась %d раз, ожидался 1", calls)
	}
	// Учётные данные введены в форму логина.
	var user, pass bool
	for _, v := range port.fills {
		if v == "user" {
			user = true
		}
		if v == "pass" {
			pass = true
		}
	}
	if !user || !pass {
		t.Errorf("логин/пароль не введены, fills=%v", port.fills)
	}
}

func TestNewRejectsNilRequest(t *testing.T) {
	_, err := New(nil, Deps{Port: newFakePort()}, Config{}, nil)
	if !errors.Is(err, ErrRequestNotSet) {
		t.Fatalf("ожидалась ErrRequestNotSet, получено %v", err)
	}
}
