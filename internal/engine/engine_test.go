package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/captcha"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/recovery"
	"github.com/shaiso/railbot/internal/retry"
	"github.com/shaiso/railbot/internal/session"
	"github.com/shaiso/railbot/internal/workflow"
)

// permissivePort отвечает успехом на все операции браузера.
type permissivePort struct {
	mu     sync.Mutex
	inits  int
	closes int
	block  chan struct{} // ненулевой канал блокирует Navigate до закрытия
}

func (p *permissivePort) Init(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inits++
	return nil
}

func (p *permissivePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return nil
}

func (p *permissivePort) Navigate(ctx context.Context, url string) error {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *permissivePort) URL() string { return "https://example.test/nget/train-search" }

func (p *permissivePort) Click(ctx context.Context, locs []browser.Locator) error { return nil }

func (p *permissivePort) Fill(ctx context.Context, locs []browser.Locator, value string) error {
	return nil
}

func (p *permissivePort) Press(ctx context.Context, locs []browser.Locator, key string) error {
	return nil
}

func (p *permissivePort) Select(ctx context.Context, locs []browser.Locator, value string) error {
	return nil
}

func (p *permissivePort) Text(ctx context.Context, selector string) (string, error) {
	return "", nil
}

func (p *permissivePort) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	return "", false, nil
}

func (p *permissivePort) Visible(ctx context.Context, selector string) (bool, error) {
	return true, nil
}

func (p *permissivePort) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (p *permissivePort) WaitForLogin(ctx context.Context, timeout time.Duration) (bool, error) {
	return true, nil
}

func (p *permissivePort) WaitForClicks(ctx context.Context, threshold int, timeout time.Duration) (bool, error) {
	return true, nil
}

func (p *permissivePort) Cookies(ctx context.Context) ([]session.Cookie, error) {
	return nil, nil
}

func (p *permissivePort) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	return nil
}

func (p *permissivePort) Screenshot(ctx context.Context, name string) (string, error) {
	return "", nil
}

var _ browser.Port = (*permissivePort)(nil)

type nilSolver struct{}

func (nilSolver) SolveAndSubmit(ctx context.Context, page captcha.Page) error { return nil }

func fastWorkflowConfig() workflow.Config {
	return workflow.Config{
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

func testEngine(t *testing.T, port browser.Port) *Engine {
	t.Helper()
	e, err := New(Config{
		DataDir:  t.TempDir(),
		Workflow: fastWorkflowConfig(),
		Ports: func(req *domain.BookingRequest, logger *slog.Logger) (browser.Port, error) {
			return port, nil
		},
		Solvers: func(req *domain.BookingRequest, logger *slog.Logger) (workflow.Solver, error) {
			return nilSolver{}, nil
		},
	})
	if err != nil {
		t.Fatalf("не удалось создать engine: %v", err)
	}
	return e
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

func TestStartRunsToCompletion(t *testing.T) {
	port := &permissivePort{}
	e := testEngine(t, port)

	if err := e.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start вернул ошибку: %v", err)
	}
	e.Wait()

	st := e.Status()
	if st.Running {
		t.Error("Status.Running == true после завершения")
	}
	if st.State != domain.StateCompleted {
		t.Errorf("финальное состояние %s, ожидалось %s", st.State, domain.StateCompleted)
	}
	if port.closes == 0 {
		t.Error("браузер не закрыт")
	}
}

func TestStartRejectsSecondWorkflow(t *testing.T) {
	port := &permissivePort{block: make(chan struct{})}
	e := testEngine(t, port)

	if err := e.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start вернул ошибку: %v", err)
	}
	defer func() {
		close(port.block)
		e.Wait()
	}()

	if err := e.Start(context.Background(), testRequest()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("ожидалась ErrAlreadyRunning, получено %v", err)
	}
}

func TestStartValidatesRequest(t *testing.T) {
	e := testEngine(t, &permissivePort{})

	req := testRequest()
	req.TrainNo = ""
	if err := e.Start(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("ожидалась ErrInvalidRequest, получено %v", err)
	}

	req = testRequest()
	req.SourceStation = ""
	if err := e.Start(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("ожидалась ErrInvalidRequest, получено %v", err)
	}

	// Отклонённая заявка не меняет состояние движка.
	if st := e.Status(); st.Running || st.State != domain.StateIdle {
		t.Fatalf("после отклонённой заявки состояние %+v, ожидалось Idle", st)
	}

	// Отклонённая заявка не занимает слот workflow.
	if err := e.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start после отклонённой заявки вернул ошибку: %v", err)
	}
	e.Wait()
}

func TestStopCancelsRunningWorkflow(t *testing.T) {
	port := &permissivePort{block: make(chan struct{})}
	e := testEngine(t, port)

	if err := e.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start вернул ошибку: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop вернул ошибку: %v", err)
	}

	st := e.Status()
	if st.Running {
		t.Error("Status.Running == true после Stop")
	}
	if st.State != domain.StateStopped {
		t.Errorf("финальное состояние %s, ожидалось %s", st.State, domain.StateStopped)
	}
}

func TestStopWithoutWorkflow(t *testing.T) {
	e := testEngine(t, &permissivePort{})
	if err := e.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("ожидалась ErrNotRunning, получено %v", err)
	}
}

func TestPauseResumeLifecycle(t *testing.T) {
	port := &permissivePort{}
	e := testEngine(t, port)

	if err := e.Pause(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("Pause без workflow: ожидалась ErrNotRunning, получено %v", err)
	}

	if err := e.Start(context.Background(), testRequest()); err != nil {
		t.Fatalf("Start вернул ошибку: %v", err)
	}

	// Пауза может попасть в момент завершения workflow.
	if err := e.Pause(); err == nil {
		st := e.Status()
		if st.State != domain.StatePaused {
			// Переход в паузу происходит между шагами.
			deadline := time.After(5 * time.Second)
			for e.Status().Running && e.Status().State != domain.StatePaused {
				select {
				case <-deadline:
					t.Fatal("workflow не перешёл в Paused")
				case <-time.After(time.Millisecond):
				}
			}
		}
		if e.Status().Running {
			if err := e.Resume(); err != nil {
				t.Fatalf("Resume вернул ошибку: %v", err)
			}
		}
	}
	e.Wait()
}

func TestRecoverWithoutCheckpoint(t *testing.T) {
	e := testEngine(t, &permissivePort{})
	if err := e.Recover(context.Background()); !errors.Is(err, ErrNoCheckpoint) {
		t.Fatalf("ожидалась ErrNoCheckpoint, получено %v", err)
	}
}

func TestRecoverRestartsFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	port := &permissivePort{}

	e, err := New(Config{
		DataDir:  dir,
		Workflow: fastWorkflowConfig(),
		Ports: func(req *domain.BookingRequest, logger *slog.Logger) (browser.Port, error) {
			return port, nil
		},
		Solvers: func(req *domain.BookingRequest, logger *slog.Logger) (workflow.Solver, error) {
			return nilSolver{}, nil
		},
	})
	if err != nil {
		t.Fatalf("не удалось создать engine: %v", err)
	}

	// Контрольная точка от прервавшегося запуска.
	ckpts, err := recovery.NewStore(dir+"/state", nil)
	if err != nil {
		t.Fatalf("не удалось открыть хранилище: %v", err)
	}
	err = ckpts.Save(&recovery.Checkpoint{
		Request:      testRequest(),
		CurrentState: domain.StateSearching,
		Timestamp:    time.Now().UTC(),
		AttemptCount: 1,
	})
	if err != nil {
		t.Fatalf("не удалось сохранить контрольную точку: %v", err)
	}

	if err := e.Recover(context.Background()); err != nil {
		t.Fatalf("Recover вернул ошибку: %v", err)
	}
	e.Wait()

	if st := e.Status(); st.State != domain.StateCompleted {
		t.Errorf("финальное состояние %s, ожидалось %s", st.State, domain.StateCompleted)
	}
}
