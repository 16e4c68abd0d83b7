package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/captcha"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/recovery"
	"github.com/shaiso/railbot/internal/session"
	"github.com/shaiso/railbot/internal/token"
	"github.com/shaiso/railbot/internal/workflow"
)

// defaultDataDir — каталог сессии и контрольных точек по умолчанию.
const defaultDataDir = "data"

// PortFactory создаёт браузерный порт под заявку.
type PortFactory func(req *domain.BookingRequest, logger *slog.Logger) (browser.Port, error)

// SolverFactory создаёт решатель captcha под заявку.
type SolverFactory func(req *domain.BookingRequest, logger *slog.Logger) (workflow.Solver, error)

// Config — конфигурация Engine.
type Config struct {
	// DataDir — каталог состояния: cookies и контрольные точки.
	DataDir string

	// Workflow — настройки оркестратора бронирования.
	Workflow workflow.Config

	// Ports переопределяет создание браузерного порта. nil — rod.
	Ports PortFactory

	// Solvers переопределяет создание решателя captcha.
	Solvers SolverFactory

	// Tokens переопределяет источник токенов авторизации.
	// nil — менеджер создаётся из Token-конфигурации заявки.
	Tokens workflow.TokenSource

	// Logger. nil — slog.Default().
	Logger *slog.Logger
}

// Status — снимок состояния Engine для API и CLI.
type Status struct {
	// Running — есть активный workflow.
	Running bool `json:"running"`

	// State — текущее состояние активного workflow либо финальное
	// состояние последнего завершившегося.
	State domain.WorkflowState `json:"state"`

	// LastError — последняя ошибка шага.
	LastError string `json:"lastError,omitempty"`

	// Actions — действия, допустимые в текущем состоянии.
	Actions []domain.WorkflowAction `json:"actions,omitempty"`
}

// Engine выполняет бронирования, не более одного одновременно.
type Engine struct {
	cfg     Config
	logger  *slog.Logger
	hub     *workflow.Hub
	cookies *session.Store
	ckpts   *recovery.Store

	running atomic.Bool

	mu      sync.Mutex
	current *workflow.Workflow
	cancel  context.CancelFunc
	done    chan struct{}

	lastState domain.WorkflowState
	lastError string
}

// New создаёт Engine и открывает хранилища состояния.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.Ports == nil {
		cfg.Ports = defaultPortFactory
	}
	if cfg.Solvers == nil {
		cfg.Solvers = defaultSolverFactory
	}

	cookies, err := session.NewStore(filepath.Join(cfg.DataDir, "session"), logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	ckpts, err := recovery.NewStore(filepath.Join(cfg.DataDir, "state"), logger)
	if err != nil {
		return nil, fmt.Errorf("open recovery store: %w", err)
	}

	return &Engine{
		cfg:       cfg,
		logger:    logger,
		hub:       workflow.NewHub(),
		cookies:   cookies,
		ckpts:     ckpts,
		lastState: domain.StateIdle,
	}, nil
}

// Events возвращает шину событий workflow.
func (e *Engine) Events() *workflow.Hub {
	return e.hub
}

// Start запускает бронирование по заявке.
//
// Возвращает ErrAlreadyRunning, когда другой workflow ещё активен.
// Workflow выполняется в фоне до финального состояния; жизненный цикл
// не привязан к ctx вызывающего.
func (e *Engine) Start(ctx context.Context, req *domain.BookingRequest) error {
	_, err := e.StartTracked(ctx, req)
	return err
}

// StartTracked запускает бронирование и возвращает идентификатор
// запуска. Подписчики шины событий сопоставляют события с этим
// запуском по Event.BookingID.
func (e *Engine) StartTracked(ctx context.Context, req *domain.BookingRequest) (uuid.UUID, error) {
	if req == nil {
		return uuid.Nil, workflow.ErrRequestNotSet
	}
	if err := req.Validate(); err != nil {
		return uuid.Nil, fmt.Errorf("validate request: %w", err)
	}

	if !e.running.CompareAndSwap(false, true) {
		return uuid.Nil, ErrAlreadyRunning
	}

	port, err := e.cfg.Ports(req, e.logger)
	if err != nil {
		e.running.Store(false)
		return uuid.Nil, fmt.Errorf("create browser port: %w", err)
	}
	solver, err := e.cfg.Solvers(req, e.logger)
	if err != nil {
		e.running.Store(false)
		return uuid.Nil, fmt.Errorf("create captcha solver: %w", err)
	}

	tokens := e.cfg.Tokens
	if tokens == nil && req.Token != nil {
		tokens = token.NewManager(req.Token, e.logger)
	}

	w, err := workflow.New(req, workflow.Deps{
		Port:        port,
		Solver:      solver,
		Cookies:     e.cookies,
		Checkpoints: e.ckpts,
		Tokens:      tokens,
		Events:      e.hub,
	}, e.cfg.Workflow, e.logger)
	if err != nil {
		e.running.Store(false)
		return uuid.Nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.mu.Lock()
	e.current = w
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	e.logger.Info("booking started", "train", req.TrainNo, "date", req.TravelDate)

	go func() {
		defer close(done)
		err := w.Run(runCtx)
		if err != nil {
			e.logger.Error("booking finished with error", "error", err)
		}

		e.mu.Lock()
		e.lastState = w.State()
		e.lastError = w.LastError()
		e.current = nil
		e.cancel = nil
		e.mu.Unlock()

		cancel()
		e.running.Store(false)
	}()

	return w.ID(), nil
}

// Recover перезапускает бронирование из сохранённой контрольной точки.
func (e *Engine) Recover(ctx context.Context) error {
	ckpt, err := e.ckpts.Load()
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}
	if ckpt == nil || ckpt.Request == nil {
		return ErrNoCheckpoint
	}

	e.logger.Info("recovering booking from checkpoint",
		"state", ckpt.CurrentState,
		"saved_at", ckpt.Timestamp,
	)
	return e.Start(ctx, ckpt.Request)
}

// Checkpoint возвращает сохранённую контрольную точку. nil — нет.
func (e *Engine) Checkpoint() (*recovery.Checkpoint, error) {
	return e.ckpts.Load()
}

// Stop останавливает активный workflow и ждёт его завершения.
func (e *Engine) Stop() error {
	e.mu.Lock()
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	if cancel == nil {
		return ErrNotRunning
	}
	cancel()
	<-done
	return nil
}

// Pause приостанавливает активный workflow между шагами.
func (e *Engine) Pause() error {
	w := e.active()
	if w == nil {
		return ErrNotRunning
	}
	if !w.Pause() {
		return fmt.Errorf("pause rejected in state %s", w.State())
	}
	return nil
}

// Resume возобновляет приостановленный workflow.
func (e *Engine) Resume() error {
	w := e.active()
	if w == nil {
		return ErrNotRunning
	}
	if !w.Resume() {
		return fmt.Errorf("resume rejected in state %s", w.State())
	}
	return nil
}

// Status возвращает снимок состояния Engine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	w := e.current
	last := e.lastState
	lastErr := e.lastError
	e.mu.Unlock()

	if w != nil {
		return Status{
			Running:   true,
			State:     w.State(),
			LastError: w.LastError(),
			Actions:   w.ValidActions(),
		}
	}
	return Status{State: last, LastError: lastErr}
}

// Wait блокируется до завершения активного workflow.
// Возвращается сразу, когда активного workflow нет.
func (e *Engine) Wait() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Close останавливает активный workflow и закрывает шину событий.
func (e *Engine) Close() error {
	if err := e.Stop(); err != nil && err != ErrNotRunning {
		return err
	}
	e.hub.Close()
	return nil
}

func (e *Engine) active() *workflow.Workflow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// defaultPortFactory собирает rod-драйвер по параметрам заявки.
func defaultPortFactory(req *domain.BookingRequest, logger *slog.Logger) (browser.Port, error) {
	opts := browser.DefaultOptions()
	opts.Headless = req.Headless
	opts.Proxy = req.Proxy
	return browser.NewDriver(opts, logger), nil
}

// defaultSolverFactory собирает решатель captcha по типу из заявки.
func defaultSolverFactory(req *domain.BookingRequest, logger *slog.Logger) (workflow.Solver, error) {
	recognizer, err := captcha.NewRecognizer(req.CaptchaSolver)
	if err != nil {
		return nil, err
	}
	return captcha.NewSolver(recognizer, captcha.DefaultConfig(), logger), nil
}
