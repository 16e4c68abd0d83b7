package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/captcha"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/fsm"
	"github.com/shaiso/railbot/internal/recovery"
	"github.com/shaiso/railbot/internal/retry"
	"github.com/shaiso/railbot/internal/session"
	"github.com/shaiso/railbot/internal/telemetry"
)

// Solver решает captcha на странице. Реализуется captcha.Solver.
type Solver interface {
	SolveAndSubmit(ctx context.Context, page captcha.Page) error
}

// TokenSource обновляет токен авторизации перед логином.
type TokenSource interface {
	Refresh(ctx context.Context) error
}

// Deps — зависимости оркестратора. Cookies, Checkpoints, Tokens и
// Events могут быть nil: соответствующие функции отключаются.
type Deps struct {
	Port        browser.Port
	Solver      Solver
	Cookies     *session.Store
	Checkpoints *recovery.Store
	Tokens      TokenSource
	Events      *Hub
}

// Workflow — оркестратор одного бронирования.
type Workflow struct {
	id      uuid.UUID
	machine *fsm.Machine
	port    browser.Port
	solver  Solver
	cookies *session.Store
	ckpt    *recovery.Store
	tokens  TokenSource
	events  *Hub
	retrier *retry.Executor

	cfg    Config
	req    *domain.BookingRequest
	logger *slog.Logger

	mu        sync.Mutex
	attempt   int
	lastError string
}

// New создаёт оркестратор для заявки.
func New(req *domain.BookingRequest, deps Deps, cfg Config, logger *slog.Logger) (*Workflow, error) {
	if req == nil {
		return nil, ErrRequestNotSet
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	w := &Workflow{
		id:      uuid.New(),
		machine: fsm.New(),
		port:    deps.Port,
		solver:  deps.Solver,
		cookies: deps.Cookies,
		ckpt:    deps.Checkpoints,
		tokens:  deps.Tokens,
		events:  deps.Events,
		retrier: retry.NewExecutor(cfg.Retry, logger),
		cfg:     cfg,
		req:     req,
		logger:  logger,
		attempt: 1,
	}
	w.machine.Subscribe(w.onTransition)
	return w, nil
}

// ID возвращает идентификатор этого запуска.
// Каждый запуск получает свой: события на общей шине сопоставляются
// с конкретным бронированием по нему.
func (w *Workflow) ID() uuid.UUID {
	return w.id
}

// State возвращает текущее состояние workflow.
func (w *Workflow) State() domain.WorkflowState {
	return w.machine.Current()
}

// ValidActions возвращает действия, допустимые в текущем состоянии.
func (w *Workflow) ValidActions() []domain.WorkflowAction {
	return w.machine.GetValidActions()
}

// LastError возвращает последнюю ошибку шага.
func (w *Workflow) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

// Pause переводит workflow в паузу между шагами.
func (w *Workflow) Pause() bool {
	return w.machine.ExecuteAction(domain.ActionPause).Valid
}

// Resume возобновляет workflow из паузы.
func (w *Workflow) Resume() bool {
	return w.machine.ExecuteAction(domain.ActionResume).Valid
}

// Run выполняет бронирование до финального состояния.
//
// Возвращает nil при успехе или остановке и ошибку последнего шага,
// когда workflow завершился в Failed.
func (w *Workflow) Run(ctx context.Context) error {
	defer w.port.Close()

	telemetry.BookingsStarted.Inc()
	telemetry.WorkflowActive.Set(1)
	defer telemetry.WorkflowActive.Set(0)

	w.logger.Info("booking workflow started",
		"train", w.req.TrainNo,
		"from", w.req.SourceStation,
		"to", w.req.DestinationStation,
	)

	w.machine.ExecuteAction(domain.ActionStart)

	for {
		if ctx.Err() != nil {
			w.logger.Info("booking workflow cancelled")
			w.machine.ExecuteAction(domain.ActionStop)
			break
		}

		state := w.machine.Current()
		if state.IsTerminal() {
			break
		}

		if state == domain.StatePaused {
			select {
			case <-time.After(w.cfg.PausedPoll):
			case <-ctx.Done():
			}
			continue
		}

		w.process(ctx, state)

		select {
		case <-time.After(w.cfg.StatePause):
		case <-ctx.Done():
		}
	}

	final := w.machine.Current()
	telemetry.BookingsFinished.WithLabelValues(string(final)).Inc()
	w.publish(Event{Type: EventFinished, Curr: final, Message: w.LastError()})
	w.logger.Info("booking workflow finished", "state", final)

	switch final {
	case domain.StateCompleted:
		// Диагностика больше не нужна.
		if w.ckpt != nil {
			if err := w.ckpt.Clear(); err != nil {
				w.logger.Warn("failed to clear checkpoint", "error", err)
			}
		}
		return nil
	case domain.StateFailed:
		return fmt.Errorf("booking failed: %s", w.LastError())
	default:
		return nil
	}
}

// process выполняет обработчик состояния и продвигает машину.
func (w *Workflow) process(ctx context.Context, state domain.WorkflowState) {
	w.logger.Info("processing state", "state", state)
	start := time.Now()

	err := w.handle(ctx, state)
	telemetry.StepDuration.WithLabelValues(string(state)).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		w.machine.ExecuteAction(domain.ActionNext)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		w.machine.ExecuteAction(domain.ActionStop)
	default:
		w.setLastError(err.Error())
		w.logger.Error("step failed", "state", state, "error", err)
		w.publish(Event{Type: EventLog, Curr: state, Message: err.Error()})
		w.machine.ExecuteAction(domain.ActionError)
	}
}

// handle выбирает обработчик шага по состоянию.
func (w *Workflow) handle(ctx context.Context, state domain.WorkflowState) error {
	switch state {
	case domain.StateInitializing:
		return w.stepInitialize(ctx)
	case domain.StateAuthenticating:
		return w.stepAuthenticate(ctx)
	case domain.StateLoggingIn:
		return w.stepLogin(ctx)
	case domain.StateSearching:
		return w.stepSearch(ctx)
	case domain.StateWaitingForQuotaWindow:
		return w.stepQuotaWindow(ctx)
	case domain.StateSelectingTrain:
		return w.stepSelectTrain(ctx)
	case domain.StateFillingDetails:
		return w.stepFillDetails(ctx)
	case domain.StatePayment:
		return w.stepPayment(ctx)
	default:
		return fmt.Errorf("no handler for state %s", state)
	}
}

// onTransition пишет контрольную точку и публикует событие.
func (w *Workflow) onTransition(prev, curr domain.WorkflowState, action domain.WorkflowAction) {
	telemetry.StateTransitions.WithLabelValues(string(prev), string(curr)).Inc()
	w.logger.Info("state changed", "from", prev, "to", curr, "action", action)

	if w.ckpt != nil {
		err := w.ckpt.Save(&recovery.Checkpoint{
			Request:      w.req,
			CurrentState: curr,
			Timestamp:    time.Now().UTC(),
			AttemptCount: w.attempt,
			LastError:    w.LastError(),
		})
		if err != nil {
			w.logger.Warn("failed to save checkpoint", "error", err)
		}
	}

	w.publish(Event{Type: EventStateChanged, Prev: prev, Curr: curr, Action: action})
}

func (w *Workflow) setLastError(msg string) {
	w.mu.Lock()
	w.lastError = msg
	w.mu.Unlock()
}

func (w *Workflow) publish(e Event) {
	if w.events != nil {
		e.BookingID = w.id
		w.events.Publish(e)
	}
}

// sleep ждёт d с учётом отмены context.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
