package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/engine"
)

// defaultTickInterval — период проверки расписаний.
const defaultTickInterval = time.Second

var (
	// ErrScheduleNotFound — расписание с таким ID не зарегистрировано.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrInvalidSchedule — расписание без времени запуска.
	ErrInvalidSchedule = errors.New("schedule must set start_at or cron_expr")
)

// Starter запускает бронирование. Реализуется engine.Engine.
type Starter interface {
	Start(ctx context.Context, req *domain.BookingRequest) error
}

// Scheduler хранит расписания и запускает бронирования в срок.
//
// Квотное окно Tatkal открывается в фиксированное время, поэтому
// запуск планируется заранее и срабатывает с точностью до тика.
type Scheduler struct {
	starter Starter
	logger  *slog.Logger
	tick    time.Duration

	mu        sync.Mutex
	schedules map[uuid.UUID]*domain.BookingSchedule

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config — конфигурация Scheduler.
type Config struct {
	Starter Starter

	// TickInterval — период проверки. default: 1s.
	TickInterval time.Duration

	Logger *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) *Scheduler {
	tick := cfg.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		starter:   cfg.Starter,
		logger:    logger,
		tick:      tick,
		schedules: make(map[uuid.UUID]*domain.BookingSchedule),
	}
}

// Add регистрирует расписание и вычисляет время первого запуска.
func (s *Scheduler) Add(sched *domain.BookingSchedule) error {
	if !sched.IsOneShot() && !sched.IsCron() {
		return ErrInvalidSchedule
	}
	if sched.IsCron() {
		if err := ValidateCronExpr(sched.CronExpr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}
	if sched.ID == uuid.Nil {
		sched.ID = uuid.New()
	}
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}

	next, err := CalculateNextDue(sched, time.Now())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	sched.NextDueAt = &next
	sched.Enabled = true

	s.mu.Lock()
	s.schedules[sched.ID] = sched
	s.mu.Unlock()

	s.logger.Info("schedule added",
		"schedule_id", sched.ID,
		"train", sched.Request.TrainNo,
		"next_due_at", next,
	)
	return nil
}

// Remove удаляет расписание.
func (s *Scheduler) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return ErrScheduleNotFound
	}
	delete(s.schedules, id)
	return nil
}

// List возвращает расписания, ближайшие первыми.
func (s *Scheduler) List() []domain.BookingSchedule {
	s.mu.Lock()
	out := make([]domain.BookingSchedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		out = append(out, *sched)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		switch {
		case out[i].NextDueAt == nil:
			return false
		case out[j].NextDueAt == nil:
			return true
		default:
			return out[i].NextDueAt.Before(*out[j].NextDueAt)
		}
	})
	return out
}

// Start запускает цикл планировщика.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop останавливает цикл планировщика.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Tick выполняет один проход по расписаниям.
//
// Ошибка одного расписания не блокирует обработку остальных.
func (s *Scheduler) Tick(ctx context.Context) {
	now := time.Now()

	s.mu.Lock()
	var due []*domain.BookingSchedule
	for _, sched := range s.schedules {
		if sched.Enabled && sched.NextDueAt != nil && !sched.NextDueAt.After(now) {
			due = append(due, sched)
		}
	}
	s.mu.Unlock()

	for _, sched := range due {
		if err := s.fire(ctx, sched, now); err != nil {
			s.logger.Error("failed to fire schedule",
				"schedule_id", sched.ID,
				"error", err,
			)
		}
	}
}

// fire запускает бронирование и перепланирует расписание.
func (s *Scheduler) fire(ctx context.Context, sched *domain.BookingSchedule, now time.Time) error {
	s.logger.Info("firing schedule",
		"schedule_id", sched.ID,
		"train", sched.Request.TrainNo,
	)

	err := s.starter.Start(ctx, &sched.Request)
	if errors.Is(err, engine.ErrAlreadyRunning) {
		// Активное бронирование не прерывается; запуск пропускается.
		s.logger.Warn("schedule skipped: booking already running",
			"schedule_id", sched.ID,
		)
		err = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sched.IsOneShot() {
		sched.Enabled = false
		sched.NextDueAt = nil
	} else {
		next, calcErr := CalculateNextDue(sched, now)
		if calcErr != nil {
			sched.Enabled = false
			sched.NextDueAt = nil
			s.logger.Error("failed to reschedule, disabling",
				"schedule_id", sched.ID,
				"error", calcErr,
			)
		} else {
			sched.NextDueAt = &next
		}
	}

	if err != nil {
		return fmt.Errorf("start scheduled booking: %w", err)
	}
	return nil
}
