package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/browser"
	"github.com/shaiso/railbot/internal/captcha"
	"github.com/shaiso/railbot/internal/domain"
	"github.com/shaiso/railbot/internal/engine"
	"github.com/shaiso/railbot/internal/repo"
	"github.com/shaiso/railbot/internal/retry"
	"github.com/shaiso/railbot/internal/session"
	"github.com/shaiso/railbot/internal/workflow"
)

// memTicketStore — история тикетов в памяти для тестов обработчиков.
type memTicketStore struct {
	mu      sync.Mutex
	created []domain.Ticket
	updated []domain.Ticket
}

func (s *memTicketStore) Create(ctx context.Context, t *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *t)
	return nil
}

func (s *memTicketStore) Update(ctx context.Context, t *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, *t)
	return nil
}

func (s *memTicketStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return nil, repo.ErrNotFound
}

func (s *memTicketStore) List(ctx context.Context, filter repo.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (s *memTicketStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *memTicketStore) snapshot() (created, updated []domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Ticket(nil), s.created...), append([]domain.Ticket(nil), s.updated...)
}

var _ TicketStore = (*memTicketStore)(nil)

// stubPort отвечает успехом на все операции браузера.
type stubPort struct{}

func (stubPort) Init(ctx context.Context) error { return nil }

func (stubPort) Close() error { return nil }

func (stubPort) Navigate(ctx context.Context, url string) error { return nil }

func (stubPort) URL() string { return "https://example.test/nget/train-search" }

func (stubPort) Click(ctx context.Context, locs []browser.Locator) error { return nil }

func (stubPort) Fill(ctx context.Context, locs []browser.Locator, value string) error { return nil }

func (stubPort) Press(ctx context.Context, locs []browser.Locator, key string) error { return nil }

func (stubPort) Select(ctx context.Context, locs []browser.Locator, value string) error { return nil }

func (stubPort) Text(ctx context.Context, selector string) (string, error) { return "", nil }

func (stubPort) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	return "", false, nil
}

func (stubPort) Visible(ctx context.Context, selector string) (bool, error) { return true, nil }

func (stubPort) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (stubPort) WaitForLogin(ctx context.Context, timeout time.Duration) (bool, error) {
	return true, nil
}

func (stubPort) WaitForClicks(ctx context.Context, threshold int, timeout time.Duration) (bool, error) {
	return true, nil
}

func (stubPort) Cookies(ctx context.Context) ([]session.Cookie, error) { return nil, nil }

func (stubPort) SetCookies(ctx context.Context, cookies []session.Cookie) error { return nil }

func (stubPort) Screenshot(ctx context.Context, name string) (string, error) { return "", nil }

var _ browser.Port = stubPort{}

type stubSolver struct{}

func (stubSolver) SolveAndSubmit(ctx context.Context, page captcha.Page) error { return nil }

func fastConfig() workflow.Config {
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

func testHandler(t *testing.T, store TicketStore) *Handler {
	t.Helper()
	eng, err := engine.New(engine.Config{
		DataDir:  t.TempDir(),
		Workflow: fastConfig(),
		Ports: func(req *domain.BookingRequest, logger *slog.Logger) (browser.Port, error) {
			return stubPort{}, nil
		},
		Solvers: func(req *domain.BookingRequest, logger *slog.Logger) (workflow.Solver, error) {
			return stubSolver{}, nil
		},
	})
	if err != nil {
		t.Fatalf("не удалось создать engine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	return NewHandler(Config{Engine: eng, Tickets: store})
}

func validRequest() *domain.BookingRequest {
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

func startRequest(t *testing.T, req *domain.BookingRequest) *http.Request {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("не удалось сериализовать запрос: %v", err)
	}
	return httptest.NewRequest(http.MethodPost, "/api/v1/booking/start", bytes.NewReader(body))
}

func TestStartBookingFinalizesHistory(t *testing.T) {
	store := &memTicketStore{}
	h := testHandler(t, store)

	rec := httptest.NewRecorder()
	h.StartBooking(rec, startRequest(t, validRequest()))
	if rec.Code != http.StatusOK {
		t.Fatalf("код ответа %d, ожидался %d", rec.Code, http.StatusOK)
	}

	// Workflow завершается в фоне; исход дописывает подписчик шины.
	deadline := time.After(5 * time.Second)
	for {
		_, updated := store.snapshot()
		if len(updated) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("тикет не финализирован: запись осталась RUNNING")
		case <-time.After(time.Millisecond):
		}
	}

	created, updated := store.snapshot()
	if len(created) != 1 {
		t.Fatalf("создано %d записей, ожидалась 1", len(created))
	}
	if created[0].Status != domain.TicketStatusRunning {
		t.Errorf("начальный статус %s, ожидался %s", created[0].Status, domain.TicketStatusRunning)
	}
	if updated[0].ID != created[0].ID {
		t.Errorf("финализирован тикет %s, ожидался %s", updated[0].ID, created[0].ID)
	}
	if updated[0].Status != domain.TicketStatusBooked {
		t.Errorf("финальный статус %s, ожидался %s", updated[0].Status, domain.TicketStatusBooked)
	}
}

func TestStartBookingRejectedLeavesNoHistory(t *testing.T) {
	store := &memTicketStore{}
	h := testHandler(t, store)

	req := validRequest()
	req.TrainNo = ""
	rec := httptest.NewRecorder()
	h.StartBooking(rec, startRequest(t, req))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("код ответа %d, ожидался %d", rec.Code, http.StatusBadRequest)
	}

	created, updated := store.snapshot()
	if len(created) != 0 || len(updated) != 0 {
		t.Errorf("отклонённая заявка оставила записи в истории: created=%d updated=%d",
			len(created), len(updated))
	}
}

func TestTrackTicketMatchesItsRun(t *testing.T) {
	store := &memTicketStore{}
	h := NewHandler(Config{Tickets: store})

	ticket := &domain.Ticket{ID: uuid.New(), Status: domain.TicketStatusRunning}

	// Финал чужого запуска на той же шине не должен засчитаться.
	events := make(chan workflow.Event, 4)
	events <- workflow.Event{
		Type:      workflow.EventFinished,
		BookingID: uuid.New(),
		Curr:      domain.StateFailed,
		Message:   "login failed",
	}
	events <- workflow.Event{
		Type:      workflow.EventStateChanged,
		BookingID: ticket.ID,
		Curr:      domain.StatePayment,
	}
	events <- workflow.Event{
		Type:      workflow.EventFinished,
		BookingID: ticket.ID,
		Curr:      domain.StateCompleted,
	}
	close(events)

	unsubscribed := false
	h.trackTicket(ticket, events, func() { unsubscribed = true })

	_, updated := store.snapshot()
	if len(updated) != 1 {
		t.Fatalf("записей об исходе %d, ожидалась 1", len(updated))
	}
	if updated[0].Status != domain.TicketStatusBooked {
		t.Errorf("статус %s, ожидался %s", updated[0].Status, domain.TicketStatusBooked)
	}
	if updated[0].LastError != "" {
		t.Errorf("чужая ошибка попала в тикет: %q", updated[0].LastError)
	}
	if !unsubscribed {
		t.Error("подписка не снята после финализации")
	}
}

func TestTrackTicketRecordsFailure(t *testing.T) {
	store := &memTicketStore{}
	h := NewHandler(Config{Tickets: store})

	ticket := &domain.Ticket{ID: uuid.New(), Status: domain.TicketStatusRunning}

	events := make(chan workflow.Event, 1)
	events <- workflow.Event{
		Type:      workflow.EventFinished,
		BookingID: ticket.ID,
		Curr:      domain.StateFailed,
		Message:   "captcha rejected",
	}
	close(events)

	h.trackTicket(ticket, events, func() {})

	_, updated := store.snapshot()
	if len(updated) != 1 {
		t.Fatalf("записей об исходе %d, ожидалась 1", len(updated))
	}
	if updated[0].Status != domain.TicketStatusFailed {
		t.Errorf("статус %s, ожидался %s", updated[0].Status, domain.TicketStatusFailed)
	}
	if updated[0].LastError != "captcha rejected" {
		t.Errorf("текст ошибки %q, ожидался %q", updated[0].LastError, "captcha rejected")
	}
}
