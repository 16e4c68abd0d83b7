package recovery

import (
	"testing"
	"time"

	"github.com/shaiso/railbot/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cp := &Checkpoint{
		Request: &domain.BookingRequest{
			TrainNo:            "12951",
			SourceStation:      "NDLS",
			DestinationStation: "BCT",
		},
		CurrentState: domain.StateSearching,
		Timestamp:    time.Now().UTC().Truncate(time.Second),
		AttemptCount: 2,
		LastError:    "element not found: #train-list",
	}
	if err := s.Save(cp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatalf("ожидали контрольную точку")
	}
	if got.CurrentState != domain.StateSearching {
		t.Errorf("CurrentState = %s", got.CurrentState)
	}
	if got.AttemptCount != 2 || got.LastError == "" {
		t.Errorf("поля искажены: %+v", got)
	}
	if got.Request == nil || got.Request.TrainNo != "12951" {
		t.Errorf("Request искажён: %+v", got.Request)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	s := newTestStore(t)

	cp, err := s.Load()
	if err != nil {
		t.Fatalf("отсутствие файла не должно быть ошибкой: %v", err)
	}
	if cp != nil {
		t.Errorf("ожидали nil, получили %+v", cp)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(&Checkpoint{CurrentState: domain.StateLoggingIn}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(&Checkpoint{CurrentState: domain.StatePayment}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentState != domain.StatePayment {
		t.Errorf("ожидали последнее состояние, получили %s", got.CurrentState)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(&Checkpoint{CurrentState: domain.StateCompleted}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	cp, err := s.Load()
	if err != nil || cp != nil {
		t.Errorf("после Clear ожидали пустое хранилище: %+v, %v", cp, err)
	}

	if err := s.Clear(); err != nil {
		t.Errorf("повторный Clear: %v", err)
	}
}
