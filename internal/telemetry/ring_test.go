package telemetry

import (
	"fmt"
	"log/slog"
	"testing"
	"time"
)

func TestRingTailOrdering(t *testing.T) {
	r := NewRing(3)

	for i := 1; i <= 2; i++ {
		r.Append(Entry{Message: fmt.Sprintf("m%d", i), Time: time.Now()})
	}

	tail := r.Tail(0)
	if len(tail) != 2 || tail[0].Message != "m1" || tail[1].Message != "m2" {
		t.Fatalf("неверный порядок до переполнения: %+v", tail)
	}
}

func TestRingEviction(t *testing.T) {
	r := NewRing(3)

	for i := 1; i <= 5; i++ {
		r.Append(Entry{Message: fmt.Sprintf("m%d", i)})
	}

	tail := r.Tail(0)
	if len(tail) != 3 {
		t.Fatalf("ожидали 3 записи, получили %d", len(tail))
	}
	want := []string{"m3", "m4", "m5"}
	for i, w := range want {
		if tail[i].Message != w {
			t.Errorf("позиция %d: %s, ожидали %s", i, tail[i].Message, w)
		}
	}
}

func TestRingTailLimit(t *testing.T) {
	r := NewRing(10)
	for i := 1; i <= 6; i++ {
		r.Append(Entry{Message: fmt.Sprintf("m%d", i)})
	}

	tail := r.Tail(2)
	if len(tail) != 2 || tail[0].Message != "m5" || tail[1].Message != "m6" {
		t.Errorf("Tail(2) = %+v", tail)
	}
}

func TestTeeHandlerCapturesAttrs(t *testing.T) {
	r := NewRing(10)
	discard := slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(newTeeHandler(discard, r))

	logger.With("booking_id", "b-1").Info("state changed", "state", "Searching")

	tail := r.Tail(0)
	if len(tail) != 1 {
		t.Fatalf("ожидали 1 запись, получили %d", len(tail))
	}
	e := tail[0]
	if e.Message != "state changed" || e.Level != "INFO" {
		t.Errorf("запись искажена: %+v", e)
	}
	if e.Attrs["booking_id"] != "b-1" || e.Attrs["state"] != "Searching" {
		t.Errorf("атрибуты не сохранились: %+v", e.Attrs)
	}
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }
