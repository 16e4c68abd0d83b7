package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestSucceedsFirstAttempt(t *testing.T) {
	e := NewExecutor(fastPolicy(3), nil)

	calls := 0
	err := e.Execute(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if calls != 1 {
		t.Errorf("ожидали 1 вызов, получили %d", calls)
	}
}

func TestSucceedsAfterFailures(t *testing.T) {
	e := NewExecutor(fastPolicy(3), nil)

	calls := 0
	err := e.Execute(context.Background(), "op", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("временный сбой")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if calls != 3 {
		t.Errorf("ожидали 3 вызова, получили %d", calls)
	}
}

func TestExhaustsAllAttempts(t *testing.T) {
	e := NewExecutor(fastPolicy(2), nil)

	sentinel := errors.New("постоянный сбой")
	calls := 0
	err := e.Execute(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return sentinel
	})

	if err == nil {
		t.Fatalf("ожидали ошибку после исчерпания попыток")
	}
	// MaxRetries=2 означает 3 попытки всего.
	if calls != 3 {
		t.Errorf("ожидали 3 вызова, получили %d", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("последняя ошибка должна быть в цепочке: %v", err)
	}
}

func TestShouldRetryStopsEarly(t *testing.T) {
	fatal := errors.New("невосстановимая ошибка")

	p := fastPolicy(5)
	p.ShouldRetry = func(err error) bool { return !errors.Is(err, fatal) }
	e := NewExecutor(p, nil)

	calls := 0
	err := e.Execute(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return fatal
	})

	if err == nil {
		t.Fatalf("ожидали ошибку")
	}
	if calls != 1 {
		t.Errorf("после невосстановимой ошибки повторов быть не должно, вызовов: %d", calls)
	}
	if !errors.Is(err, fatal) {
		t.Errorf("исходная ошибка должна быть в цепочке: %v", err)
	}
}

func TestContextCancellationDuringDelay(t *testing.T) {
	p := Policy{
		MaxRetries:   5,
		InitialDelay: time.Hour,
		Multiplier:   2.0,
		MaxDelay:     time.Hour,
	}
	e := NewExecutor(p, nil)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- e.Execute(ctx, "op", func(ctx context.Context) error {
			calls++
			return errors.New("сбой")
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ожидали context.Canceled, получили %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Execute не завершился после отмены context")
	}

	if calls != 1 {
		t.Errorf("ожидали 1 вызов до отмены, получили %d", calls)
	}
}

func TestDelayGrowthCappedByMaxDelay(t *testing.T) {
	// Проверяем рост задержки косвенно: суммарное время при
	// InitialDelay=1ms, Multiplier=10, MaxDelay=4ms и 4 повторах
	// не должно превышать разумной границы (1+4+4+4 мс плюс накладные).
	p := Policy{
		MaxRetries:   4,
		InitialDelay: time.Millisecond,
		Multiplier:   10.0,
		MaxDelay:     4 * time.Millisecond,
	}
	e := NewExecutor(p, nil)

	start := time.Now()
	_ = e.Execute(context.Background(), "op", func(ctx context.Context) error {
		return errors.New("сбой")
	})
	elapsed := time.Since(start)

	if elapsed > 500*time.Millisecond {
		t.Errorf("задержки не ограничены MaxDelay: прошло %v", elapsed)
	}
}

func TestZeroPolicyGetsDefaults(t *testing.T) {
	e := NewExecutor(Policy{}, nil)

	if e.policy.InitialDelay != 2*time.Second {
		t.Errorf("InitialDelay по умолчанию: %v", e.policy.InitialDelay)
	}
	if e.policy.Multiplier != 2.0 {
		t.Errorf("Multiplier по умолчанию: %v", e.policy.Multiplier)
	}
	if e.policy.MaxDelay != 2*time.Minute {
		t.Errorf("MaxDelay по умолчанию: %v", e.policy.MaxDelay)
	}
}
