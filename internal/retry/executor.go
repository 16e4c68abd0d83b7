package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy — политика повторных попыток.
type Policy struct {
	// MaxRetries — число повторов после первой попытки.
	// Всего выполняется MaxRetries+1 попыток.
	MaxRetries int

	// InitialDelay — задержка перед первым повтором.
	InitialDelay time.Duration

	// Multiplier — множитель задержки между повторами.
	Multiplier float64

	// MaxDelay — верхняя граница задержки.
	MaxDelay time.Duration

	// ShouldRetry определяет, имеет ли смысл повторять после данной
	// ошибки. nil означает "повторять всегда".
	ShouldRetry func(err error) bool
}

// DefaultPolicy возвращает политику по умолчанию:
// 3 повтора, задержка от 2 секунд с удвоением, не более 2 минут.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: 2 * time.Second,
		Multiplier:   2.0,
		MaxDelay:     2 * time.Minute,
	}
}

// Executor выполняет операции согласно политике повторов.
type Executor struct {
	policy Policy
	logger *slog.Logger
}

// NewExecutor создаёт executor с заданной политикой.
// Нулевые поля политики заменяются значениями по умолчанию.
func NewExecutor(policy Policy, logger *slog.Logger) *Executor {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = 2 * time.Second
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2.0
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{policy: policy, logger: logger}
}

// Execute выполняет op до первого успеха.
//
// Возвращает nil при успехе любой попытки. После исчерпания попыток
// возвращает ошибку с именем операции, числом попыток и последней
// ошибкой в цепочке (errors.Unwrap доступен через %w).
func (e *Executor) Execute(ctx context.Context, name string, op func(ctx context.Context) error) error {
	delay := e.policy.InitialDelay

	var lastErr error
	attempts := e.policy.MaxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		e.logger.Warn("operation failed",
			"operation", name,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", lastErr,
		)

		if e.policy.ShouldRetry != nil && !e.policy.ShouldRetry(lastErr) {
			return fmt.Errorf("%s: non-retryable after attempt %d: %w", name, attempt, lastErr)
		}

		// После последней попытки не ждём.
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * e.policy.Multiplier)
		if delay > e.policy.MaxDelay {
			delay = e.policy.MaxDelay
		}
	}

	return fmt.Errorf("%s: all %d attempts failed: %w", name, attempts, lastErr)
}
