package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shaiso/railbot/internal/domain"
)

// Checkpoint — снимок workflow на момент последней смены состояния.
type Checkpoint struct {
	// Request — заявка, с которой был запущен workflow.
	Request *domain.BookingRequest `json:"config"`

	// CurrentState — состояние на момент записи.
	CurrentState domain.WorkflowState `json:"currentState"`

	// Timestamp — время записи.
	Timestamp time.Time `json:"timestamp"`

	// AttemptCount — номер попытки бронирования.
	AttemptCount int `json:"attemptCount"`

	// LastError — последняя ошибка, если была.
	LastError string `json:"lastError,omitempty"`
}

// Store — файловое хранилище контрольной точки.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore создаёт хранилище в каталоге dir (файл last_state.json).
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recovery dir: %w", err)
	}
	return &Store{
		path:   filepath.Join(dir, "last_state.json"),
		logger: logger,
	}, nil
}

// Save записывает контрольную точку, заменяя предыдущую.
func (s *Store) Save(cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	s.logger.Debug("checkpoint saved", "state", cp.CurrentState)
	return nil
}

// Load читает последнюю контрольную точку.
// Отсутствие файла не является ошибкой: возвращается nil.
func (s *Store) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Clear удаляет контрольную точку.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	s.logger.Debug("checkpoint cleared")
	return nil
}
