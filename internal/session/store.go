package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Cookie — cookie в формате Chrome-расширений.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path,omitempty"`
	ExpirationDate float64 `json:"expirationDate"`
	HTTPOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
	SameSite       string  `json:"sameSite"`
}

// Store — файловое хранилище cookies сессии.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore создаёт хранилище в каталоге dir (файл robot.json).
// Каталог создаётся при необходимости.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &Store{
		path:   filepath.Join(dir, "robot.json"),
		logger: logger,
	}, nil
}

// Save записывает cookies в файл, заменяя предыдущие.
func (s *Store) Save(cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cookies: %w", err)
	}
	s.logger.Info("cookies saved", "count", len(cookies), "path", s.path)
	return nil
}

// Load читает сохранённые cookies.
// Отсутствие файла не является ошибкой: возвращается nil.
func (s *Store) Load() ([]Cookie, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no saved cookies")
			return nil, nil
		}
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("unmarshal cookies: %w", err)
	}

	s.logger.Info("cookies loaded", "count", len(cookies))
	return cookies, nil
}

// Clear удаляет сохранённые cookies.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove cookies: %w", err)
	}
	s.logger.Info("cookies cleared")
	return nil
}

// Valid сообщает, можно ли восстановить сессию из cookies.
//
// Пустой набор недействителен. Набор действителен, когда у каждого
// cookie expirationDate равен нулю (сессионный) или ещё не наступил.
func Valid(cookies []Cookie) bool {
	if len(cookies) == 0 {
		return false
	}
	now := float64(time.Now().Unix())
	for _, c := range cookies {
		if c.ExpirationDate != 0 && c.ExpirationDate <= now {
			return false
		}
	}
	return true
}
