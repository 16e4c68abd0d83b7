package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shaiso/railbot/internal/domain"
)

// defaultRefreshInterval — срок жизни токена по умолчанию.
const defaultRefreshInterval = time.Hour

var (
	// ErrNotConfigured — токен-бронирование выключено или не настроено.
	ErrNotConfigured = errors.New("token booking not configured")

	// ErrEmptyToken — API вернул пустой токен.
	ErrEmptyToken = errors.New("token API returned empty token")
)

// Manager получает токен и хранит его до истечения срока действия.
// Безопасен для вызовов из нескольких горутин.
type Manager struct {
	cfg    *domain.TokenConfig
	client *http.Client
	logger *slog.Logger

	mu     sync.Mutex
	cached string
	expiry time.Time
}

// NewManager создаёт Manager для заданной конфигурации.
func NewManager(cfg *domain.TokenConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Token возвращает действующий токен, при необходимости обновляя его.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.cached != "" && time.Now().Before(m.expiry) {
		t := m.cached
		m.mu.Unlock()
		return t, nil
	}
	m.mu.Unlock()

	if err := m.Refresh(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cached, nil
}

// Refresh получает свежий токен и обновляет кэш.
//
// Заранее заданный токен из конфигурации имеет приоритет над API.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.cfg == nil || !m.cfg.UseToken {
		return ErrNotConfigured
	}

	if m.cfg.Token != "" {
		m.logger.Info("using pre-generated token")
		m.store(m.cfg.Token)
		return nil
	}
	if m.cfg.APIURL == "" {
		return ErrNotConfigured
	}

	m.logger.Info("fetching token", "url", m.cfg.APIURL)
	tok, err := m.fetch(ctx)
	if err != nil {
		return err
	}
	m.store(tok)
	return nil
}

// Clear сбрасывает кэшированный токен.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.cached = ""
	m.expiry = time.Time{}
	m.mu.Unlock()
}

func (m *Manager) store(tok string) {
	interval := defaultRefreshInterval
	if m.cfg.RefreshIntervalSeconds > 0 {
		interval = time.Duration(m.cfg.RefreshIntervalSeconds) * time.Second
	}
	m.mu.Lock()
	m.cached = tok
	m.expiry = time.Now().Add(interval)
	m.mu.Unlock()
}

func (m *Manager) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.cfg.APIURL, nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	if m.cfg.AuthHeaderName != "" && m.cfg.AuthHeaderValue != "" {
		req.Header.Set(m.cfg.AuthHeaderName, m.cfg.AuthHeaderValue)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	tok := parseToken(body)
	if tok == "" {
		return "", ErrEmptyToken
	}
	return tok, nil
}

// parseToken извлекает токен из JSON-ответа или текста.
func parseToken(body []byte) string {
	var payload struct {
		Token      string `json:"token"`
		TokenUpper string `json:"Token"`
		Data       struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Token != "":
			return payload.Token
		case payload.TokenUpper != "":
			return payload.TokenUpper
		case payload.Data.Token != "":
			return payload.Data.Token
		}
		// JSON без известных полей не считается текстовым токеном.
		if len(body) > 0 && (body[0] == '{' || body[0] == '[') {
			return ""
		}
	}
	return strings.TrimSpace(string(body))
}
