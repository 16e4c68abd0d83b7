package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shaiso/railbot/internal/domain"
)

func TestRefreshNotConfigured(t *testing.T) {
	cases := []*domain.TokenConfig{
		nil,
		{UseToken: false},
		{UseToken: true}, // ни токена, ни API
	}
	for _, cfg := range cases {
		m := NewManager(cfg, nil)
		if err := m.Refresh(context.Background()); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("cfg=%+v: ожидалась ErrNotConfigured, получено %v", cfg, err)
		}
	}
}

func TestRefreshUsesProvidedToken(t *testing.T) {
	m := NewManager(&domain.TokenConfig{UseToken: true, Token: "pre-generated"}, nil)

	tok, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token вернул ошибку: %v", err)
	}
	if tok != "pre-generated" {
		t.Errorf("токен %q, ожидался pre-generated", tok)
	}
}

func TestRefreshFetchesFromAPI(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("X-Token"); got != "secret" {
			t.Errorf("заголовок авторизации %q, ожидался secret", got)
		}
		w.Write([]byte(`{"token": "from-api"}`))
	}))
	defer srv.Close()

	m := NewManager(&domain.TokenConfig{
		UseToken:               true,
		APIURL:                 srv.URL,
		AuthHeaderName:         "X-Token",
		AuthHeaderValue:        "secret",
		RefreshIntervalSeconds: 3600,
	}, nil)

	tok, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token вернул ошибку: %v", err)
	}
	if tok != "from-api" {
		t.Errorf("токен %q, ожидался from-api", tok)
	}

	// Повторный вызов отдаёт кэш без запроса к API.
	if _, err := m.Token(context.Background()); err != nil {
		t.Fatalf("повторный Token вернул ошибку: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("API вызван %d раз, ожидался 1", calls.Load())
	}

	// Clear инвалидирует кэш.
	m.Clear()
	if _, err := m.Token(context.Background()); err != nil {
		t.Fatalf("Token после Clear вернул ошибку: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("API вызван %d раз после Clear, ожидалось 2", calls.Load())
	}
}

func TestRefreshAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewManager(&domain.TokenConfig{UseToken: true, APIURL: srv.URL}, nil)
	if err := m.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh не вернул ошибку при 500 от API")
	}
}

func TestParseToken(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"нижний регистр", `{"token": "a"}`, "a"},
		{"верхний регистр", `{"Token": "b"}`, "b"},
		{"вложенный data", `{"data": {"token": "c"}}`, "c"},
		{"простой текст", "  plain-token\n", "plain-token"},
		{"JSON без токена", `{"status": "ok"}`, ""},
		{"пустое тело", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseToken([]byte(tc.body)); got != tc.want {
				t.Errorf("parseToken(%q) = %q, ожидалось %q", tc.body, got, tc.want)
			}
		})
	}
}
