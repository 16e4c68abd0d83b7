package session

import (
	"testing"
	"time"
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

	saved := []Cookie{
		{Name: "JSESSIONID", Value: "abc", Domain: ".example.test", Path: "/", HTTPOnly: true, Secure: true, SameSite: "None"},
		{Name: "token", Value: "xyz", Domain: ".example.test", ExpirationDate: float64(time.Now().Add(time.Hour).Unix())},
	}
	if err := s.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("ожидали 2 cookie, получили %d", len(loaded))
	}
	if loaded[0].Name != "JSESSIONID" || loaded[0].Value != "abc" || !loaded[0].HTTPOnly {
		t.Errorf("первый cookie искажён: %+v", loaded[0])
	}
}

func TestLoadWithoutFile(t *testing.T) {
	s := newTestStore(t)

	cookies, err := s.Load()
	if err != nil {
		t.Fatalf("отсутствие файла не должно быть ошибкой: %v", err)
	}
	if cookies != nil {
		t.Errorf("ожидали nil, получили %v", cookies)
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save([]Cookie{{Name: "a", Value: "b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	cookies, err := s.Load()
	if err != nil || cookies != nil {
		t.Errorf("после Clear ожидали пустое хранилище: %v, %v", cookies, err)
	}

	// Повторный Clear без файла не ошибка.
	if err := s.Clear(); err != nil {
		t.Errorf("повторный Clear: %v", err)
	}
}

func TestValid(t *testing.T) {
	future := float64(time.Now().Add(time.Hour).Unix())
	past := float64(time.Now().Add(-time.Hour).Unix())

	cases := []struct {
		name    string
		cookies []Cookie
		want    bool
	}{
		{"пустой набор", nil, false},
		{"сессионные cookies", []Cookie{{Name: "a"}, {Name: "b"}}, true},
		{"все в будущем", []Cookie{{Name: "a", ExpirationDate: future}}, true},
		{"один истёк", []Cookie{{Name: "a", ExpirationDate: future}, {Name: "b", ExpirationDate: past}}, false},
		{"смесь сессионных и действительных", []Cookie{{Name: "a"}, {Name: "b", ExpirationDate: future}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.cookies); got != tc.want {
				t.Errorf("Valid() = %v, ожидали %v", got, tc.want)
			}
		})
	}
}
