package domain

import (
	"errors"
	"strings"
	"testing"
)

func validBookingRequest() *BookingRequest {
	return &BookingRequest{
		TrainNo:            "12301",
		TrainCoach:         "SL",
		SourceStation:      "NDLS",
		DestinationStation: "HWH",
		TravelDate:         "15/09/2026",
		Username:           "user",
		Password:           "pass",
		Passengers: []Passenger{
			{Name: "Ivan", Age: 30, Gender: "Male"},
		},
	}
}

func TestValidateAcceptsCompleteRequest(t *testing.T) {
	if err := validBookingRequest().Validate(); err != nil {
		t.Fatalf("валидная заявка отклонена: %v", err)
	}
}

func TestValidateRequiresSourceStation(t *testing.T) {
	req := validBookingRequest()
	req.SourceStation = "  "

	err := req.Validate()
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("ожидалась ErrInvalidRequest, получено %v", err)
	}
	if !strings.Contains(err.Error(), "SOURCE_STATION") {
		t.Errorf("ошибка не называет поле: %v", err)
	}
}

func TestValidateRejectsEnabledProxyWithoutHost(t *testing.T) {
	req := validBookingRequest()
	req.Proxy = &ProxyConfig{Enabled: true, Host: "", Port: 8080}

	if err := req.Validate(); !errors.Is(err, ErrInvalidProxy) {
		t.Fatalf("ожидалась ErrInvalidProxy, получено %v", err)
	}
}

func TestProxyValidate(t *testing.T) {
	cases := []struct {
		name  string
		proxy ProxyConfig
		ok    bool
	}{
		{"выключенный прокси без адреса", ProxyConfig{Enabled: false}, true},
		{"включённый без host", ProxyConfig{Enabled: true, Port: 8080}, false},
		{"включённый без порта", ProxyConfig{Enabled: true, Host: "proxy.local"}, false},
		{"порт вне диапазона", ProxyConfig{Enabled: true, Host: "proxy.local", Port: 70000}, false},
		{"неизвестная схема", ProxyConfig{Enabled: true, Host: "proxy.local", Port: 8080, Scheme: "ftp"}, false},
		{"socks5", ProxyConfig{Enabled: true, Host: "proxy.local", Port: 1080, Scheme: "socks5"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.proxy.Validate()
			if tc.ok && err != nil {
				t.Errorf("неожиданная ошибка: %v", err)
			}
			if !tc.ok {
				if !errors.Is(err, ErrInvalidProxy) {
					t.Errorf("ожидалась ErrInvalidProxy, получено %v", err)
				}
			}
		})
	}
}

func TestValidateRejectsBadTravelDate(t *testing.T) {
	for _, date := range []string{"", "2026-09-15", "15/09/26", "aa/bb/cccc"} {
		req := validBookingRequest()
		req.TravelDate = date
		if err := req.Validate(); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("дата %q: ожидалась ErrInvalidRequest, получено %v", date, err)
		}
	}
}
