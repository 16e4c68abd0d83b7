package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки валидации BookingRequest.
var (
	// ErrInvalidRequest — запрос не прошёл валидацию.
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrInvalidProxy — некорректная конфигурация прокси.
	ErrInvalidProxy = errors.New("invalid proxy configuration")

	// ErrInvalidToken — некорректная токен-конфигурация.
	ErrInvalidToken = errors.New("invalid token configuration")
)

// Типы распознавателей капчи.
const (
	CaptchaEasyOCR   = "EasyOCR"
	CaptchaTesseract = "Tesseract"
	CaptchaManual    = "Manual"
)

// BookingRequest — входная конфигурация одного бронирования.
//
// Запрос иммутабелен: валидируется один раз перед запуском workflow
// и не меняется в процессе выполнения. JSON-имена полей совместимы
// с конфигурационным файлом десктоп-клиента.
type BookingRequest struct {
	// TrainNo — номер поезда.
	TrainNo string `json:"TRAIN_NO"`

	// TrainCoach — класс вагона (SL, 3A, 2A...).
	TrainCoach string `json:"TRAIN_COACH"`

	// SourceStation — станция отправления.
	SourceStation string `json:"SOURCE_STATION"`

	// DestinationStation — станция назначения.
	DestinationStation string `json:"DESTINATION_STATION"`

	// TravelDate — дата поездки в формате DD/MM/YYYY.
	TravelDate string `json:"TRAVEL_DATE"`

	// BoardingStation — станция посадки, если отличается от станции отправления.
	BoardingStation string `json:"BOARDING_STATION,omitempty"`

	// Tatkal — бронирование по квоте Tatkal (открывается в фиксированное время).
	Tatkal bool `json:"TATKAL"`

	// PremiumTatkal — бронирование по квоте Premium Tatkal.
	PremiumTatkal bool `json:"PREMIUM_TATKAL"`

	// Passengers — список пассажиров (минимум один).
	Passengers []Passenger `json:"PASSENGER_DETAILS"`

	// Username и Password — учётные данные IRCTC.
	Username string `json:"USERNAME"`
	Password string `json:"PASSWORD"`

	// UpiID — идентификатор UPI для оплаты.
	// Пустое значение — оплата завершается вручную.
	UpiID string `json:"UPI_ID,omitempty"`

	// Proxy — опциональная конфигурация прокси.
	Proxy *ProxyConfig `json:"PROXY_CONFIG,omitempty"`

	// CaptchaSolver — распознаватель капчи: EasyOCR, Tesseract или Manual.
	CaptchaSolver string `json:"CAPTCHA_SOLVER_TYPE"`

	// Headless — запуск браузера без окна.
	Headless bool `json:"HEADLESS_MODE"`

	// Token — опциональная токен-конфигурация для API-бронирования.
	Token *TokenConfig `json:"TOKEN_CONFIG,omitempty"`
}

// QuotaGated возвращает true, если бронирование привязано к квотному окну.
func (r *BookingRequest) QuotaGated() bool {
	return r.Tatkal || r.PremiumTatkal
}

// Validate проверяет обязательные поля запроса.
// Возвращает ошибку, обёрнутую в ErrInvalidRequest, с описанием первого
// найденного нарушения.
func (r *BookingRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.TrainNo) == "":
		return fmt.Errorf("%w: TRAIN_NO is required", ErrInvalidRequest)
	case strings.TrimSpace(r.SourceStation) == "":
		return fmt.Errorf("%w: SOURCE_STATION is required", ErrInvalidRequest)
	case strings.TrimSpace(r.DestinationStation) == "":
		return fmt.Errorf("%w: DESTINATION_STATION is required", ErrInvalidRequest)
	case strings.TrimSpace(r.Username) == "":
		return fmt.Errorf("%w: USERNAME is required", ErrInvalidRequest)
	case strings.TrimSpace(r.Password) == "":
		return fmt.Errorf("%w: PASSWORD is required", ErrInvalidRequest)
	case len(r.Passengers) == 0:
		return fmt.Errorf("%w: at least one passenger is required", ErrInvalidRequest)
	}

	if err := validateTravelDate(r.TravelDate); err != nil {
		return err
	}

	for i, p := range r.Passengers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: passenger %d: %v", ErrInvalidRequest, i+1, err)
		}
	}

	if r.Proxy != nil {
		if err := r.Proxy.Validate(); err != nil {
			return err
		}
	}
	if r.Token != nil {
		if err := r.Token.Validate(); err != nil {
			return err
		}
	}

	switch r.CaptchaSolver {
	case "", CaptchaEasyOCR, CaptchaTesseract, CaptchaManual:
	default:
		return fmt.Errorf("%w: unknown CAPTCHA_SOLVER_TYPE %q", ErrInvalidRequest, r.CaptchaSolver)
	}

	return nil
}

// validateTravelDate проверяет формат даты DD/MM/YYYY.
func validateTravelDate(date string) error {
	if strings.TrimSpace(date) == "" {
		return fmt.Errorf("%w: TRAVEL_DATE is required", ErrInvalidRequest)
	}
	parts := strings.Split(date, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return fmt.Errorf("%w: TRAVEL_DATE must be DD/MM/YYYY, got %q", ErrInvalidRequest, date)
	}
	for _, part := range parts {
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return fmt.Errorf("%w: TRAVEL_DATE must be DD/MM/YYYY, got %q", ErrInvalidRequest, date)
			}
		}
	}
	return nil
}

// Passenger — данные одного пассажира.
type Passenger struct {
	// Name — имя пассажира.
	Name string `json:"NAME"`

	// Age — возраст.
	Age int `json:"AGE"`

	// Gender — пол (Male, Female, Transgender).
	Gender string `json:"GENDER"`

	// Seat — предпочтение по месту (Lower, Upper... или No Preference).
	Seat string `json:"SEAT"`

	// Food — предпочтение по питанию (Veg, Non Veg... или No Food).
	Food string `json:"FOOD"`
}

// Validate проверяет поля пассажира.
func (p *Passenger) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.Age <= 0 || p.Age > 125 {
		return fmt.Errorf("age %d out of range", p.Age)
	}
	return nil
}

// ProxyConfig — конфигурация исходящего прокси браузера.
type ProxyConfig struct {
	// Enabled — использовать прокси для этого запуска.
	Enabled bool `json:"enabled"`

	// Host и Port — адрес прокси-сервера.
	Host string `json:"host"`
	Port int    `json:"port"`

	// Username и Password — опциональная аутентификация.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`

	// Scheme — схема прокси: http, https, socks4 или socks5.
	Scheme string `json:"scheme"`
}

// Validate проверяет конфигурацию прокси.
// Выключенный прокси всегда валиден.
func (p *ProxyConfig) Validate() error {
	if !p.Enabled {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("%w: host is required when proxy is enabled", ErrInvalidProxy)
	}
	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidProxy, p.Port)
	}
	switch p.Scheme {
	case "", "http", "https", "socks4", "socks5":
	default:
		return fmt.Errorf("%w: unknown scheme %q", ErrInvalidProxy, p.Scheme)
	}
	return nil
}

// Server возвращает адрес прокси для запуска браузера (host:port).
// Для выключенного прокси возвращает пустую строку.
func (p *ProxyConfig) Server() string {
	if p == nil || !p.Enabled || p.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// TokenConfig — конфигурация токен-бронирования.
//
// Токен либо задан заранее (Token), либо запрашивается с внешнего
// API (APIURL) и периодически обновляется.
type TokenConfig struct {
	// APIURL — endpoint генерации токена.
	APIURL string `json:"apiUrl,omitempty"`

	// Token — заранее полученный токен.
	Token string `json:"token,omitempty"`

	// AuthHeaderName и AuthHeaderValue — заголовок авторизации
	// для запроса токена (например "X-Token").
	AuthHeaderName  string `json:"authHeaderName,omitempty"`
	AuthHeaderValue string `json:"authHeaderValue,omitempty"`

	// UseToken — включает токен-бронирование.
	UseToken bool `json:"useToken"`

	// RefreshIntervalSeconds — интервал обновления токена в секундах.
	RefreshIntervalSeconds int `json:"refreshIntervalSeconds,omitempty"`
}

// Validate проверяет токен-конфигурацию.
// Выключенный режим всегда валиден; включённый требует APIURL или Token.
func (t *TokenConfig) Validate() error {
	if !t.UseToken {
		return nil
	}
	if strings.TrimSpace(t.APIURL) == "" && strings.TrimSpace(t.Token) == "" {
		return fmt.Errorf("%w: either apiUrl or token must be set", ErrInvalidToken)
	}
	return nil
}
