package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// StatusResponse — состояние движка бронирования из API.
type StatusResponse struct {
	Running   bool     `json:"running"`
	State     string   `json:"state"`
	LastError string   `json:"lastError,omitempty"`
	Actions   []string `json:"actions,omitempty"`
}

// LogEntry — запись лога из API.
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Station — станция из API.
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TicketResponse — тикет из истории бронирований.
type TicketResponse struct {
	ID                 string `json:"id"`
	TrainNo            string `json:"train_no"`
	SourceStation      string `json:"source_station"`
	DestinationStation string `json:"destination_station"`
	TravelDate         string `json:"travel_date"`
	Quota              string `json:"quota"`
	Username           string `json:"username"`
	Status             string `json:"status"`
	AttemptCount       int    `json:"attempt_count"`
	LastError          string `json:"last_error,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// ScheduleResponse — расписание запуска из API.
type ScheduleResponse struct {
	ID        string `json:"id"`
	TrainNo   string `json:"train_no"`
	Route     string `json:"route"`
	StartAt   string `json:"start_at,omitempty"`
	CronExpr  string `json:"cron_expr,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Enabled   bool   `json:"enabled"`
	NextDueAt string `json:"next_due_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// --- Request types ---

// CreateScheduleRequest — создание расписания.
type CreateScheduleRequest struct {
	Request  json.RawMessage `json:"request"`
	StartAt  *string         `json:"start_at,omitempty"`
	CronExpr string          `json:"cron_expr,omitempty"`
	Timezone string          `json:"timezone,omitempty"`
}

// SaveConfigRequest — сохранение конфигурации бронирования.
type SaveConfigRequest struct {
	Request json.RawMessage `json:"request"`
	Encrypt bool            `json:"encrypt,omitempty"`
}

// ListTicketsOpts — параметры фильтрации тикетов.
type ListTicketsOpts struct {
	Status   string
	Username string
	Limit    int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Railbot API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Booking ---

// StartBooking запускает workflow бронирования с переданным запросом.
func (c *Client) StartBooking(request json.RawMessage) (*StatusResponse, error) {
	var status StatusResponse
	err := c.doData(http.MethodPost, "/api/v1/booking/start", request, &status)
	return &status, err
}

// StopBooking останавливает активный workflow.
func (c *Client) StopBooking() (*StatusResponse, error) {
	var status StatusResponse
	err := c.post("/api/v1/booking/stop", nil, &status)
	return &status, err
}

// PauseBooking приостанавливает активный workflow.
func (c *Client) PauseBooking() (*StatusResponse, error) {
	var status StatusResponse
	err := c.post("/api/v1/booking/pause", nil, &status)
	return &status, err
}

// ResumeBooking возобновляет приостановленный workflow.
func (c *Client) ResumeBooking() (*StatusResponse, error) {
	var status StatusResponse
	err := c.post("/api/v1/booking/resume", nil, &status)
	return &status, err
}

// RecoverBooking перезапускает workflow из сохранённого checkpoint.
func (c *Client) RecoverBooking() (*StatusResponse, error) {
	var status StatusResponse
	err := c.post("/api/v1/booking/recover", nil, &status)
	return &status, err
}

// BookingStatus возвращает состояние движка.
func (c *Client) BookingStatus() (*StatusResponse, error) {
	var status StatusResponse
	err := c.get("/api/v1/booking/status", &status)
	return &status, err
}

// Logs возвращает последние записи лога.
func (c *Client) Logs(limit int) ([]LogEntry, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var entries []LogEntry
	err := c.list("/api/v1/logs", params, &entries)
	return entries, err
}

// --- Config ---

// GetConfig возвращает сохранённую конфигурацию бронирования.
func (c *Client) GetConfig() (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.get("/api/v1/config", &raw)
	return raw, err
}

// SaveConfig сохраняет конфигурацию бронирования.
func (c *Client) SaveConfig(request json.RawMessage, encrypt bool) error {
	req := SaveConfigRequest{Request: request, Encrypt: encrypt}
	return c.put("/api/v1/config", req, nil)
}

// DeleteConfig удаляет сохранённую конфигурацию.
func (c *Client) DeleteConfig() error {
	return c.delete("/api/v1/config")
}

// --- Stations ---

// SearchStations ищет станции по коду или названию.
func (c *Client) SearchStations(query string) ([]Station, error) {
	params := url.Values{}
	params.Set("q", query)

	var result []Station
	err := c.list("/api/v1/stations", params, &result)
	return result, err
}

// --- Tickets ---

// ListTickets возвращает историю тикетов.
func (c *Client) ListTickets(opts ListTicketsOpts) ([]TicketResponse, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Username != "" {
		params.Set("username", opts.Username)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var tickets []TicketResponse
	err := c.list("/api/v1/tickets", params, &tickets)
	return tickets, err
}

// GetTicket возвращает тикет по ID.
func (c *Client) GetTicket(id string) (*TicketResponse, error) {
	var ticket TicketResponse
	err := c.get("/api/v1/tickets/"+id, &ticket)
	return &ticket, err
}

// DeleteTicket удаляет тикет из истории.
func (c *Client) DeleteTicket(id string) error {
	return c.delete("/api/v1/tickets/" + id)
}

// --- Schedules ---

// ListSchedules возвращает расписания запусков.
func (c *Client) ListSchedules() ([]ScheduleResponse, error) {
	var schedules []ScheduleResponse
	err := c.list("/api/v1/schedules", nil, &schedules)
	return schedules, err
}

// CreateSchedule создаёт расписание запуска.
func (c *Client) CreateSchedule(req CreateScheduleRequest) (*ScheduleResponse, error) {
	var schedule ScheduleResponse
	err := c.post("/api/v1/schedules", req, &schedule)
	return &schedule, err
}

// DeleteSchedule удаляет расписание.
func (c *Client) DeleteSchedule(id string) error {
	return c.delete("/api/v1/schedules/" + id)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) put(path string, body any, result any) error {
	return c.doData(http.MethodPut, path, body, result)
}

func (c *Client) delete(path string) error {
	resp, err := c.do(http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return c.checkError(resp)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
