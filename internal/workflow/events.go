package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/railbot/internal/domain"
)

// EventType — тип события workflow.
type EventType string

const (
	// EventStateChanged — смена состояния машины.
	EventStateChanged EventType = "state_changed"

	// EventLog — человекочитаемое сообщение о ходе шага.
	EventLog EventType = "log"

	// EventFinished — workflow завершился в финальном состоянии.
	EventFinished EventType = "finished"
)

// Event — событие workflow для подписчиков.
//
// BookingID идентифицирует запуск: на общей шине события разных
// запусков различаются по нему.
type Event struct {
	Type      EventType             `json:"type"`
	BookingID uuid.UUID             `json:"bookingId"`
	Prev      domain.WorkflowState  `json:"prev,omitempty"`
	Curr      domain.WorkflowState  `json:"curr,omitempty"`
	Action    domain.WorkflowAction `json:"action,omitempty"`
	Message   string                `json:"message,omitempty"`
	Time      time.Time             `json:"time"`
}

// Hub раздаёт события подписчикам по каналам.
//
// Публикация не блокируется: события для отставшего подписчика
// отбрасываются.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewHub создаёт hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe возвращает канал событий и функцию отписки.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Publish рассылает событие всем подписчикам.
func (h *Hub) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
			// Подписчик не успевает — событие пропускается.
		}
	}
}

// Close закрывает каналы всех подписчиков.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
