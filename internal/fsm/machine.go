package fsm

import (
	"fmt"
	"sync"

	"github.com/shaiso/railbot/internal/domain"
)

// resumePrevious — сентинел в таблице переходов: Resume возвращает
// машину в состояние, из которого была выполнена пауза.
const resumePrevious domain.WorkflowState = "__resume_previous__"

// transitionKey — ключ таблицы переходов.
type transitionKey struct {
	from   domain.WorkflowState
	action domain.WorkflowAction
}

// Transition — результат выполнения действия.
//
// Создаётся каждым вызовом ExecuteAction и нигде не сохраняется.
type Transition struct {
	// From — состояние до действия.
	From domain.WorkflowState

	// Action — выполненное действие.
	Action domain.WorkflowAction

	// To — состояние после действия. При Valid == false совпадает с From.
	To domain.WorkflowState

	// Valid — переход найден в таблице.
	Valid bool

	// Err — описание причины отказа при Valid == false.
	Err string
}

// Listener — пассивный наблюдатель смены состояния.
// Вызывается синхронно после фиксации нового состояния, уже вне
// мьютекса машины: наблюдатель может читать машину и выполнять
// медленные операции, не блокируя Current и GetValidActions.
type Listener func(prev, curr domain.WorkflowState, action domain.WorkflowAction)

// Machine — машина состояний workflow бронирования.
// Безопасна для вызовов из нескольких горутин.
type Machine struct {
	mu        sync.Mutex
	current   domain.WorkflowState
	resumeTo  domain.WorkflowState
	table     map[transitionKey]domain.WorkflowState
	listeners []Listener
}

// New создаёт машину в состоянии Idle.
func New() *Machine {
	return &Machine{
		current: domain.StateIdle,
		table:   buildTable(),
	}
}

// buildTable строит фиксированную таблицу переходов.
func buildTable() map[transitionKey]domain.WorkflowState {
	t := map[transitionKey]domain.WorkflowState{
		// Успешный линейный путь.
		{domain.StateIdle, domain.ActionStart}:                  domain.StateInitializing,
		{domain.StateInitializing, domain.ActionNext}:          domain.StateAuthenticating,
		{domain.StateAuthenticating, domain.ActionNext}:        domain.StateLoggingIn,
		{domain.StateLoggingIn, domain.ActionNext}:             domain.StateSearching,
		{domain.StateSearching, domain.ActionNext}:             domain.StateWaitingForQuotaWindow,
		{domain.StateWaitingForQuotaWindow, domain.ActionNext}: domain.StateSelectingTrain,
		{domain.StateSelectingTrain, domain.ActionNext}:        domain.StateFillingDetails,
		{domain.StateFillingDetails, domain.ActionNext}:        domain.StatePayment,
		{domain.StatePayment, domain.ActionNext}:               domain.StateCompleted,

		// Повторная попытка после ошибки.
		{domain.StateFailed, domain.ActionRetry}: domain.StateInitializing,

		// Возобновление после паузы: в состояние, где была пауза.
		{domain.StatePaused, domain.ActionResume}: resumePrevious,
		{domain.StatePaused, domain.ActionStop}:   domain.StateStopped,

		// Перезапуск из финальных состояний.
		{domain.StateCompleted, domain.ActionStart}: domain.StateInitializing,
		{domain.StateFailed, domain.ActionStart}:    domain.StateInitializing,
		{domain.StateStopped, domain.ActionStart}:   domain.StateInitializing,
	}

	// Error/Stop/Pause определены для каждого активного состояния.
	for _, s := range []domain.WorkflowState{
		domain.StateInitializing,
		domain.StateAuthenticating,
		domain.StateLoggingIn,
		domain.StateSearching,
		domain.StateWaitingForQuotaWindow,
		domain.StateSelectingTrain,
		domain.StateFillingDetails,
		domain.StatePayment,
	} {
		t[transitionKey{s, domain.ActionError}] = domain.StateFailed
		t[transitionKey{s, domain.ActionStop}] = domain.StateStopped
		t[transitionKey{s, domain.ActionPause}] = domain.StatePaused
	}

	return t
}

// Current возвращает текущее состояние.
func (m *Machine) Current() domain.WorkflowState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// ExecuteAction выполняет действие по таблице переходов.
//
// Неизвестная пара (состояние, действие) возвращает Transition с
// Valid == false, текущее состояние не меняется, наблюдатели не
// вызываются.
func (m *Machine) ExecuteAction(action domain.WorkflowAction) Transition {
	m.mu.Lock()

	to, ok := m.table[transitionKey{m.current, action}]
	if !ok {
		tr := Transition{
			From:   m.current,
			Action: action,
			To:     m.current,
			Valid:  false,
			Err:    fmt.Sprintf("invalid transition from %s with action %s", m.current, action),
		}
		m.mu.Unlock()
		return tr
	}

	prev := m.current

	switch {
	case to == resumePrevious:
		// Пауза всегда достижима только из активного состояния,
		// поэтому resumeTo здесь заполнен.
		m.current = m.resumeTo
	case action == domain.ActionPause:
		m.resumeTo = prev
		m.current = to
	default:
		m.current = to
	}

	curr := m.current
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	// Наблюдатели работают вне мьютекса: медленный наблюдатель
	// (запись контрольной точки) не блокирует чтение состояния.
	for _, l := range listeners {
		l(prev, curr, action)
	}

	return Transition{
		From:   prev,
		Action: action,
		To:     curr,
		Valid:  true,
	}
}

// GetValidActions возвращает все действия, определённые для текущего
// состояния. Используется для отображения доступных операций.
func (m *Machine) GetValidActions() []domain.WorkflowAction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var actions []domain.WorkflowAction
	for key := range m.table {
		if key.from == m.current {
			actions = append(actions, key.action)
		}
	}
	return actions
}

// Subscribe добавляет наблюдателя смены состояния.
func (m *Machine) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Reset возвращает машину в Idle.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.StateIdle
	m.resumeTo = ""
}
