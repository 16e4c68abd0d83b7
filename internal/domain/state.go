package domain

// WorkflowState — состояние workflow бронирования.
//
// Жизненный цикл (успешный путь):
//
//	Idle → Initializing → Authenticating → LoggingIn → Searching →
//	WaitingForQuotaWindow → SelectingTrain → FillingDetails → Payment → Completed
//
// Из любого активного состояния возможен переход в Failed (Error),
// Stopped (Stop) или Paused (Pause).
type WorkflowState string

const (
	// StateIdle — workflow не запущен.
	StateIdle WorkflowState = "Idle"

	// StateInitializing — запуск браузера и подготовка окружения.
	StateInitializing WorkflowState = "Initializing"

	// StateAuthenticating — предварительная подготовка аутентификации.
	StateAuthenticating WorkflowState = "Authenticating"

	// StateLoggingIn — вход в учётную запись на сайте.
	StateLoggingIn WorkflowState = "LoggingIn"

	// StateSearching — заполнение и отправка формы поиска поездов.
	StateSearching WorkflowState = "Searching"

	// StateWaitingForQuotaWindow — ожидание открытия квотного окна (Tatkal).
	StateWaitingForQuotaWindow WorkflowState = "WaitingForQuotaWindow"

	// StateSelectingTrain — выбор поезда в результатах поиска.
	StateSelectingTrain WorkflowState = "SelectingTrain"

	// StateFillingDetails — заполнение данных пассажиров.
	StateFillingDetails WorkflowState = "FillingDetails"

	// StatePayment — оплата.
	StatePayment WorkflowState = "Payment"

	// StateCompleted — бронирование успешно завершено.
	StateCompleted WorkflowState = "Completed"

	// StateFailed — бронирование завершилось ошибкой.
	StateFailed WorkflowState = "Failed"

	// StatePaused — workflow приостановлен пользователем.
	StatePaused WorkflowState = "Paused"

	// StateStopped — workflow остановлен пользователем.
	StateStopped WorkflowState = "Stopped"
)

// IsTerminal возвращает true, если состояние финальное.
func (s WorkflowState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateStopped:
		return true
	default:
		return false
	}
}

// IsActive возвращает true для рабочих состояний —
// тех, из которых возможны переходы Error/Stop/Pause.
func (s WorkflowState) IsActive() bool {
	switch s {
	case StateInitializing, StateAuthenticating, StateLoggingIn,
		StateSearching, StateWaitingForQuotaWindow, StateSelectingTrain,
		StateFillingDetails, StatePayment:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление состояния.
func (s WorkflowState) String() string {
	return string(s)
}

// WorkflowAction — действие, переводящее workflow из одного состояния в другое.
type WorkflowAction string

const (
	// ActionStart — запуск (или перезапуск из финального состояния).
	ActionStart WorkflowAction = "Start"

	// ActionStop — остановка пользователем.
	ActionStop WorkflowAction = "Stop"

	// ActionPause — приостановка.
	ActionPause WorkflowAction = "Pause"

	// ActionResume — возобновление после паузы.
	ActionResume WorkflowAction = "Resume"

	// ActionRetry — повторная попытка после ошибки.
	ActionRetry WorkflowAction = "Retry"

	// ActionNext — успешное завершение текущего шага.
	ActionNext WorkflowAction = "Next"

	// ActionError — ошибка обработчика текущего шага.
	ActionError WorkflowAction = "Error"
)

// String возвращает строковое представление действия.
func (a WorkflowAction) String() string {
	return string(a)
}
