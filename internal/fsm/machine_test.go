package fsm

import (
	"testing"
	"time"

	"github.com/shaiso/railbot/internal/domain"
)

func TestLinearPathToCompleted(t *testing.T) {
	m := New()

	tr := m.ExecuteAction(domain.ActionStart)
	if !tr.Valid || tr.To != domain.StateInitializing {
		t.Fatalf("Start: ожидали Initializing, получили %s (valid=%v)", tr.To, tr.Valid)
	}

	want := []domain.WorkflowState{
		domain.StateAuthenticating,
		domain.StateLoggingIn,
		domain.StateSearching,
		domain.StateWaitingForQuotaWindow,
		domain.StateSelectingTrain,
		domain.StateFillingDetails,
		domain.StatePayment,
		domain.StateCompleted,
	}
	for _, w := range want {
		tr = m.ExecuteAction(domain.ActionNext)
		if !tr.Valid || tr.To != w {
			t.Fatalf("Next: ожидали %s, получили %s (valid=%v)", w, tr.To, tr.Valid)
		}
	}

	if !m.Current().IsTerminal() {
		t.Errorf("Completed должно быть финальным")
	}
}

func TestInvalidTransitionKeepsState(t *testing.T) {
	m := New()

	notified := false
	m.Subscribe(func(prev, curr domain.WorkflowState, action domain.WorkflowAction) {
		notified = true
	})

	tr := m.ExecuteAction(domain.ActionNext)
	if tr.Valid {
		t.Fatalf("Next из Idle не должен быть допустим")
	}
	if tr.To != domain.StateIdle || m.Current() != domain.StateIdle {
		t.Errorf("состояние изменилось при недопустимом переходе: %s", m.Current())
	}
	if tr.Err == "" {
		t.Errorf("ожидали описание причины отказа")
	}
	if notified {
		t.Errorf("наблюдатель не должен вызываться при недопустимом переходе")
	}
}

func TestStopAndErrorFromEveryActiveState(t *testing.T) {
	active := []domain.WorkflowState{
		domain.StateInitializing,
		domain.StateAuthenticating,
		domain.StateLoggingIn,
		domain.StateSearching,
		domain.StateWaitingForQuotaWindow,
		domain.StateSelectingTrain,
		domain.StateFillingDetails,
		domain.StatePayment,
	}

	for _, s := range active {
		m := New()
		m.current = s
		if tr := m.ExecuteAction(domain.ActionStop); !tr.Valid || tr.To != domain.StateStopped {
			t.Errorf("Stop из %s: получили %s (valid=%v)", s, tr.To, tr.Valid)
		}

		m = New()
		m.current = s
		if tr := m.ExecuteAction(domain.ActionError); !tr.Valid || tr.To != domain.StateFailed {
			t.Errorf("Error из %s: получили %s (valid=%v)", s, tr.To, tr.Valid)
		}

		m = New()
		m.current = s
		if tr := m.ExecuteAction(domain.ActionPause); !tr.Valid || tr.To != domain.StatePaused {
			t.Errorf("Pause из %s: получили %s (valid=%v)", s, tr.To, tr.Valid)
		}
	}
}

func TestResumeReturnsToPausedState(t *testing.T) {
	m := New()
	m.ExecuteAction(domain.ActionStart)
	m.ExecuteAction(domain.ActionNext) // Authenticating
	m.ExecuteAction(domain.ActionNext) // LoggingIn
	m.ExecuteAction(domain.ActionNext) // Searching

	if tr := m.ExecuteAction(domain.ActionPause); tr.To != domain.StatePaused {
		t.Fatalf("Pause: получили %s", tr.To)
	}

	tr := m.ExecuteAction(domain.ActionResume)
	if !tr.Valid || tr.To != domain.StateSearching {
		t.Fatalf("Resume должен вернуть в Searching, получили %s (valid=%v)", tr.To, tr.Valid)
	}

	// Дальнейший путь после возобновления продолжается с места паузы.
	if tr := m.ExecuteAction(domain.ActionNext); tr.To != domain.StateWaitingForQuotaWindow {
		t.Errorf("Next после Resume: получили %s", tr.To)
	}
}

func TestStopFromPaused(t *testing.T) {
	m := New()
	m.ExecuteAction(domain.ActionStart)
	m.ExecuteAction(domain.ActionPause)

	if tr := m.ExecuteAction(domain.ActionStop); !tr.Valid || tr.To != domain.StateStopped {
		t.Errorf("Stop из Paused: получили %s (valid=%v)", tr.To, tr.Valid)
	}
}

func TestRetryAfterFailure(t *testing.T) {
	m := New()
	m.ExecuteAction(domain.ActionStart)
	m.ExecuteAction(domain.ActionError)

	if m.Current() != domain.StateFailed {
		t.Fatalf("ожидали Failed, получили %s", m.Current())
	}

	tr := m.ExecuteAction(domain.ActionRetry)
	if !tr.Valid || tr.To != domain.StateInitializing {
		t.Errorf("Retry из Failed: получили %s (valid=%v)", tr.To, tr.Valid)
	}
}

func TestRestartFromTerminalStates(t *testing.T) {
	for _, s := range []domain.WorkflowState{
		domain.StateCompleted,
		domain.StateFailed,
		domain.StateStopped,
	} {
		m := New()
		m.current = s
		tr := m.ExecuteAction(domain.ActionStart)
		if !tr.Valid || tr.To != domain.StateInitializing {
			t.Errorf("Start из %s: получили %s (valid=%v)", s, tr.To, tr.Valid)
		}
	}
}

func TestListenersReceiveTransition(t *testing.T) {
	m := New()

	var gotPrev, gotCurr domain.WorkflowState
	var gotAction domain.WorkflowAction
	calls := 0
	m.Subscribe(func(prev, curr domain.WorkflowState, action domain.WorkflowAction) {
		gotPrev, gotCurr, gotAction = prev, curr, action
		calls++
	})

	m.ExecuteAction(domain.ActionStart)

	if calls != 1 {
		t.Fatalf("ожидали один вызов наблюдателя, получили %d", calls)
	}
	if gotPrev != domain.StateIdle || gotCurr != domain.StateInitializing || gotAction != domain.ActionStart {
		t.Errorf("наблюдатель получил %s -> %s (%s)", gotPrev, gotCurr, gotAction)
	}
}

func TestGetValidActions(t *testing.T) {
	m := New()

	actions := m.GetValidActions()
	if len(actions) != 1 || actions[0] != domain.ActionStart {
		t.Errorf("из Idle допустим только Start, получили %v", actions)
	}

	m.ExecuteAction(domain.ActionStart)
	actions = m.GetValidActions()
	found := map[domain.WorkflowAction]bool{}
	for _, a := range actions {
		found[a] = true
	}
	for _, want := range []domain.WorkflowAction{
		domain.ActionNext, domain.ActionError, domain.ActionStop, domain.ActionPause,
	} {
		if !found[want] {
			t.Errorf("из Initializing ожидали действие %s среди %v", want, actions)
		}
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.ExecuteAction(domain.ActionStart)
	m.Reset()

	if m.Current() != domain.StateIdle {
		t.Errorf("после Reset ожидали Idle, получили %s", m.Current())
	}
}

func TestListenerMayReadMachine(t *testing.T) {
	m := New()

	var seenCurr, seenNow domain.WorkflowState
	m.Subscribe(func(prev, curr domain.WorkflowState, action domain.WorkflowAction) {
		// Наблюдатель читает машину обратно: не должно блокироваться.
		seenCurr = curr
		seenNow = m.Current()
		if len(m.GetValidActions()) == 0 {
			t.Errorf("GetValidActions из наблюдателя вернул пустой список")
		}
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ExecuteAction(domain.ActionStart)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ExecuteAction не завершился: наблюдатель заблокирован мьютексом машины")
	}

	if seenCurr != domain.StateInitializing || seenNow != domain.StateInitializing {
		t.Errorf("наблюдатель увидел %s/%s, ожидали %s", seenCurr, seenNow, domain.StateInitializing)
	}
}

func TestStateReadableDuringSlowListener(t *testing.T) {
	m := New()

	entered := make(chan struct{})
	release := make(chan struct{})
	m.Subscribe(func(prev, curr domain.WorkflowState, action domain.WorkflowAction) {
		close(entered)
		<-release
	})

	go m.ExecuteAction(domain.ActionStart)
	<-entered

	// Пока наблюдатель занят, состояние уже зафиксировано и доступно.
	read := make(chan domain.WorkflowState, 1)
	go func() { read <- m.Current() }()

	select {
	case st := <-read:
		if st != domain.StateInitializing {
			t.Errorf("Current вернул %s, ожидали %s", st, domain.StateInitializing)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Current заблокирован на время работы наблюдателя")
	}

	close(release)
}
