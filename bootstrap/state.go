package bootstrap

import (
	"sync"

	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/startup"
)

// Phase is a state of the run.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseModeResolved
	PhaseServiceRunning
	PhaseInteractiveRunning
	PhaseUtilityRouted
	PhaseTerminated
	PhaseCleanup
	PhaseExit
)

var phaseNames = map[Phase]string{
	PhaseInit:               "init",
	PhaseModeResolved:       "mode-resolved",
	PhaseServiceRunning:     "service-running",
	PhaseInteractiveRunning: "interactive-running",
	PhaseUtilityRouted:      "utility-routed",
	PhaseTerminated:         "terminated",
	PhaseCleanup:            "cleanup",
	PhaseExit:               "exit",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

var transitions = map[Phase][]Phase{
	PhaseInit:               {PhaseModeResolved, PhaseTerminated, PhaseCleanup},
	PhaseModeResolved:       {PhaseServiceRunning, PhaseInteractiveRunning, PhaseUtilityRouted, PhaseTerminated, PhaseCleanup},
	PhaseServiceRunning:     {PhaseCleanup},
	PhaseInteractiveRunning: {PhaseCleanup},
	PhaseUtilityRouted:      {PhaseCleanup},
	PhaseTerminated:         {PhaseCleanup},
	PhaseCleanup:            {PhaseExit},
}

// runningPhase maps a mode to the phase it runs in.
func runningPhase(m startup.Mode) Phase {
	switch {
	case m == startup.ModeService:
		return PhaseServiceRunning
	case m.IsUtility():
		return PhaseUtilityRouted
	default:
		return PhaseInteractiveRunning
	}
}

type stateMachine struct {
	mu      sync.Mutex
	current Phase
	history []Phase
	log     func() *logger.Logger
}

func newStateMachine(log func() *logger.Logger) *stateMachine {
	return &stateMachine{current: PhaseInit, history: []Phase{PhaseInit}, log: log}
}

// to moves to next. An unexpected transition is logged and applied anyway;
// the run must still reach cleanup.
func (m *stateMachine) to(next Phase) {
	m.mu.Lock()
	prev := m.current
	allowed := false
	for _, p := range transitions[prev] {
		if p == next {
			allowed = true
			break
		}
	}
	m.current = next
	m.history = append(m.history, next)
	m.mu.Unlock()

	fields := logger.Fields(logger.FieldPhase, next.String(), "from", prev.String())
	if !allowed {
		m.log().Warn("Unexpected phase transition", fields)
		return
	}
	m.log().Debug("Phase transition", fields)
}

func (m *stateMachine) phases() []Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Phase(nil), m.history...)
}

// fail records a run that ended before reaching a running phase.
func (m *stateMachine) fail() {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()
	if cur == PhaseInit || cur == PhaseModeResolved {
		m.to(PhaseTerminated)
	}
}
