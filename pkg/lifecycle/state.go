package lifecycle

import (
	"fmt"
	"time"
)

// TaskState represents a stage of the batch task lifecycle
type TaskState string

// Strict task states for the lifecycle FSM
const (
	StateStarting   TaskState = "starting"   // Resolving identity, reading config
	StateProtected  TaskState = "protected"  // Scale-in protection requested, trap installed
	StateRunning    TaskState = "running"    // Work unit executing
	StateSucceeded  TaskState = "succeeded"  // Work unit returned a result
	StateFailed     TaskState = "failed"     // Work unit returned a business error
	StateTerminated TaskState = "terminated" // Host delivered a stop signal mid-run
	StateReported   TaskState = "reported"   // Terminal callback sent
	StateDone       TaskState = "done"       // Process about to exit
)

// validTransitions maps from-state to allowed to-states
var validTransitions = map[TaskState]map[TaskState]bool{
	StateStarting: {
		StateProtected: true, // Starting → Protected (unconditional, protection is best-effort)
	},
	StateProtected: {
		StateRunning:    true, // Protected → Running (work unit invoked)
		StateTerminated: true, // Protected → Terminated (signal before work started)
	},
	StateRunning: {
		StateSucceeded:  true, // Running → Succeeded (work unit returned a result)
		StateFailed:     true, // Running → Failed (work unit returned an error)
		StateTerminated: true, // Running → Terminated (signal trap fired mid-run)
	},
	StateSucceeded: {
		StateReported: true, // Succeeded → Reported (disable + success callback)
	},
	StateFailed: {
		StateReported: true, // Failed → Reported (disable + failure callback)
	},
	StateTerminated: {
		StateReported: true, // Terminated → Reported (disable + sentinel failure callback)
	},
	StateReported: {
		StateDone: true, // Reported → Done (process exit)
	},
	// Terminal state
	StateDone: {},
}

// ValidateTransition checks if a state transition is valid
func ValidateTransition(from, to TaskState) error {
	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown source state: %s", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}

// IsOutcomeState returns true for the three states a run can land in
// after the work phase
func IsOutcomeState(state TaskState) bool {
	return state == StateSucceeded || state == StateFailed || state == StateTerminated
}

// StateTransition tracks lifecycle state changes with timestamps
type StateTransition struct {
	From      TaskState `json:"from"`
	To        TaskState `json:"to"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}
