// Package lifecycle drives one batch scoring run from startup to
// process exit.
//
// The orchestrator owns the two invariants that matter here: scale-in
// protection is always eventually disabled, and exactly one terminal
// callback reaches the coordinator, on every exit path. Success,
// business failure, and SIGTERM all funnel through a single finish
// routine guarded by sync.Once, so at-most-once reporting is enforced
// mechanically rather than by convention.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/models"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/taskmeta"
)

// WorkFunc is the unit of work the orchestrator runs exactly once.
// The context it receives is never cancelled by the signal path: an
// incoming SIGTERM stops the orchestrator from waiting, not the work.
type WorkFunc func(ctx context.Context) (*models.JobResult, error)

// HandleResolver discovers the task's execution-unit handle
type HandleResolver interface {
	Resolve(ctx context.Context) *taskmeta.Handle
}

// ProtectionController toggles scale-in protection for the task
type ProtectionController interface {
	Enable(ctx context.Context, handle *taskmeta.Handle)
	Disable(ctx context.Context, handle *taskmeta.Handle)
}

// Reporter sends the single terminal signal to the coordinator
type Reporter interface {
	ReportSuccess(ctx context.Context, token string, result *models.JobResult) error
	ReportFailure(ctx context.Context, token, errKind, cause string) error
}

// Orchestrator composes resolver, protection, and reporter around one
// work unit. One Orchestrator handles exactly one run.
type Orchestrator struct {
	resolver   HandleResolver
	protection ProtectionController
	reporter   Reporter
	token      string
	logger     *logging.Logger
	signals    []os.Signal

	mu          sync.Mutex
	state       TaskState
	transitions []StateTransition

	finishOnce sync.Once
	exitCode   int
}

// Config holds the orchestrator dependencies
type Config struct {
	Resolver   HandleResolver
	Protection ProtectionController
	Reporter   Reporter
	TaskToken  string // empty means local-only run, no callback
	Logger     *logging.Logger

	// Signals overrides the trapped signal set (default SIGTERM).
	// Tests use this to deliver a benign signal in-process.
	Signals []os.Signal
}

type workOutcome struct {
	result *models.JobResult
	err    error
}

// New creates an orchestrator
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger(logging.INFO, false)
	}

	signals := cfg.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGTERM}
	}

	return &Orchestrator{
		resolver:   cfg.Resolver,
		protection: cfg.Protection,
		reporter:   cfg.Reporter,
		token:      cfg.TaskToken,
		logger:     logger,
		signals:    signals,
		state:      StateStarting,
	}
}

// Run executes the full lifecycle and returns the process exit code.
// os.Exit stays with the caller so deferred cleanup in main still runs.
func (o *Orchestrator) Run(ctx context.Context, work WorkFunc) int {
	o.logger.Info("Task lifecycle starting")

	handle := o.resolver.Resolve(ctx)

	o.transition(StateProtected, "task handle resolved")
	o.protection.Enable(ctx, handle)

	// The trap must be armed before the work unit starts, otherwise a
	// signal landing in that window would bypass the failure callback.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, o.signals...)
	defer signal.Stop(sigCh)

	o.transition(StateRunning, "work unit started")

	done := make(chan workOutcome, 1)
	go func() {
		result, err := work(ctx)
		done <- workOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			o.transition(StateFailed, "work unit returned error")
			o.logger.Error("Work unit failed", map[string]interface{}{"error": out.err.Error()})
			return o.finish(ctx, handle, nil, models.KindOf(out.err), out.err.Error(), 1)
		}
		o.transition(StateSucceeded, "work unit completed")
		return o.finish(ctx, handle, out.result, "", "", 0)

	case sig := <-sigCh:
		// The signal path does not wait for the in-flight work unit to
		// unwind; the host is reclaiming the process.
		o.transition(StateTerminated, fmt.Sprintf("received %v", sig))
		o.logger.Error("Termination signal received mid-run", map[string]interface{}{"signal": fmt.Sprintf("%v", sig)})
		cause := fmt.Sprintf("container terminated via %v before the work unit completed", sig)
		return o.finish(ctx, handle, nil, models.KindTaskTerminated, cause, 1)
	}
}

// finish is the single disable-then-report routine shared by all exit
// paths. The Once guard makes a second invocation (racing signal vs
// completion) a no-op that returns the already-decided exit code.
func (o *Orchestrator) finish(ctx context.Context, handle *taskmeta.Handle, result *models.JobResult, errKind, cause string, code int) int {
	o.finishOnce.Do(func() {
		o.protection.Disable(ctx, handle)

		if result != nil {
			if err := o.reporter.ReportSuccess(ctx, o.token, result); err != nil {
				o.logger.Error("Terminal success callback not delivered", map[string]interface{}{"error": err.Error()})
			}
		} else {
			if err := o.reporter.ReportFailure(ctx, o.token, errKind, cause); err != nil {
				o.logger.Error("Terminal failure callback not delivered", map[string]interface{}{"error": err.Error()})
			}
		}

		o.transition(StateReported, "terminal callback handled")
		o.transition(StateDone, "process exiting")
		o.exitCode = code

		o.logger.Info("Task lifecycle done", map[string]interface{}{"exit_code": code})
	})

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.exitCode
}

// transition moves the FSM forward, recording and logging the change.
// An invalid transition is a bug worth seeing in logs, not a reason to
// abort a run that is about to report anyway.
func (o *Orchestrator) transition(to TaskState, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	from := o.state
	if err := ValidateTransition(from, to); err != nil {
		o.logger.Warn("Unexpected lifecycle transition", map[string]interface{}{"error": err.Error()})
	}

	o.state = to
	o.transitions = append(o.transitions, StateTransition{
		From:      from,
		To:        to,
		Timestamp: time.Now(),
		Reason:    reason,
	})

	o.logger.Debug("Lifecycle state changed", map[string]interface{}{
		"from":   string(from),
		"to":     string(to),
		"reason": reason,
	})
}

// State returns the current lifecycle state
func (o *Orchestrator) State() TaskState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// History returns a copy of the recorded state transitions
func (o *Orchestrator) History() []StateTransition {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]StateTransition, len(o.transitions))
	copy(out, o.transitions)
	return out
}
