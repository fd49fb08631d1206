package protection

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ecs"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/taskmeta"
)

type fakeECS struct {
	calls []*ecs.UpdateTaskProtectionInput
	err   error
}

func (f *fakeECS) UpdateTaskProtection(ctx context.Context, params *ecs.UpdateTaskProtectionInput, optFns ...func(*ecs.Options)) (*ecs.UpdateTaskProtectionOutput, error) {
	f.calls = append(f.calls, params)
	if f.err != nil {
		return nil, f.err
	}
	return &ecs.UpdateTaskProtectionOutput{}, nil
}

func testHandle() *taskmeta.Handle {
	return &taskmeta.Handle{
		TaskARN: "arn:aws:ecs:us-east-1:123456789012:task/scoring/abc",
		Cluster: "scoring",
	}
}

func TestEnableDisable(t *testing.T) {
	api := &fakeECS{}
	c := NewController(api, logging.NewLogger(logging.ERROR, false))
	handle := testHandle()

	c.Enable(context.Background(), handle)
	c.Disable(context.Background(), handle)

	if len(api.calls) != 2 {
		t.Fatalf("Expected 2 API calls, got %d", len(api.calls))
	}

	enable := api.calls[0]
	if !enable.ProtectionEnabled {
		t.Error("Expected first call to enable protection")
	}
	if enable.ExpiresInMinutes == nil || *enable.ExpiresInMinutes != DefaultExpiryMinutes {
		t.Error("Expected enable call to carry the expiry window")
	}
	if *enable.Cluster != "scoring" {
		t.Errorf("Expected cluster scoring, got %s", *enable.Cluster)
	}
	if len(enable.Tasks) != 1 || enable.Tasks[0] != handle.TaskARN {
		t.Errorf("Expected task list [%s], got %v", handle.TaskARN, enable.Tasks)
	}

	disable := api.calls[1]
	if disable.ProtectionEnabled {
		t.Error("Expected second call to disable protection")
	}
	if disable.ExpiresInMinutes != nil {
		t.Error("Disable call must not extend the expiry window")
	}
}

func TestNilHandleIsNoOp(t *testing.T) {
	api := &fakeECS{}
	c := NewController(api, logging.NewLogger(logging.ERROR, false))

	c.Enable(context.Background(), nil)
	c.Disable(context.Background(), nil)

	if len(api.calls) != 0 {
		t.Errorf("Expected no API calls with nil handle, got %d", len(api.calls))
	}
}

func TestNilAPIIsNoOp(t *testing.T) {
	c := NewController(nil, logging.NewLogger(logging.ERROR, false))

	// Must not panic
	c.Enable(context.Background(), testHandle())
	c.Disable(context.Background(), testHandle())
}

func TestEmptyClusterIsNoOp(t *testing.T) {
	api := &fakeECS{}
	c := NewController(api, logging.NewLogger(logging.ERROR, false))

	c.Enable(context.Background(), &taskmeta.Handle{TaskARN: "arn:aws:ecs:us-east-1:123456789012:task/abc"})

	if len(api.calls) != 0 {
		t.Errorf("Expected no API calls without a cluster, got %d", len(api.calls))
	}
}

func TestAPIErrorsAreSwallowed(t *testing.T) {
	api := &fakeECS{err: errors.New("AccessDeniedException")}
	c := NewController(api, logging.NewLogger(logging.ERROR, false))
	handle := testHandle()

	// Failures are logged, never propagated
	c.Enable(context.Background(), handle)
	c.Disable(context.Background(), handle)

	if len(api.calls) != 2 {
		t.Errorf("Expected both calls attempted despite errors, got %d", len(api.calls))
	}
}

func TestDisableTwiceIsSafe(t *testing.T) {
	api := &fakeECS{}
	c := NewController(api, logging.NewLogger(logging.ERROR, false))
	handle := testHandle()

	c.Disable(context.Background(), handle)
	c.Disable(context.Background(), handle)

	if len(api.calls) != 2 {
		t.Errorf("Expected 2 idempotent disable calls, got %d", len(api.calls))
	}
}
