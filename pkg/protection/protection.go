// Package protection toggles ECS scale-in protection for the running
// task so the cluster does not reclaim it mid-run.
//
// Protection is an optimization, not a correctness requirement: every
// failure here is logged and swallowed, and a missing task handle turns
// both operations into no-ops. Disable must be safe to call on every
// exit path, any number of times.
package protection

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/taskmeta"
)

// DefaultExpiryMinutes bounds the protection window. Chosen to exceed
// the longest expected scoring run with margin; if disable never runs,
// the cluster reclaims the task after this anyway.
const DefaultExpiryMinutes int32 = 120

// ECSAPI is the slice of the ECS client the controller needs
type ECSAPI interface {
	UpdateTaskProtection(ctx context.Context, params *ecs.UpdateTaskProtectionInput, optFns ...func(*ecs.Options)) (*ecs.UpdateTaskProtectionOutput, error)
}

// Controller manages the scale-in protection window for one task
type Controller struct {
	api           ECSAPI
	logger        *logging.Logger
	expiryMinutes int32
}

// NewController creates a protection controller. A nil api disables
// protection entirely (local runs, degraded AWS config).
func NewController(api ECSAPI, logger *logging.Logger) *Controller {
	return &Controller{
		api:           api,
		logger:        logger,
		expiryMinutes: DefaultExpiryMinutes,
	}
}

// Enable requests scale-in protection for the task, bounded by the
// expiry window. No-op when the handle or the API client is absent.
func (c *Controller) Enable(ctx context.Context, handle *taskmeta.Handle) {
	if c.api == nil || handle == nil || handle.Cluster == "" {
		return
	}

	_, err := c.api.UpdateTaskProtection(ctx, &ecs.UpdateTaskProtectionInput{
		Cluster:           aws.String(handle.Cluster),
		Tasks:             []string{handle.TaskARN},
		ProtectionEnabled: true,
		ExpiresInMinutes:  aws.Int32(c.expiryMinutes),
	})
	if err != nil {
		c.logger.Warn("Could not enable task protection", map[string]interface{}{
			"cluster": handle.Cluster,
			"error":   err.Error(),
		})
		return
	}

	c.logger.Info("Task protection enabled", map[string]interface{}{
		"cluster":        handle.Cluster,
		"expiry_minutes": c.expiryMinutes,
	})
}

// Disable releases scale-in protection. Idempotent; called from both
// the normal completion path and the SIGTERM path.
func (c *Controller) Disable(ctx context.Context, handle *taskmeta.Handle) {
	if c.api == nil || handle == nil || handle.Cluster == "" {
		return
	}

	_, err := c.api.UpdateTaskProtection(ctx, &ecs.UpdateTaskProtectionInput{
		Cluster:           aws.String(handle.Cluster),
		Tasks:             []string{handle.TaskARN},
		ProtectionEnabled: false,
	})
	if err != nil {
		c.logger.Warn("Could not disable task protection", map[string]interface{}{
			"cluster": handle.Cluster,
			"error":   err.Error(),
		})
		return
	}

	c.logger.Info("Task protection disabled")
}
