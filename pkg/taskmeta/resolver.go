// Package taskmeta resolves the identity of the running ECS task from
// the container metadata endpoint.
//
// The metadata endpoint is a soft dependency: it only exists inside an
// ECS task, and everything that consumes the handle (scale-in
// protection) degrades to a no-op without it. Resolution is a single
// bounded attempt, never retried.
package taskmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Takeoff-Monkey/Scope-Scoring/pkg/logging"
)

const defaultTimeout = 5 * time.Second

// Handle identifies the running task within its cluster
type Handle struct {
	TaskARN string
	Cluster string
}

// Resolver queries the ECS container metadata endpoint
type Resolver struct {
	endpoint   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewResolver creates a resolver for the given metadata endpoint.
// An empty endpoint means the process is not running inside ECS.
func NewResolver(endpoint string, logger *logging.Logger) *Resolver {
	return &Resolver{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// taskMetadata is the subset of the metadata /task response we read
type taskMetadata struct {
	TaskARN string `json:"TaskARN"`
	Cluster string `json:"Cluster"`
}

// Resolve fetches the task handle. Returns nil on any failure; the
// caller must treat a nil handle as "protection unavailable".
func (r *Resolver) Resolve(ctx context.Context) *Handle {
	if r.endpoint == "" {
		r.logger.Warn("Metadata endpoint not set; task handle unavailable")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"/task", nil)
	if err != nil {
		r.logger.Warn("Could not build metadata request", map[string]interface{}{"error": err.Error()})
		return nil
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("Could not fetch task metadata", map[string]interface{}{"error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("Metadata endpoint returned non-OK status", map[string]interface{}{"status": resp.StatusCode})
		return nil
	}

	var meta taskMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		r.logger.Warn("Could not decode task metadata", map[string]interface{}{"error": err.Error()})
		return nil
	}

	if meta.TaskARN == "" {
		r.logger.Warn("Task metadata has no TaskARN")
		return nil
	}

	handle := &Handle{
		TaskARN: meta.TaskARN,
		Cluster: meta.Cluster,
	}
	if handle.Cluster == "" {
		handle.Cluster = ClusterFromARN(meta.TaskARN)
	}

	r.logger.Info("Resolved task handle", map[string]interface{}{
		"task_arn": handle.TaskARN,
		"cluster":  handle.Cluster,
	})

	return handle
}

// ClusterFromARN extracts the cluster name from a task ARN of the form
// arn:aws:ecs:region:account:task/cluster/taskid. Returns "" for the
// legacy format without a cluster segment.
func ClusterFromARN(arn string) string {
	idx := strings.Index(arn, ":task/")
	if idx < 0 {
		return ""
	}
	parts := strings.Split(arn[idx+len(":task/"):], "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}

// String renders the handle for logs
func (h *Handle) String() string {
	if h == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (cluster=%s)", h.TaskARN, h.Cluster)
}
