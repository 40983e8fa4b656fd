package probe

import (
	"context"
	"time"

	"github.com/hamed0406/endpointmonitor/internal/domain"
)

// CheckResult is the outcome of a single probe.
//
// StatusCode is 0 when no response was received. Message carries the HTTP
// status line or the transport error text.
type CheckResult struct {
	Status     domain.Status
	Cause      domain.Cause
	StatusCode int
	Latency    time.Duration
	ObservedAt time.Time
	Message    string
}

func (r CheckResult) Up() bool { return r.Status == domain.StatusUp }

// Checker probes one endpoint. Implementations never return errors: every
// failure is folded into a DOWN result.
type Checker interface {
	Check(ctx context.Context, ep domain.Endpoint) CheckResult
}
