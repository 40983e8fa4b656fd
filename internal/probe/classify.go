package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/hamed0406/endpointmonitor/internal/domain"
)

// Classify maps the raw outcome of a request to a status and its cause.
// A probe is UP only when a response arrived (err == nil), its code is 2xx and
// latency is strictly below slow.
func Classify(statusCode int, latency time.Duration, err error, slow time.Duration) (domain.Status, domain.Cause) {
	if err != nil {
		return domain.StatusDown, causeOf(err)
	}
	if statusCode < 200 || statusCode >= 300 {
		return domain.StatusDown, domain.CauseNon2xx
	}
	if latency >= slow {
		return domain.StatusDown, domain.CauseSlowResponse
	}
	return domain.StatusUp, domain.CauseOK
}

func causeOf(err error) domain.Cause {
	if errors.Is(err, context.Canceled) {
		return domain.CauseCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.CauseTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.CauseTimeout
	}
	return domain.CauseNetworkError
}
