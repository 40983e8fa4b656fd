package domain

import (
	"net/url"
	"strings"
)

// Endpoint is one configured HTTP target. It is loaded once at startup and
// never modified afterwards.
type Endpoint struct {
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"-"`
}

// Status is the UP/DOWN classification of a single probe.
type Status string

const (
	StatusUp   Status = "UP"
	StatusDown Status = "DOWN"
)

// Cause tells why a probe ended up with its status.
type Cause string

const (
	CauseOK             Cause = "ok"
	CauseTimeout        Cause = "timeout"
	CauseNetworkError   Cause = "network_error"
	CauseNon2xx         Cause = "non_2xx"
	CauseSlowResponse   Cause = "slow_response"
	CauseInvalidRequest Cause = "invalid_request"
	CauseCanceled       Cause = "canceled"
)

// DomainOf returns the network authority (host[:port]) of raw, which is the
// key availability is aggregated under. Unparseable input yields "".
func DomainOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Host
}
