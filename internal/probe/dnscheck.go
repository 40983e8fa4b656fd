package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

type DNSClass string

const (
	DNSResolves    DNSClass = "RESOLVES"
	DNSNoARecord   DNSClass = "NO_A_RECORD"
	DNSNXDomain    DNSClass = "NXDOMAIN"
	DNSServfail    DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName DNSClass = "INVALID_NAME"
	DNSIPLiteral   DNSClass = "IP_LITERAL"
)

// DNSStatus explains why a host might be unreachable. It is only used to
// enrich logs for endpoints that failed with a network error.
type DNSStatus struct {
	Host          string
	IPs           []net.IP
	CNAME         string
	Nameservers   []string
	Class         DNSClass
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// CheckDNS resolves host (no port, no scheme) with the system resolver.
func CheckDNS(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Host: strings.TrimSpace(host)}
	if s.Host == "" || strings.Contains(s.Host, "://") || strings.ContainsAny(s.Host, " /") {
		s.Class = DNSInvalidName
		return s
	}
	if ip := net.ParseIP(strings.Trim(s.Host, "[]")); ip != nil {
		s.IPs = []net.IP{ip}
		s.Class = DNSIPLiteral
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", s.Host)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = DNSResolves
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSServfail
			}
		}
	}

	if cname, err := r.LookupCNAME(ctx, s.Host); err == nil && !strings.EqualFold(cname, s.Host+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}

	if ns, err := r.LookupNS(ctx, s.Host); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == DNSNXDomain {
			s.Class = DNSNoARecord
		}
	}

	if s.Class == "" {
		switch {
		case len(s.Nameservers) > 0:
			s.Class = DNSNoARecord
		case s.ResolverError != "":
			s.Class = DNSServfail
		default:
			s.Class = DNSNXDomain
		}
	}
	return s
}
