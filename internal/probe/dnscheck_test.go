package probe

import (
	"context"
	"testing"
)

func TestCheckDNS_InvalidNames(t *testing.T) {
	for _, h := range []string{"", "  ", "https://example.com", "exa mple.com"} {
		if got := CheckDNS(context.Background(), h); got.Class != DNSInvalidName {
			t.Fatalf("CheckDNS(%q).Class = %s, want %s", h, got.Class, DNSInvalidName)
		}
	}
}

func TestCheckDNS_IPLiteralSkipsResolver(t *testing.T) {
	for _, h := range []string{"127.0.0.1", "[::1]"} {
		got := CheckDNS(context.Background(), h)
		if got.Class != DNSIPLiteral || len(got.IPs) != 1 {
			t.Fatalf("CheckDNS(%q) = %+v, want IP literal", h, got)
		}
	}
}
