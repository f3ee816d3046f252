package httpx

import (
	"testing"

	"golang.org/x/crypto/acme/autocert"
)

func TestCertManager(t *testing.T) {
	t.Parallel()

	m := newCertManager("live.example.com", "/var/cache/certs")
	if m.Cache != autocert.DirCache("/var/cache/certs") {
		t.Errorf("unexpected cert cache: %v", m.Cache)
	}
	if m.HostPolicy == nil {
		t.Error("a domain should pin the host policy")
	}

	m = newCertManager("", "")
	if m.Cache != autocert.DirCache(defaultTLSCacheDir) {
		t.Errorf("unexpected default cert cache: %v", m.Cache)
	}
	if m.HostPolicy != nil {
		t.Error("no domain means no host policy")
	}
}
