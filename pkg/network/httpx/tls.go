package httpx

import "golang.org/x/crypto/acme/autocert"

const defaultTLSCacheDir = ".cert-cache"

// newCertManager builds an autocert manager for the given domain,
// keeping issued certificates in cacheDir across restarts.
func newCertManager(domain string, cacheDir string) *autocert.Manager {
	if cacheDir == "" {
		cacheDir = defaultTLSCacheDir
	}
	manager := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
		Cache:  autocert.DirCache(cacheDir),
	}
	if domain != "" {
		manager.HostPolicy = autocert.HostWhitelist(domain)
	}
	return manager
}
