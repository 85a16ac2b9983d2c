package api

import (
	"net"
	"net/http"
	"strings"
)

// hostGuard rejects requests whose Host is neither a loopback name nor one
// of the extra hostnames the shell was configured with. This keeps a
// rebound DNS name from reaching the shell.
func hostGuard(extra []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(extra))
	for _, h := range extra {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || h == "0.0.0.0" || h == "::" {
			continue
		}
		allowed[h] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(hostname(r.Host))
			if !isLoopback(host) && !allowed[host] {
				writeError(w, http.StatusForbidden, "host not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hostname(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.Trim(hostport, "[]")
}

func isLoopback(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
