package middleware

import "net/http"

// apiCSP forbids everything, responses are JSON only.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets hardening headers. HSTS is only sent when isHTTPS.
func SecurityHeaders(isHTTPS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("X-Frame-Options", "DENY")
			headers.Set("X-Content-Type-Options", "nosniff")
			headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			headers.Set("Content-Security-Policy", apiCSP)
			if isHTTPS {
				headers.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
