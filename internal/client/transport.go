package client

import (
	"log/slog"
	"net/http"
	"time"
)

// roundTripperFunc adapts a function to http.RoundTripper
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// chain wraps rt with the given decorators, first one outermost
func chain(rt http.RoundTripper, decorators ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	for i := len(decorators) - 1; i >= 0; i-- {
		rt = decorators[i](rt)
	}
	return rt
}

// withHeaders sets the headers every API request carries
func withHeaders(userAgent string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			if r.Header.Get("Accept") == "" {
				r.Header.Set("Accept", "application/json")
			}
			r.Header.Set("User-Agent", userAgent)
			return next.RoundTrip(r)
		})
	}
}

// withLogging logs every request with method, path, status and duration
func withLogging(log *slog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(r)

			duration := time.Since(start)
			if err != nil {
				log.Warn("api request failed",
					"method", r.Method,
					"path", r.URL.Path,
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
				return nil, err
			}

			log.Debug("api request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", resp.StatusCode,
				"duration_ms", duration.Milliseconds(),
			)
			return resp, nil
		})
	}
}
