package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id the backend can log.
const RequestIDHeader = "X-Request-ID"

// loggingTransport tags every request with an id and logs method, path,
// status and duration at debug level.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		t.logger.Debug("request failed", "method", req.Method, "path", req.URL.Path, "request_id", id, "duration", elapsed, "error", err)
		return nil, err
	}
	t.logger.Debug("request", "method", req.Method, "path", req.URL.RequestURI(), "status", resp.StatusCode, "request_id", id, "duration", elapsed)
	return resp, nil
}
