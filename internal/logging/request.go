package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// RequestLogger installs hooks on a resty client that log each outgoing
// request with its status and duration.
func RequestLogger(rc *resty.Client) {
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		req := resp.Request

		level := slog.LevelDebug
		if resp.StatusCode() >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if resp.StatusCode() >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		slog.Log(req.Context(), level, "request",
			"method", req.Method,
			"path", requestPath(req),
			"status", resp.StatusCode(),
			"duration", resp.Time().Round(time.Millisecond).String(),
			"request_id", req.Header.Get("X-Request-ID"),
		)
		return nil
	})

	rc.OnError(func(req *resty.Request, err error) {
		slog.Error("request failed",
			"method", req.Method,
			"path", requestPath(req),
			"error", err,
		)
	})
}

func requestPath(req *resty.Request) string {
	if req.RawRequest != nil && req.RawRequest.URL != nil {
		return req.RawRequest.URL.Path
	}
	return req.URL
}
