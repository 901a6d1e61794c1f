package session

import (
	"github.com/go-resty/resty/v2"
)

// instrument installs the per-attempt hooks: client-side rate limiting
// before each attempt and a debug line after each response.
func (s *Session) instrument(client *resty.Client) {
	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if s.limiter != nil {
			if err := s.limiter.Wait(req.Context()); err != nil {
				return err
			}
		}
		s.logger.Debug("request",
			"method", req.Method,
			"url", req.URL,
			"attempt", req.Attempt,
		)
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		s.logger.Debug("response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"bytes", len(resp.Body()),
			"elapsed", resp.Time(),
		)
		if retryableStatus(resp.StatusCode()) {
			s.logger.Warn("transient portal response",
				"url", resp.Request.URL,
				"status", resp.StatusCode(),
				"attempt", resp.Request.Attempt,
			)
		}
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		s.logger.Debug("request failed", "method", req.Method, "url", req.URL, "error", err)
	})
}
