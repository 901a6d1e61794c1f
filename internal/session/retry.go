package session

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/automatizamg/seilist/internal/config"
)

// noRetryKey marks a request context whose request must be sent once.
type noRetryKey struct{}

// retryableStatus reports whether status is a transient server answer.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// configureRetry installs the retry policy: settings.RetryAttempts total
// attempts, waiting RetryWait * 2^(n-1) before retry n. A Retry-After
// header in seconds takes precedence, capped by the largest backoff.
func configureRetry(client *resty.Client, settings *config.Settings) {
	retries := settings.RetryAttempts - 1
	if retries < 0 {
		retries = 0
	}
	wait := settings.RetryWait
	maxWait := backoff(wait, retries)

	client.SetRetryCount(retries)
	client.SetRetryWaitTime(wait)
	client.SetRetryMaxWaitTime(maxWait)

	client.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		if resp == nil || resp.Request == nil {
			return wait, nil
		}
		if d, ok := retryAfterHeader(resp); ok {
			return d, nil
		}
		return backoff(wait, resp.Request.Attempt), nil
	})

	client.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if resp == nil || resp.Request == nil {
			return false
		}
		if noRetry, _ := resp.Request.Context().Value(noRetryKey{}).(bool); noRetry {
			return false
		}
		if err != nil {
			return resp.Request.Context().Err() == nil
		}
		return retryableStatus(resp.StatusCode())
	})
}

// backoff returns wait * 2^(attempt-1), with attempt floored to 1.
func backoff(wait time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := wait
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

func retryAfterHeader(resp *resty.Response) (time.Duration, bool) {
	if resp.RawResponse == nil {
		return 0, false
	}
	v := strings.TrimSpace(resp.Header().Get("Retry-After"))
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
