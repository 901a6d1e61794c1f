// Package session provides the single HTTP context of a listing run.
//
// A Session owns the cookie jar (including the tenant selector cookie),
// the default browser headers, the retry policy for transient failures
// and the decoding of portal responses. The portal declares its charset
// unreliably, so every body is decoded as ISO-8859-1 regardless of the
// Content-Type header.
//
// Requests are sequential. The portal keeps pagination and unit context in
// server-side session state, and concurrent requests would corrupt it.
//
// # Retry policy
//
// Responses with status 429, 500, 502, 503 or 504 and transport errors are
// retried up to the configured number of attempts, waiting RetryWait,
// then twice that, and so on. Requests sent with WithoutRetry (the login
// post) are attempted once.
//
// # Usage
//
//	sess, err := session.Open(settings, session.WithLogger(logger))
//	if err != nil { ... }
//	defer sess.Close()
//
//	page, err := sess.Get(ctx, settings.LoginURL(), session.WithSnapshot("login.html"))
package session
