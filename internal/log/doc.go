// Package log provides logging with automatic sanitization of sensitive
// information, built on top of the standard slog package.
//
// Console output goes through a tint handler ("15:04:05 INF message");
// colors are dropped when stderr is not a terminal. Every handler is
// wrapped by SecureHandler, which masks:
//   - login form fields and the tenant cookie (senha, pwdSenha, cookie)
//   - access tokens in detail URLs (infra_hash=...)
//   - personal identifiers of assignees (CPF)
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, settings.Debug)
//	logger.Info("page fetched", "url", detailURL) // infra_hash value is masked
package log
