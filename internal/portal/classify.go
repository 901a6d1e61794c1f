package portal

import "strings"

// Outcome is the classification of a login response.
type Outcome int

const (
	// OutcomeUnconfirmed means no success or failure marker was found.
	OutcomeUnconfirmed Outcome = iota
	// OutcomeAuthenticated means a success marker was found.
	OutcomeAuthenticated
	// OutcomeInvalidCredentials means the portal rejected the credentials.
	OutcomeInvalidCredentials
	// OutcomeBlocked means the portal reported the account as locked.
	OutcomeBlocked
)

// String returns a readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "unconfirmed"
	}
}

// ClassifyLogin inspects the body returned by the login post.
// Success markers are matched case-sensitively and win over failure
// markers, which are matched case-insensitively.
func ClassifyLogin(body string) Outcome {
	if strings.Contains(body, markerLogout) || strings.Contains(body, markerControlScreen) {
		return OutcomeAuthenticated
	}
	lowered := strings.ToLower(body)
	if containsAny(lowered, invalidCredentialMarkers) {
		return OutcomeInvalidCredentials
	}
	if containsAny(lowered, blockedAccountMarkers) {
		return OutcomeBlocked
	}
	return OutcomeUnconfirmed
}

// IsControlScreen reports whether body looks like the control screen.
// A unit switch is considered successful when its response passes this test.
func IsControlScreen(body string) bool {
	return strings.Contains(body, markerControlScreen) || strings.Contains(body, markerControlAction)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
