package vault

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed store request.
type Kind int

const (
	// KindResponse is any unexpected non-success response.
	KindResponse Kind = iota
	// KindNotFound means the group path does not exist.
	KindNotFound
	// KindPermissionDenied means the token may not access the path.
	KindPermissionDenied
	// KindBadCredentials means the token itself was rejected.
	KindBadCredentials
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindBadCredentials:
		return "bad credentials"
	default:
		return "unexpected response"
	}
}

// Error is returned for every non-success store response.
type Error struct {
	Kind       Kind
	StatusCode int
	Path       string
	Message    string
}

func (e *Error) Error() string {
	if e.Kind == KindResponse {
		return fmt.Sprintf("vault %s: %d %s: %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("vault %s: %s", e.Path, e.Kind)
}

// Hint suggests how the user can recover.
func (e *Error) Hint() string {
	switch e.Kind {
	case KindNotFound:
		return "Check the secret path in the annotation or manifest entry."
	case KindPermissionDenied:
		return "Your token cannot access this path. Ask for access or log in with another token."
	case KindBadCredentials:
		return "Your token is invalid or expired. Run `confvault vault login` to store a new one."
	default:
		return ""
	}
}

// classify maps a failed response to an *Error.
func classify(path string, status int, body []byte) *Error {
	msg := strings.TrimSpace(string(body))
	e := &Error{Kind: KindResponse, StatusCode: status, Path: path, Message: msg}

	switch status {
	case http.StatusNotFound:
		e.Kind = KindNotFound
	case http.StatusForbidden:
		e.Kind = KindPermissionDenied
	case http.StatusUnauthorized:
		e.Kind = KindBadCredentials
	case http.StatusBadRequest:
		if strings.Contains(strings.ToLower(msg), "auth failed") {
			e.Kind = KindBadCredentials
		}
	}
	return e
}
