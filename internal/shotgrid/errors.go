package shotgrid

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rpggio/datapoints/internal/repository"
)

// APIError is a non-2xx response from a site.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shotgrid %s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("shotgrid %s returned status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap maps the status code onto the repository sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return repository.ErrUnauthorized
	case http.StatusNotFound:
		return repository.ErrNotFound
	default:
		return repository.ErrRemote
	}
}

type errorBody struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail any    `json:"detail"`
	} `json:"errors"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		var titles []string
		for _, e := range parsed.Errors {
			if e.Title != "" {
				titles = append(titles, e.Title)
			}
		}
		if len(titles) > 0 {
			return strings.Join(titles, "; ")
		}
		if parsed.ErrorDescription != "" {
			return parsed.ErrorDescription
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}
