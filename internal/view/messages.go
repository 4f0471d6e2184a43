package view

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/erazemk/tigerpop/internal/client"
)

// Message maps an error to text for the user. It returns "" for nil.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, client.ErrRequestInFlight) {
		return "Your request is already being sent"
	}

	var ce *client.Error
	if !errors.As(err, &ce) {
		return capitalize(err.Error())
	}

	switch ce.Kind {
	case client.KindNetwork:
		return "Could not reach the server, check your connection and try again"
	case client.KindAuthRequired:
		return "Please log in to continue"
	case client.KindNotFound:
		return "This listing could not be found"
	case client.KindForbidden:
		return "You can only change your own listings"
	case client.KindAlreadyHearted:
		return "You already hearted this listing"
	case client.KindNotAvailable:
		return "This listing is no longer available"
	case client.KindInvalid:
		if ce.Reason != "" {
			return capitalize(ce.Reason)
		}
		return "Please check the form and try again"
	}

	if ce.Status == http.StatusUnauthorized {
		return "Your session has expired, please log in again"
	}
	if ce.Reason != "" {
		return capitalize(ce.Reason)
	}
	return fmt.Sprintf("Something went wrong (status %d)", ce.Status)
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
