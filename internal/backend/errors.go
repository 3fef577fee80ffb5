package backend

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Error classes of a data service call. A single error may carry several
// marks: a 409 is both ErrRemote and ErrSlotUnavailable.
var (
	ErrRemote          = errors.New("data service request failed")
	ErrSlotUnavailable = errors.New("slot no longer available")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
)

// RemoteError is a non-2xx answer from the data service. Message is the
// server's own text when it sent one.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Message returns the server text of a remote failure, or err.Error() when
// err did not come from the data service.
func Message(err error) string {
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	return err.Error()
}

var unavailablePhrases = []string{"not available", "already booked"}

func newRemoteError(status int, body []byte) error {
	msg := serverMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}

	var err error = &RemoteError{Status: status, Message: msg}
	err = errors.Mark(err, ErrRemote)

	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusUnauthorized:
		err = errors.Mark(err, ErrUnauthorized)
	case status == http.StatusNotFound:
		err = errors.Mark(err, ErrNotFound)
	case status == http.StatusConflict:
		err = errors.Mark(err, ErrSlotUnavailable)
	default:
		for _, phrase := range unavailablePhrases {
			if strings.Contains(lower, phrase) {
				err = errors.Mark(err, ErrSlotUnavailable)
				break
			}
		}
	}
	return err
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
