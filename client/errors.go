package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindNetwork means the request could not be issued or no response arrived.
	KindNetwork Kind = iota + 1
	// KindService means the endpoint answered with a non-success status.
	KindService
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// ErrNoEndpoint is returned when a client has no URL configured.
var ErrNoEndpoint = errors.New("endpoint url is empty")

// RequestError is the failure of a send or history request.
type RequestError struct {
	Kind       Kind
	StatusCode int    // HTTP status for KindService over plain HTTP; zero otherwise.
	Body       string // Truncated error body for KindService.
	Err        error
}

func (e *RequestError) Error() string {
	if e.Kind == KindService && e.StatusCode != 0 {
		return fmt.Sprintf("service error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a RequestError of kind k.
func IsKind(err error, k Kind) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == k
}
