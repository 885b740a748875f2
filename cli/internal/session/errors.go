package session

import (
	"errors"
	"fmt"
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrRejected     = errors.New("server rejected the connection")
	ErrDisconnected = errors.New("disconnected from server")
	ErrNotConnected = errors.New("not connected")
	ErrTimeout      = errors.New("timeout")
)

type SessionError struct {
	Op      string
	Err     error
	Details string
}

func (e *SessionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *SessionError {
	return &SessionError{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *SessionError {
	return &SessionError{Op: op, Err: err, Details: details}
}
