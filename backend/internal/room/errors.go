package room

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrMissingName      = errors.New("name not found in request header")
	ErrAlreadyRolled    = errors.New("participant already rolled this round")
	ErrTransportFailure = errors.New("transport failure")
	ErrConnNotOpen      = errors.New("connection not open")
	ErrSendBufferFull   = errors.New("send buffer full")
	ErrHubStopped       = errors.New("hub stopped")
)

// RoomError carries the operation and participant an error happened for.
type RoomError struct {
	Op          string
	Participant string
	Err         error
	Details     string
}

func (e *RoomError) Error() string {
	if e.Participant != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Participant, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RoomError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *RoomError {
	return &RoomError{Op: op, Err: err}
}

func NewParticipantError(op, participant string, err error) *RoomError {
	return &RoomError{Op: op, Participant: participant, Err: err}
}

func WrapError(op string, err error, details string) *RoomError {
	return &RoomError{Op: op, Err: err, Details: details}
}

// Rejection describes how a refused admission is reported on the wire.
type Rejection struct {
	// Notice is sent as a text frame before closing. Empty means no frame.
	Notice string
	Code   int
	Reason string
}

// RejectionFor maps an admission error to its wire rejection.
func RejectionFor(err error) (Rejection, bool) {
	switch {
	case errors.Is(err, ErrRoomFull):
		return Rejection{
			Notice: MsgRoomFull,
			Code:   websocket.CloseNormalClosure,
			Reason: MsgRoomFull,
		}, true
	case errors.Is(err, ErrMissingName):
		return Rejection{
			Code:   websocket.CloseInvalidFramePayloadData,
			Reason: MsgNameNotFound,
		}, true
	default:
		return Rejection{}, false
	}
}
