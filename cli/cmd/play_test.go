package cmd

import (
	"testing"

	"github.com/BioHazard786/diceroom/cli/internal/session"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestReportClose(t *testing.T) {
	tests := []struct {
		name string
		info *session.CloseInfo
		want bool
	}{
		{name: "no close frame", info: nil, want: false},
		{name: "normal closure", info: &session.CloseInfo{Code: websocket.CloseNormalClosure}, want: false},
		{name: "going away", info: &session.CloseInfo{Code: websocket.CloseGoingAway, Text: "Server is shutting down"}, want: true},
		{name: "no reason", info: &session.CloseInfo{Code: websocket.CloseMessageTooBig}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportClose(tt.info))
		})
	}
}
