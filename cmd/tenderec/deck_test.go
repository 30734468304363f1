// cmd/tenderec/deck_test.go
package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeckCommand(t *testing.T) {
	tests := []struct {
		line      string
		want      deckCommand
		expectErr bool
	}{
		{line: "", want: deckCommand{action: actionNone}},
		{line: "   ", want: deckCommand{action: actionNone}},
		{line: "r", want: deckCommand{action: actionRight}},
		{line: "RIGHT", want: deckCommand{action: actionRight}},
		{line: "like", want: deckCommand{action: actionRight}},
		{line: "l", want: deckCommand{action: actionLeft}},
		{line: " reject ", want: deckCommand{action: actionLeft}},
		{line: "drag 150", want: deckCommand{action: actionDrag, dx: 150}},
		{line: "drag -99.5", want: deckCommand{action: actionDrag, dx: -99.5}},
		{line: "next", want: deckCommand{action: actionNext}},
		{line: "reset", want: deckCommand{action: actionReset}},
		{line: "liked", want: deckCommand{action: actionLiked}},
		{line: "?", want: deckCommand{action: actionHelp}},
		{line: "quit", want: deckCommand{action: actionQuit}},
		{line: "drag", expectErr: true},
		{line: "drag far", expectErr: true},
		{line: "swipe", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseDeckCommand(tt.line)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
