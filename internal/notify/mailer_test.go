package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Joined(t *testing.T) {
	subject, body := Render(Intent{
		Kind:       KindJoined,
		Contact:    "alice@example.com",
		Name:       "Alice",
		Restaurant: "bella-vista",
		Position:   3,
		ETA:        "6:45PM",
		PartySize:  2,
	})

	assert.Contains(t, subject, "bella-vista")
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Position in line: 3")
	assert.Contains(t, body, "6:45PM")
	assert.Contains(t, body, "Party size: 2")
}

func TestRender_StatusChanged(t *testing.T) {
	for status, want := range map[string]string{
		"Ready":     "ready",
		"Seated":    "seated",
		"Cancelled": "cancelled",
	} {
		_, body := Render(Intent{
			Kind:       KindStatusChanged,
			Name:       "Bob",
			Restaurant: "bella-vista",
			Status:     status,
		})
		assert.True(t, strings.Contains(strings.ToLower(body), want), "body for %s should mention %q", status, want)
	}
}
