package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusWaiting, StatusReady, true},
		{StatusWaiting, StatusSeated, true},
		{StatusWaiting, StatusCancelled, true},
		{StatusReady, StatusSeated, true},
		{StatusReady, StatusCancelled, true},
		{StatusReady, StatusWaiting, false},
		{StatusSeated, StatusWaiting, false},
		{StatusSeated, StatusReady, false},
		{StatusSeated, StatusCancelled, false},
		{StatusCancelled, StatusWaiting, false},
		{StatusCancelled, StatusSeated, false},
		{StatusWaiting, StatusWaiting, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusInWaitingRoom(t *testing.T) {
	assert.True(t, StatusWaiting.InWaitingRoom())
	assert.True(t, StatusReady.InWaitingRoom())
	assert.False(t, StatusSeated.InWaitingRoom())
	assert.False(t, StatusCancelled.InWaitingRoom())
}

func TestNewQueueEntry(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	e := NewQueueEntry("Alice", "alice@example.com", "bella-vista", 2, t0, "user-1", WaitEstimate)

	assert.Equal(t, t0.Add(45*time.Minute), e.ETA)
	assert.Equal(t, StatusWaiting, e.Status)
	assert.NotEmpty(t, e.Token)

	other := NewQueueEntry("Bob", "bob@example.com", "bella-vista", 2, t0, "", WaitEstimate)
	assert.NotEqual(t, e.Token, other.Token)
}

func TestQueueEntryValidate(t *testing.T) {
	t0 := time.Now()
	valid := NewQueueEntry("Alice", "alice@example.com", "bella-vista", 1, t0, "", WaitEstimate)
	assert.NoError(t, valid.Validate())

	noParty := valid
	noParty.PartySize = 0
	assert.ErrorIs(t, noParty.Validate(), ErrInvalidInput)

	noRestaurant := valid
	noRestaurant.Restaurant = ""
	assert.ErrorIs(t, noRestaurant.Validate(), ErrInvalidInput)

	noEmail := valid
	noEmail.Email = ""
	assert.ErrorIs(t, noEmail.Validate(), ErrInvalidInput)
}
