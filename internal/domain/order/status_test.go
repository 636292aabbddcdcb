package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusApproved, StatusDenied, StatusShipped, StatusDelivered}
	allowed := map[Status][]Status{
		StatusPending:   {StatusApproved, StatusDenied},
		StatusConfirmed: {StatusApproved, StatusDenied},
		StatusApproved:  {StatusDelivered},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, want, from.CanTransitionTo(to))
			})
		}
	}
}

func TestStatus_AvailableTransitions(t *testing.T) {
	assert.Equal(t, []Status{StatusApproved, StatusDenied}, StatusPending.AvailableTransitions())
	assert.Equal(t, []Status{StatusApproved, StatusDenied}, StatusConfirmed.AvailableTransitions())
	assert.Equal(t, []Status{StatusDelivered}, StatusApproved.AvailableTransitions())
	assert.Empty(t, StatusDenied.AvailableTransitions())
	assert.Empty(t, StatusDelivered.AvailableTransitions())
	assert.Empty(t, StatusShipped.AvailableTransitions())
}

func TestStatus_TransitionsAgreeWithCanTransitionTo(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusApproved, StatusDenied, StatusShipped, StatusDelivered} {
		for _, next := range s.AvailableTransitions() {
			assert.True(t, s.CanTransitionTo(next), "%s -> %s", s, next)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDenied.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
}

func TestStatus_Display(t *testing.T) {
	assert.Equal(t, StatusPending, StatusConfirmed.Display())
	assert.Equal(t, StatusPending, StatusPending.Display())
	assert.Equal(t, StatusShipped, StatusShipped.Display())
}

func TestStatus_Labels(t *testing.T) {
	assert.Equal(t, "Approve", StatusApproved.ActionLabel())
	assert.Equal(t, "Deny", StatusDenied.ActionLabel())
	assert.Equal(t, "Mark as Delivered", StatusDelivered.ActionLabel())

	assert.Equal(t, "Awaiting Approval", StatusConfirmed.CustomerHint())
	assert.Equal(t, "Action: APPROVED", StatusApproved.CustomerHint())
	assert.Equal(t, "Action: DELIVERED", StatusDelivered.CustomerHint())
	assert.Equal(t, "", StatusDenied.CustomerHint())
}

func TestStatus_IsValid(t *testing.T) {
	assert.True(t, StatusShipped.IsValid())
	assert.False(t, Status("LOST").IsValid())
}
