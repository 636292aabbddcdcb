package order

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusApproved  Status = "APPROVED"
	StatusDenied    Status = "DENIED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusApproved, StatusDenied, StatusShipped, StatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if an admin may move an order from s to target.
// SHIPPED is only ever displayed; no admin action leads to or from it.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return target == StatusApproved || target == StatusDenied
	case StatusApproved:
		return target == StatusDelivered
	case StatusDenied, StatusDelivered, StatusShipped:
		return false
	}
	return false
}

// AvailableTransitions returns the statuses an admin may move the order to
func (s Status) AvailableTransitions() []Status {
	switch s {
	case StatusPending, StatusConfirmed:
		return []Status{StatusApproved, StatusDenied}
	case StatusApproved:
		return []Status{StatusDelivered}
	}
	return nil
}

// IsTerminal reports whether no further transitions exist
func (s Status) IsTerminal() bool {
	return s == StatusDenied || s == StatusDelivered
}

// IsAwaitingApproval reports whether the order still needs an admin decision
func (s Status) IsAwaitingApproval() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Display returns the status label shown to users. CONFIRMED is shown as PENDING.
func (s Status) Display() Status {
	if s == StatusConfirmed {
		return StatusPending
	}
	return s
}

// ActionLabel returns the admin button caption for moving to s
func (s Status) ActionLabel() string {
	switch s {
	case StatusApproved:
		return "Approve"
	case StatusDenied:
		return "Deny"
	case StatusDelivered:
		return "Mark as Delivered"
	}
	return string(s)
}

// CustomerHint returns the secondary status line shown in a customer's order list
func (s Status) CustomerHint() string {
	switch s {
	case StatusApproved:
		return "Action: APPROVED"
	case StatusDelivered:
		return "Action: DELIVERED"
	case StatusPending, StatusConfirmed:
		return "Awaiting Approval"
	}
	return ""
}
