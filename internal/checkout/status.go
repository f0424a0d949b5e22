package checkout

// Status is the lifecycle state of a cart, a checkout request, or a single
// requested book. Items only ever hold pending, approved or rejected.
type Status string

const (
	StatusEmpty             Status = "empty"
	StatusActive            Status = "active"
	StatusPending           Status = "pending"
	StatusConfirmed         Status = "confirmed"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusPartiallyApproved Status = "partially_approved"
)

// IsDecided reports whether an item status is terminal.
func (s Status) IsDecided() bool {
	return s == StatusApproved || s == StatusRejected
}

// Aggregate derives a request's status from its items: all approved is
// approved, all rejected is rejected, any other mix with at least one
// decision is partially_approved, and otherwise the request is pending.
func Aggregate(items []Item) Status {
	var approved, rejected int
	for _, it := range items {
		switch it.Status {
		case StatusApproved:
			approved++
		case StatusRejected:
			rejected++
		}
	}
	total := len(items)
	switch {
	case total == 0:
		return StatusPending
	case approved == total:
		return StatusApproved
	case rejected == total:
		return StatusRejected
	case approved+rejected > 0:
		return StatusPartiallyApproved
	default:
		return StatusPending
	}
}
