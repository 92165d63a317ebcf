package models

// Status is the order lifecycle state. Orders start as pending and move to
// exactly one of the two terminal states; canceled orders are additionally
// soft-deleted.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusCanceled Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCanceled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusCanceled
}

// CanTransition reports whether an order may move from s to target. The only
// legal transitions are pending -> approved and pending -> canceled.
func (s Status) CanTransition(target Status) bool {
	if s != StatusPending {
		return false
	}
	return target == StatusApproved || target == StatusCanceled
}

// CanView reports whether c may read an order owned by ownerID.
func (c Caller) CanView(ownerID int64) bool {
	return c.Admin || c.UserID == ownerID
}

// CanCancel reports whether c may cancel an order owned by ownerID.
// Admins may cancel any order, owners their own.
func (c Caller) CanCancel(ownerID int64) bool {
	return c.Admin || c.UserID == ownerID
}

// CanApprove reports whether c may approve orders. Approval is reserved for
// privileged callers regardless of ownership.
func (c Caller) CanApprove() bool {
	return c.Admin
}
