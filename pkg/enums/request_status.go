package enums

import "fmt"

// RequestStatus tracks the lifecycle of a fertilizer request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusVerified  RequestStatus = "verified"
	RequestStatusScheduled RequestStatus = "scheduled"
	RequestStatusShipped   RequestStatus = "shipped"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusVerified,
	RequestStatusScheduled,
	RequestStatusShipped,
	RequestStatusCompleted,
	RequestStatusRejected,
	RequestStatusCancelled,
}

// String implements fmt.Stringer.
func (r RequestStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RequestStatus.
func (r RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (r RequestStatus) IsTerminal() bool {
	switch r {
	case RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled:
		return true
	}
	return false
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
