package enums

import "fmt"

// DealStatus tracks the lifecycle of a deal. The literal values match what the
// mobile clients render, so they are stored as-is.
type DealStatus string

const (
	DealStatusNew         DealStatus = "New"
	DealStatusNegotiating DealStatus = "Negotiating"
	DealStatusAccepted    DealStatus = "Accepted"
	DealStatusDeclined    DealStatus = "Declined"
	DealStatusCompleted   DealStatus = "Completed"
)

var validDealStatuses = []DealStatus{
	DealStatusNew,
	DealStatusNegotiating,
	DealStatusAccepted,
	DealStatusDeclined,
	DealStatusCompleted,
}

// OpenDealStatuses are the statuses visible to every dealer. Negotiating is
// reachable only through seed data today; no operation transitions into it,
// but it stays in the filter so seeded rows remain listable.
var OpenDealStatuses = []DealStatus{DealStatusNew, DealStatusNegotiating}

// String implements fmt.Stringer.
func (d DealStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DealStatus.
func (d DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsOpen reports whether a deal in this status is still eligible for dealer
// action.
func (d DealStatus) IsOpen() bool {
	for _, candidate := range OpenDealStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
