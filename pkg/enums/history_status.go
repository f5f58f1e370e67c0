package enums

import "fmt"

// HistoryStatus marks the terminal outcome a dealer recorded for a deal.
type HistoryStatus string

const (
	HistoryStatusCompleted HistoryStatus = "Completed"
	HistoryStatusDeclined  HistoryStatus = "Declined"
)

var validHistoryStatuses = []HistoryStatus{
	HistoryStatusCompleted,
	HistoryStatusDeclined,
}

// String implements fmt.Stringer.
func (h HistoryStatus) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HistoryStatus.
func (h HistoryStatus) IsValid() bool {
	for _, candidate := range validHistoryStatuses {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHistoryStatus converts raw input into a HistoryStatus.
func ParseHistoryStatus(value string) (HistoryStatus, error) {
	for _, candidate := range validHistoryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid history status %q", value)
}
