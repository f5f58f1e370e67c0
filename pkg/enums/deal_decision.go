package enums

import "fmt"

// DealDecision represents the terminal action a dealer can take on an open deal.
type DealDecision string

const (
	// DealDecisionAccept indicates the dealer accepts the deal.
	DealDecisionAccept DealDecision = "accept"
	// DealDecisionDecline indicates the dealer declines the deal.
	DealDecisionDecline DealDecision = "decline"
)

var validDealDecisions = []DealDecision{DealDecisionAccept, DealDecisionDecline}

// IsValid reports whether the value is a known DealDecision.
func (d DealDecision) IsValid() bool {
	for _, candidate := range validDealDecisions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDealDecision converts raw input into a DealDecision.
func ParseDealDecision(value string) (DealDecision, error) {
	for _, candidate := range validDealDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal decision %q", value)
}
