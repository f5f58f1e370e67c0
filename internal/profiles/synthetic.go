package profiles

import "strings"

// SyntheticEmailDomain is appended to farmer phone numbers to mint the
// email identity farmers authenticate with.
const SyntheticEmailDomain = "@krishimitra.com"

// SyntheticEmail mints the auth email for a farmer phone number.
func SyntheticEmail(phone string) string {
	return strings.TrimSpace(phone) + SyntheticEmailDomain
}

// PhoneFromSyntheticEmail extracts the phone number from a synthetic farmer
// email, or returns "" when the value is not one.
func PhoneFromSyntheticEmail(value string) string {
	trimmed := strings.TrimSpace(value)
	if !strings.HasSuffix(trimmed, SyntheticEmailDomain) {
		return ""
	}
	phone := strings.TrimSuffix(trimmed, SyntheticEmailDomain)
	if phone == "" {
		return ""
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return phone
}
