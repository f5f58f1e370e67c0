package profiles

import "testing"

func TestSyntheticEmail(t *testing.T) {
	if got := SyntheticEmail("9876543210"); got != "9876543210@krishimitra.com" {
		t.Fatalf("unexpected email %q", got)
	}
	if got := SyntheticEmail(" 9876543210 "); got != "9876543210@krishimitra.com" {
		t.Fatalf("expected trimmed email, got %q", got)
	}
}

func TestPhoneFromSyntheticEmail(t *testing.T) {
	cases := map[string]string{
		"9876543210@krishimitra.com":   "9876543210",
		" 9876543210@krishimitra.com ": "9876543210",
		"Ramesh Kumar":                 "",
		"abc@krishimitra.com":          "",
		"@krishimitra.com":             "",
		"98765@gmail.com":              "",
	}
	for input, want := range cases {
		if got := PhoneFromSyntheticEmail(input); got != want {
			t.Fatalf("PhoneFromSyntheticEmail(%q) = %q, want %q", input, got, want)
		}
	}
}
