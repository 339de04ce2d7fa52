package types

import "testing"

func TestParseStatus(t *testing.T) {
	t.Parallel()

	valid := []string{"Applied", "Interview", "Offer", "Rejected"}
	for _, raw := range valid {
		status, err := ParseStatus(raw)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned error: %v", raw, err)
		}
		if string(status) != raw {
			t.Errorf("ParseStatus(%q) = %q", raw, status)
		}
	}

	invalid := []string{"", "applied", "APPLIED", "Ghosted", "Interview "}
	for _, raw := range invalid {
		if _, err := ParseStatus(raw); err == nil {
			t.Errorf("ParseStatus(%q) should fail", raw)
		}
	}
}
