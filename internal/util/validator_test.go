package util

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.c", "admin@brgy.gov.ph", "Name Surname <x@y.z>"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", email, err)
		}
	}

	invalid := []string{"", "plain", "@no-local.part", "spaces in@addr.ess"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("8-char password rejected: %v", err)
	}
	if err := ValidatePassword("1234567"); err == nil {
		t.Error("7-char password accepted")
	}
}
