package services

import (
	"strings"
	"testing"
)

func TestCheckEmail(t *testing.T) {
	valid := []string{
		"a@x.com",
		"alice.smith+tag@example.co.uk",
		"user_99@sub.domain.io",
	}
	for _, email := range valid {
		v := newValidator()
		v.checkEmail(email)
		if v.hasErrors() {
			t.Errorf("checkEmail(%q) rejected a valid address: %v", email, v.fields)
		}
	}

	invalid := []string{
		"",
		"notanemail",
		"missing@tld",
		"@nohost.com",
		"spaces in@address.com",
	}
	for _, email := range invalid {
		v := newValidator()
		v.checkEmail(email)
		if !v.hasErrors() {
			t.Errorf("checkEmail(%q) accepted an invalid address", email)
		}
	}
}

func TestCheckUsername(t *testing.T) {
	cases := []struct {
		username string
		ok       bool
	}{
		{"bob", true},
		{"ab", false},
		{"", false},
		{strings.Repeat("a", 50), true},
		{strings.Repeat("a", 51), false},
		// Limits count characters, not bytes.
		{strings.Repeat("ñ", 50), true},
		{strings.Repeat("ñ", 51), false},
		{"ñé", false},
	}
	for _, tc := range cases {
		v := newValidator()
		v.checkUsername(tc.username)
		if v.hasErrors() == tc.ok {
			t.Errorf("checkUsername(%q): hasErrors = %v, want %v", tc.username, v.hasErrors(), !tc.ok)
		}
	}
}

func TestValidatorFirstFailurePerKeyWins(t *testing.T) {
	v := newValidator()
	v.checkCond(false, "title", "first message")
	v.checkCond(false, "title", "second message")

	if got := v.fields["title"]; got != "first message" {
		t.Fatalf("fields[title] = %q, want the first message", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"title":    "must be provided",
		"due_date": "due date cannot be in the past",
	}}

	msg := err.Error()
	if !strings.Contains(msg, "title: must be provided") {
		t.Errorf("message %q does not mention the title failure", msg)
	}
	if !strings.Contains(msg, "due_date: due date cannot be in the past") {
		t.Errorf("message %q does not mention the due date failure", msg)
	}
	// Keys are sorted for deterministic output.
	if strings.Index(msg, "due_date") > strings.Index(msg, "title") {
		t.Errorf("message %q is not sorted by field name", msg)
	}
}
