package auth

import (
	"errors"
	"testing"
)

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Password123!", nil},
		{"valid with unicode special", "Passw0rd€xtra", nil},
		{"too short", "Pa1!", ErrPasswordTooShort},
		{"no uppercase", "password123!", ErrPasswordTooWeak},
		{"no lowercase", "PASSWORD123!", ErrPasswordTooWeak},
		{"no digit", "Password!!!!", ErrPasswordTooWeak},
		{"no special", "Password1234", ErrPasswordTooWeak},
		{"empty", "", ErrPasswordTooShort},
		{"relaxed legacy length is rejected", "Abc12!", ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPasswordPolicy(tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("CheckPasswordPolicy(%q) = %v, want %v", tc.password, err, tc.wantErr)
			}
		})
	}
}

func TestCheckPasswordPolicyTooLong(t *testing.T) {
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	password := "Aa1!" + string(long)

	err := CheckPasswordPolicy(password)
	if !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("CheckPasswordPolicy = %v, want %v", err, ErrPasswordTooLong)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	const plaintext = "Password123!"

	digest, err := HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if digest == plaintext {
		t.Fatal("digest equals the plaintext")
	}

	match, err := VerifyPassword(plaintext, digest)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !match {
		t.Fatal("original plaintext did not verify against its digest")
	}

	match, err = VerifyPassword("Password123?", digest)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if match {
		t.Fatal("a different plaintext verified against the digest")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	const plaintext = "Password123!"

	first, err := HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same plaintext are identical, salting is broken")
	}
}
