package models

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{
			name:     "valid password",
			password: "Abcdefg1",
			want:     nil,
		},
		{
			name:     "missing uppercase",
			password: "abcdefg1",
			want:     []string{MsgPasswordNeedsUpper},
		},
		{
			name:     "missing lowercase",
			password: "ABCDEFG1",
			want:     []string{MsgPasswordNeedsLower},
		},
		{
			name:     "missing digit",
			password: "Abcdefgh",
			want:     []string{MsgPasswordNeedsDigit},
		},
		{
			name:     "short with multiple violations",
			password: "abc",
			want:     []string{MsgPasswordTooShort, MsgPasswordNeedsUpper, MsgPasswordNeedsDigit},
		},
		{
			name:     "empty password reports everything",
			password: "",
			want: []string{
				MsgPasswordTooShort,
				MsgPasswordNeedsLower,
				MsgPasswordNeedsUpper,
				MsgPasswordNeedsDigit,
			},
		},
		{
			name:     "too long",
			password: "A1" + strings.Repeat("a", 71),
			want:     []string{MsgPasswordTooLong},
		},
		{
			name:     "unicode letters count",
			password: "Pässwörd1",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePassword(tt.password)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPasswordWithCost("Secret123", 4) // low cost for test speed
	if err != nil {
		t.Fatalf("HashPasswordWithCost failed: %v", err)
	}

	if !VerifyPassword("Secret123", hash) {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword("Secret124", hash) {
		t.Error("expected wrong password to fail verification")
	}
	if VerifyPassword("Secret123", "not-a-bcrypt-hash") {
		t.Error("expected malformed hash to fail verification, not panic")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice@Example.COM", "alice@example.com"},
		{"  bob@example.com  ", "bob@example.com"},
		{"carol@example.com", "carol@example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasLocalPassword(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	legacy := "google"
	empty := ""

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"real hash", User{PasswordHash: &hash}, true},
		{"nil hash", User{PasswordHash: nil}, false},
		{"empty hash", User{PasswordHash: &empty}, false},
		{"legacy provider marker", User{PasswordHash: &legacy}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasLocalPassword(); got != tt.want {
				t.Errorf("HasLocalPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
