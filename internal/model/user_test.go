package model

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user     User
		expected string
	}{
		{User{ID: 1, Username: "tiger", NetID: "tt1", Email: "t@x.edu"}, "tiger"},
		{User{ID: 2, NetID: "tt2", Email: "t@x.edu"}, "tt2"},
		{User{ID: 3, Email: "t@x.edu"}, "t@x.edu"},
		{User{ID: 4}, "user 4"},
	}

	for _, tt := range tests {
		got := tt.user.DisplayName()
		if got != tt.expected {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.user, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}
