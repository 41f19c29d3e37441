package model

import (
	"encoding/json"
	"testing"
)

func TestUserTypeDerivation(t *testing.T) {
	cases := []struct {
		role string
		want string
	}{
		{RoleCustomer, UserTypeCustomer},
		{RoleHotelOwner, UserTypeOwner},
		{"", UserTypeCustomer},
	}

	for _, tc := range cases {
		u := User{Role: tc.role}
		if got := u.UserType(); got != tc.want {
			t.Errorf("UserType() with role %q = %q, want %q", tc.role, got, tc.want)
		}
	}
}

func TestUserJSONCarriesDerivedType(t *testing.T) {
	u := User{
		ClerkID: "user_1",
		Email:   "owner@example.com",
		Name:    "Owner",
		Role:    RoleHotelOwner,
	}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["user_type"] != "owner" {
		t.Errorf("user_type = %v, want owner", decoded["user_type"])
	}
	if decoded["role"] != "hotel_owner" {
		t.Errorf("role = %v, want hotel_owner", decoded["role"])
	}
}
