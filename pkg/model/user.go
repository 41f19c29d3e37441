package model

import (
	"encoding/json"
	"time"
)

const (
	RoleCustomer   = "customer"
	RoleHotelOwner = "hotel_owner"

	UserTypeCustomer = "customer"
	UserTypeOwner    = "owner"
)

// User mirrors an identity-provider account. Role is the single source of
// truth for the account kind; the legacy userType label is derived, never stored.
type User struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClerkID   string `json:"clerk_id" bson:"clerk_id" validate:"required"`
	Email     string `json:"email" bson:"email" validate:"required,email"`
	Name      string `json:"name" bson:"name" validate:"required,min=1,max=200"`
	FirstName string `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role      string `json:"role" bson:"role" validate:"required,oneof=customer hotel_owner"`

	Address     *Address         `json:"address,omitempty" bson:"address,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty" bson:"preferences,omitempty"`
	OwnerInfo   *HotelOwnerInfo  `json:"hotel_owner_info,omitempty" bson:"hotel_owner_info,omitempty"`

	IsActive        bool `json:"is_active" bson:"is_active"`
	IsEmailVerified bool `json:"is_email_verified" bson:"is_email_verified"`
	IsPhoneVerified bool `json:"is_phone_verified" bson:"is_phone_verified"`

	LastLogin  time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	LoginCount int       `json:"login_count" bson:"login_count"`

	Notifications  NotificationSettings `json:"notifications" bson:"notifications"`
	RecentSearches []RecentSearch       `json:"recent_searches,omitempty" bson:"recent_searches,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type Address struct {
	Street  string `json:"street,omitempty" bson:"street,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	Country string `json:"country,omitempty" bson:"country,omitempty"`
	ZipCode string `json:"zip_code,omitempty" bson:"zip_code,omitempty"`
}

type UserPreferences struct {
	RoomType  string   `json:"room_type,omitempty" bson:"room_type,omitempty" validate:"omitempty,oneof=standard deluxe suite family business"`
	MaxBudget float64  `json:"max_budget,omitempty" bson:"max_budget,omitempty"`
	Amenities []string `json:"amenities,omitempty" bson:"amenities,omitempty"`
}

type HotelOwnerInfo struct {
	BusinessName    string `json:"business_name,omitempty" bson:"business_name,omitempty"`
	BusinessLicense string `json:"business_license,omitempty" bson:"business_license,omitempty"`
	TaxID           string `json:"tax_id,omitempty" bson:"tax_id,omitempty"`
	IsVerified      bool   `json:"is_verified" bson:"is_verified"`
}

type NotificationSettings struct {
	EmailBookingConfirmation bool `json:"email_booking_confirmation" bson:"email_booking_confirmation"`
	EmailPromotions          bool `json:"email_promotions" bson:"email_promotions"`
	SMSBookingReminders      bool `json:"sms_booking_reminders" bson:"sms_booking_reminders"`
	PushEnabled              bool `json:"push_enabled" bson:"push_enabled"`
	PushBookingUpdates       bool `json:"push_booking_updates" bson:"push_booking_updates"`
}

type RecentSearch struct {
	City       string    `json:"city" bson:"city"`
	SearchedAt time.Time `json:"searched_at" bson:"searched_at"`
}

// UserUpdate carries the profile fields a client may change. Identity
// fields (clerk_id, email) only change through the webhook sync path.
type UserUpdate struct {
	Name          string                `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	FirstName     string                `json:"first_name,omitempty"`
	LastName      string                `json:"last_name,omitempty"`
	Phone         string                `json:"phone,omitempty"`
	Avatar        string                `json:"avatar,omitempty" validate:"omitempty,url"`
	Role          string                `json:"role,omitempty" validate:"omitempty,oneof=customer hotel_owner"`
	Address       *Address              `json:"address,omitempty"`
	Preferences   *UserPreferences      `json:"preferences,omitempty"`
	OwnerInfo     *HotelOwnerInfo       `json:"hotel_owner_info,omitempty"`
	Notifications *NotificationSettings `json:"notifications,omitempty"`
	IsActive      *bool                 `json:"is_active,omitempty"`
}

// UserType derives the legacy owner/customer label from Role.
func (u *User) UserType() string {
	if u.Role == RoleHotelOwner {
		return UserTypeOwner
	}
	return UserTypeCustomer
}

func (u *User) IsHotelOwner() bool {
	return u.Role == RoleHotelOwner
}

// MarshalJSON emits the derived user_type alongside role so older clients
// keep working without the field being stored twice.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		UserType string `json:"user_type"`
	}{alias(u), u.UserType()})
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		EmailBookingConfirmation: true,
		SMSBookingReminders:      true,
		PushEnabled:              true,
		PushBookingUpdates:       true,
	}
}
