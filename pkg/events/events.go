package events

import "time"

// Event types emitted on the booking lifecycle stream.
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"
	TypeUserSynced       = "user.synced"
	TypeUserRemoved      = "user.removed"
)

// Header keys attached to every published message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source-service"
)

type BookingCreated struct {
	BookingID string    `json:"booking_id"`
	Reference string    `json:"booking_reference"`
	UserID    string    `json:"user_id"`
	HotelID   string    `json:"hotel_id"`
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Nights    int       `json:"nights"`
	Total     float64   `json:"total_amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
}

type BookingCancelled struct {
	BookingID   string    `json:"booking_id"`
	Reference   string    `json:"booking_reference"`
	RoomID      string    `json:"room_id"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type UserSynced struct {
	UserID  string `json:"user_id"`
	ClerkID string `json:"clerk_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Action  string `json:"action"` // created or updated
}

type UserRemoved struct {
	ClerkID string `json:"clerk_id"`
}
