package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusPending   = "pending"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
	BookingStatusNoShow    = "no_show"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type Booking struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Reference string `json:"booking_id" bson:"booking_reference"`
	UserID    string `json:"user" bson:"user" validate:"required,mongodb"`
	HotelID   string `json:"hotel" bson:"hotel" validate:"required,mongodb"`
	RoomID    string `json:"room" bson:"room" validate:"required,mongodb"`

	Guest   GuestDetails   `json:"guest_details" bson:"guest_details"`
	Dates   StayDates      `json:"dates" bson:"dates"`
	Pricing BookingPricing `json:"pricing" bson:"pricing"`
	Payment Payment        `json:"payment" bson:"payment"`

	Status          string        `json:"status" bson:"status" validate:"required,oneof=confirmed pending cancelled completed no_show"`
	SpecialRequests string        `json:"special_requests,omitempty" bson:"special_requests,omitempty"`
	Cancellation    *Cancellation `json:"cancellation,omitempty" bson:"cancellation,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type GuestDetails struct {
	FirstName string `json:"first_name" bson:"first_name" validate:"required"`
	LastName  string `json:"last_name" bson:"last_name" validate:"required"`
	Email     string `json:"email" bson:"email" validate:"required,email"`
	Phone     string `json:"phone" bson:"phone" validate:"required"`
	Adults    int    `json:"adults" bson:"adults" validate:"required,min=1"`
	Children  int    `json:"children" bson:"children" validate:"min=0"`
}

type StayDates struct {
	CheckIn  time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut time.Time `json:"check_out" bson:"check_out" validate:"required"`
	Nights   int       `json:"nights" bson:"nights"`
}

type BookingPricing struct {
	RoomPrice float64 `json:"room_price" bson:"room_price"`
	Taxes     float64 `json:"taxes" bson:"taxes"`
	Fees      float64 `json:"fees" bson:"fees"`
	Discount  float64 `json:"discount" bson:"discount"`
	Total     float64 `json:"total_amount" bson:"total_amount"`
	Currency  string  `json:"currency" bson:"currency"`
}

type Payment struct {
	Method        string     `json:"method" bson:"method" validate:"omitempty,oneof=credit_card debit_card paypal bank_transfer cash"`
	Status        string     `json:"status" bson:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	TransactionID string     `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
}

type Cancellation struct {
	IsCancelled  bool      `json:"is_cancelled" bson:"is_cancelled"`
	CancelledAt  time.Time `json:"cancelled_at" bson:"cancelled_at"`
	Reason       string    `json:"reason,omitempty" bson:"reason,omitempty"`
	RefundAmount float64   `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
}

// BookingRequest is the create payload: dates and references come from the
// client, pricing is always computed server-side from the room.
type BookingRequest struct {
	UserID          string       `json:"user" validate:"required,mongodb"`
	HotelID         string       `json:"hotel" validate:"required,mongodb"`
	RoomID          string       `json:"room" validate:"required,mongodb"`
	Guest           GuestDetails `json:"guest_details"`
	CheckIn         time.Time    `json:"check_in" validate:"required"`
	CheckOut        time.Time    `json:"check_out" validate:"required"`
	PaymentMethod   string       `json:"payment_method,omitempty" validate:"omitempty,oneof=credit_card debit_card paypal bank_transfer cash"`
	Confirm         bool         `json:"confirm,omitempty"`
	SpecialRequests string       `json:"special_requests,omitempty"`
}

type BookingUpdate struct {
	Status          string   `json:"status,omitempty" validate:"omitempty,oneof=confirmed pending completed no_show"`
	PaymentStatus   string   `json:"payment_status,omitempty" validate:"omitempty,oneof=pending completed failed refunded"`
	TransactionID   string   `json:"transaction_id,omitempty"`
	SpecialRequests *string  `json:"special_requests,omitempty"`
	RefundAmount    *float64 `json:"refund_amount,omitempty"`
}
