package model

import "time"

type Room struct {
	ID               string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID          string           `json:"hotel" bson:"hotel" validate:"required,mongodb"`
	Type             string           `json:"type" bson:"type" validate:"required,oneof=Standard Deluxe Suite Premium Executive Presidential"`
	Name             string           `json:"name" bson:"name" validate:"required"`
	Description      string           `json:"description" bson:"description" validate:"required"`
	Images           []Image          `json:"images,omitempty" bson:"images,omitempty"`
	Capacity         Capacity         `json:"capacity" bson:"capacity"`
	BedConfiguration BedConfiguration `json:"bed_configuration" bson:"bed_configuration"`
	Amenities        []string         `json:"amenities,omitempty" bson:"amenities,omitempty"`
	Pricing          RoomPricing      `json:"pricing" bson:"pricing"`
	Availability     Availability     `json:"availability" bson:"availability"`
	Policies         RoomPolicies     `json:"policies" bson:"policies"`
	CreatedAt        time.Time        `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type Capacity struct {
	Adults   int `json:"adults" bson:"adults" validate:"required,min=1"`
	Children int `json:"children" bson:"children" validate:"min=0"`
}

type BedConfiguration struct {
	BedType  string `json:"bed_type" bson:"bed_type" validate:"required,oneof=Single Double Queen King Twin"`
	BedCount int    `json:"bed_count" bson:"bed_count" validate:"required,min=1"`
}

type RoomPricing struct {
	BasePrice     float64 `json:"base_price" bson:"base_price" validate:"required,min=0"`
	Currency      string  `json:"currency" bson:"currency"`
	TaxesIncluded bool    `json:"taxes_included" bson:"taxes_included"`
}

// Availability is the shared mutable inventory counter. The repository keeps
// the invariants 0 <= AvailableRooms <= TotalRooms and
// IsAvailable == (AvailableRooms > 0) through conditional updates; nothing
// else writes these fields.
type Availability struct {
	IsAvailable    bool `json:"is_available" bson:"is_available"`
	TotalRooms     int  `json:"total_rooms" bson:"total_rooms" validate:"required,min=1"`
	AvailableRooms int  `json:"available_rooms" bson:"available_rooms" validate:"min=0,ltefield=TotalRooms"`
}

type RoomPolicies struct {
	CheckIn            string `json:"check_in" bson:"check_in"`
	CheckOut           string `json:"check_out" bson:"check_out"`
	CancellationPolicy string `json:"cancellation_policy" bson:"cancellation_policy"`
	SmokingAllowed     bool   `json:"smoking_allowed" bson:"smoking_allowed"`
	PetsAllowed        bool   `json:"pets_allowed" bson:"pets_allowed"`
}

type RoomUpdate struct {
	Type             string            `json:"type,omitempty" validate:"omitempty,oneof=Standard Deluxe Suite Premium Executive Presidential"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	Images           []Image           `json:"images,omitempty"`
	Capacity         *Capacity         `json:"capacity,omitempty"`
	BedConfiguration *BedConfiguration `json:"bed_configuration,omitempty"`
	Amenities        []string          `json:"amenities,omitempty"`
	Pricing          *RoomPricing      `json:"pricing,omitempty"`
	Policies         *RoomPolicies     `json:"policies,omitempty"`
}

func DefaultRoomPolicies() RoomPolicies {
	return RoomPolicies{
		CheckIn:            "15:00",
		CheckOut:           "11:00",
		CancellationPolicy: "Free cancellation up to 24 hours before check-in",
	}
}
