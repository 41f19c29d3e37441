package model

import "time"

const (
	HotelStatusActive   = "active"
	HotelStatusInactive = "inactive"
	HotelStatusPending  = "pending"
)

type Hotel struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string       `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Description string       `json:"description" bson:"description" validate:"required"`
	Address     string       `json:"address" bson:"address" validate:"required"`
	City        string       `json:"city" bson:"city" validate:"required"`
	Country     string       `json:"country" bson:"country" validate:"required"`
	Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Images      []Image      `json:"images,omitempty" bson:"images,omitempty"`
	Amenities   []string     `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"dive,oneof='Free WiFi' 'Swimming Pool' Spa Gym Restaurant Bar 'Room Service' Concierge Parking 'Pet Friendly' 'Business Center' 'Laundry Service' 'Airport Shuttle' 'Air Conditioning' Heating 'Non-smoking Rooms'"`
	Rating      Rating       `json:"rating" bson:"rating"`
	Contact     Contact      `json:"contact,omitempty" bson:"contact,omitempty"`
	OwnerID     string       `json:"owner" bson:"owner" validate:"required,mongodb"`
	Status      string       `json:"status" bson:"status" validate:"required,oneof=active inactive pending"`
	PriceRange  *PriceRange  `json:"price_range,omitempty" bson:"price_range,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
}

type Image struct {
	URL       string `json:"url" bson:"url" validate:"omitempty,url"`
	Alt       string `json:"alt,omitempty" bson:"alt,omitempty"`
	IsPrimary bool   `json:"is_primary" bson:"is_primary"`
}

type Rating struct {
	Average      float64 `json:"average" bson:"average" validate:"min=0,max=5"`
	TotalReviews int     `json:"total_reviews" bson:"total_reviews" validate:"min=0"`
}

type Contact struct {
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email   string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Website string `json:"website,omitempty" bson:"website,omitempty" validate:"omitempty,url"`
}

type PriceRange struct {
	Min float64 `json:"min" bson:"min" validate:"min=0"`
	Max float64 `json:"max" bson:"max" validate:"min=0"`
}

// HotelUpdate carries owner-editable fields; nil/empty means unchanged.
type HotelUpdate struct {
	Name        string       `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description string       `json:"description,omitempty"`
	Address     string       `json:"address,omitempty"`
	City        string       `json:"city,omitempty"`
	Country     string       `json:"country,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Images      []Image      `json:"images,omitempty"`
	Amenities   []string     `json:"amenities,omitempty"`
	Contact     *Contact     `json:"contact,omitempty"`
	Status      string       `json:"status,omitempty" validate:"omitempty,oneof=active inactive pending"`
	PriceRange  *PriceRange  `json:"price_range,omitempty"`
}
