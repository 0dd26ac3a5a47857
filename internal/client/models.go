package client

import "time"

// Wire shapes for the casavia HTTP API.

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// AuthResponse is the body of signin / refresh / me responses. Both fields
// are null when the server runs with auth enforcement disabled.
type AuthResponse struct {
	AccessToken *string `json:"accessToken"`
	User        *User   `json:"user"`
}

type Location struct {
	ID      int64  `json:"id"`
	City    string `json:"city"`
	Country string `json:"country"`
}

type Listing struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	LocationID    int64    `json:"locationId"`
	Location      Location `json:"location"`
	Images        []string `json:"images"`
	PricePerNight int      `json:"pricePerNight"`
	MaxGuests     int      `json:"maxGuests"`
	Rating        float64  `json:"rating"`
}

type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listingId"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Filter narrows listing queries.
type Filter struct {
	Guests int
	Search string
}

type CreateListingInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	LocationID    int64    `json:"locationId"`
	Images        []string `json:"images"`
	PricePerNight int      `json:"pricePerNight"`
	MaxGuests     int      `json:"maxGuests"`
}
