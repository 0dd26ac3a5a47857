package store

import "time"

// User is a seeded account. PasswordHash is a PHC Argon2id string; the
// cleartext password never touches the store or the wire.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatarUrl"`
}

// Listing is a bookable property.
type Listing struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	LocationID    int64    `json:"locationId"`
	Images        []string `json:"images"`
	PricePerNight int      `json:"pricePerNight"`
	MaxGuests     int      `json:"maxGuests"`
	Rating        float64  `json:"rating"`
}

// Location is a city a listing belongs to.
type Location struct {
	ID      int64  `json:"id"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Review is a guest review of a listing.
type Review struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listingId"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateListingInput is the payload for Store.CreateListing.
type CreateListingInput struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	LocationID    int64    `json:"locationId"`
	Images        []string `json:"images"`
	PricePerNight int      `json:"pricePerNight"`
	MaxGuests     int      `json:"maxGuests"`
}

// Filter narrows Store.Listings results. Zero values match everything.
type Filter struct {
	// Guests keeps listings whose MaxGuests is at least this value.
	Guests int
	// Search is a case-insensitive substring match on listing name,
	// description, and location city.
	Search string
}
