package store

import (
	"fmt"
	"time"
)

// Demo accounts created by Seed. The cleartext values exist only here; the
// store keeps Argon2id hashes.
var seedCredentials = []struct {
	username string
	password string
	name     string
	avatar   string
}{
	{"amelia", "wanderlust22", "Amelia Wright", "https://i.pravatar.cc/150?img=47"},
	{"jakob", "fjordside", "Jakob Nilsen", "https://i.pravatar.cc/150?img=12"},
	{"sofia", "oldtownloft", "Sofia Marchetti", "https://i.pravatar.cc/150?img=32"},
}

// Seed populates all tables with demo data and persists the file. It is a
// no-op when users already exist, so restarts keep prior writes.
func (s *Store) Seed() error {
	if len(s.data.Users) > 0 {
		return nil
	}

	params := DefaultArgon2idParams()
	for i, c := range seedCredentials {
		hash, err := HashPassword(c.password, params)
		if err != nil {
			return fmt.Errorf("store: seed user %q: %w", c.username, err)
		}
		s.data.Users = append(s.data.Users, User{
			ID:           int64(i + 1),
			Username:     c.username,
			PasswordHash: hash,
			Name:         c.name,
			AvatarURL:    c.avatar,
		})
	}

	s.data.Locations = []Location{
		{ID: 1, City: "Lisbon", Country: "Portugal"},
		{ID: 2, City: "Bergen", Country: "Norway"},
		{ID: 3, City: "Florence", Country: "Italy"},
		{ID: 4, City: "Kyoto", Country: "Japan"},
	}

	s.data.Listings = []Listing{
		{
			ID:            1,
			Name:          "Alfama rooftop apartment",
			Description:   "Sunny two-bedroom flat above the old town with a terrace over the Tagus.",
			LocationID:    1,
			Images:        []string{"/images/listings/alfama-1.jpg", "/images/listings/alfama-2.jpg"},
			PricePerNight: 110,
			MaxGuests:     4,
			Rating:        4.8,
		},
		{
			ID:            2,
			Name:          "Fjordside cabin",
			Description:   "Timber cabin on the water, forty minutes from Bergen. Rowboat included.",
			LocationID:    2,
			Images:        []string{"/images/listings/fjord-1.jpg"},
			PricePerNight: 145,
			MaxGuests:     6,
			Rating:        4.9,
		},
		{
			ID:            3,
			Name:          "Oltrarno artist studio",
			Description:   "Compact studio across the river from the Uffizi, quiet courtyard.",
			LocationID:    3,
			Images:        []string{"/images/listings/oltrarno-1.jpg", "/images/listings/oltrarno-2.jpg"},
			PricePerNight: 85,
			MaxGuests:     2,
			Rating:        4.6,
		},
		{
			ID:            4,
			Name:          "Machiya townhouse",
			Description:   "Restored wooden townhouse near Nishiki market with a small moss garden.",
			LocationID:    4,
			Images:        []string{"/images/listings/machiya-1.jpg"},
			PricePerNight: 190,
			MaxGuests:     5,
			Rating:        4.7,
		},
		{
			ID:            5,
			Name:          "Belém riverside loft",
			Description:   "Bright loft by the marina, ten minutes on the tram from the center.",
			LocationID:    1,
			Images:        []string{"/images/listings/belem-1.jpg"},
			PricePerNight: 95,
			MaxGuests:     3,
			Rating:        4.4,
		},
	}

	s.data.Reviews = []Review{
		{ID: 1, ListingID: 1, UserID: 2, Rating: 5, Comment: "The terrace view alone is worth it.", CreatedAt: date(2025, 3, 14)},
		{ID: 2, ListingID: 1, UserID: 3, Rating: 4, Comment: "Steep stairs, great location.", CreatedAt: date(2025, 5, 2)},
		{ID: 3, ListingID: 2, UserID: 1, Rating: 5, Comment: "Woke up to seals outside the window.", CreatedAt: date(2025, 2, 21)},
		{ID: 4, ListingID: 3, UserID: 2, Rating: 5, Comment: "Perfect for two, the courtyard is silent at night.", CreatedAt: date(2025, 6, 9)},
		{ID: 5, ListingID: 4, UserID: 1, Rating: 4, Comment: "Beautiful house, book the tea ceremony next door.", CreatedAt: date(2025, 4, 1)},
	}

	return s.save()
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
