// Package store is the in-process mock database behind the casavia API.
//
// All tables live in memory and are mirrored to a single JSON file: loaded
// once at startup, rewritten after every table write. The store is passed to
// handlers as an explicit dependency; there are no package-level globals.
//
// Writes are not synchronized. The store is a single-process demo artifact,
// not a production database, and concurrent writers are a documented non-goal.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned by lookups that miss.
var ErrNotFound = errors.New("not found")

type tables struct {
	Users     []User     `json:"users"`
	Listings  []Listing  `json:"listings"`
	Locations []Location `json:"locations"`
	Reviews   []Review   `json:"reviews"`
}

// Store holds the mock database and its backing file path.
type Store struct {
	path string
	data tables
}

// Open loads the database file at path, or starts fresh when the file does
// not exist yet. A corrupt file is an error: silently discarding data would
// hide real bugs.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	return s, nil
}

// Ready reports whether the store has been seeded.
func (s *Store) Ready() bool {
	return s != nil && len(s.data.Users) > 0
}

func (s *Store) save() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}

// FindUserByID returns the user with the given id.
func (s *Store) FindUserByID(id int64) (User, error) {
	for _, u := range s.data.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// FindUserByCredentials resolves a username/password pair to a user.
// The username match is exact and case-sensitive; the password is verified
// against the stored Argon2id hash.
func (s *Store) FindUserByCredentials(username, password string) (User, error) {
	for _, u := range s.data.Users {
		if u.Username != username {
			continue
		}
		ok, err := VerifyPassword(password, u.PasswordHash)
		if err != nil || !ok {
			return User{}, ErrNotFound
		}
		return u, nil
	}
	return User{}, ErrNotFound
}

// Listings returns all listings matching the filter.
func (s *Store) Listings(f Filter) []Listing {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Listing, 0, len(s.data.Listings))
	for _, l := range s.data.Listings {
		if f.Guests > 0 && l.MaxGuests < f.Guests {
			continue
		}
		if search != "" && !s.matchesSearch(l, search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (s *Store) matchesSearch(l Listing, search string) bool {
	if strings.Contains(strings.ToLower(l.Name), search) {
		return true
	}
	if strings.Contains(strings.ToLower(l.Description), search) {
		return true
	}
	if loc, err := s.LocationByID(l.LocationID); err == nil {
		return strings.Contains(strings.ToLower(loc.City), search)
	}
	return false
}

// ListingByID returns the listing with the given id.
func (s *Store) ListingByID(id int64) (Listing, error) {
	for _, l := range s.data.Listings {
		if l.ID == id {
			return l, nil
		}
	}
	return Listing{}, ErrNotFound
}

// CreateListing appends a new listing with the next numeric id and persists
// the table.
func (s *Store) CreateListing(in CreateListingInput) (Listing, error) {
	var maxID int64
	for _, l := range s.data.Listings {
		if l.ID > maxID {
			maxID = l.ID
		}
	}

	l := Listing{
		ID:            maxID + 1,
		Name:          in.Name,
		Description:   in.Description,
		LocationID:    in.LocationID,
		Images:        in.Images,
		PricePerNight: in.PricePerNight,
		MaxGuests:     in.MaxGuests,
	}
	s.data.Listings = append(s.data.Listings, l)

	if err := s.save(); err != nil {
		return Listing{}, err
	}
	return l, nil
}

// LocationByID returns the location with the given id.
func (s *Store) LocationByID(id int64) (Location, error) {
	for _, loc := range s.data.Locations {
		if loc.ID == id {
			return loc, nil
		}
	}
	return Location{}, ErrNotFound
}

// ReviewsByListingID returns all reviews for a listing.
func (s *Store) ReviewsByListingID(listingID int64) []Review {
	out := make([]Review, 0, 4)
	for _, r := range s.data.Reviews {
		if r.ListingID == listingID {
			out = append(out, r)
		}
	}
	return out
}
