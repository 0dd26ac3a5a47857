package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "casavia.db.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return s
}

func TestOpen_MissingFileStartsFresh(t *testing.T) {
	t.Parallel()

	s, err := Open(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Ready() {
		t.Fatalf("fresh store must not be ready before seeding")
	}
}

func TestOpen_CorruptFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("Open must fail on a corrupt file")
	}
}

func TestSeed_PersistsAndReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "casavia.db.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !reloaded.Ready() {
		t.Fatalf("reloaded store must be seeded")
	}
	// Seeding an already-populated store must be a no-op: ids stay stable.
	if err := reloaded.Seed(); err != nil {
		t.Fatalf("re-Seed: %v", err)
	}
	u, err := reloaded.FindUserByID(1)
	if err != nil {
		t.Fatalf("FindUserByID: %v", err)
	}
	if u.Username != "amelia" {
		t.Fatalf("user 1 = %q, want amelia", u.Username)
	}
	if u.PasswordHash == "" || u.PasswordHash == "wanderlust22" {
		t.Fatalf("password must be stored hashed, got %q", u.PasswordHash)
	}
}

func TestFindUserByCredentials(t *testing.T) {
	t.Parallel()

	s := seededStore(t)

	if _, err := s.FindUserByCredentials("amelia", "wanderlust22"); err != nil {
		t.Fatalf("valid credentials: %v", err)
	}
	if _, err := s.FindUserByCredentials("amelia", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong password: got %v, want ErrNotFound", err)
	}
	// Username match is exact and case-sensitive.
	if _, err := s.FindUserByCredentials("Amelia", "wanderlust22"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("case-insensitive username must not match: %v", err)
	}
	if _, err := s.FindUserByCredentials("nobody", "wanderlust22"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown user: got %v, want ErrNotFound", err)
	}
}

func TestListings_Filters(t *testing.T) {
	t.Parallel()

	s := seededStore(t)

	all := s.Listings(Filter{})
	if len(all) != 5 {
		t.Fatalf("unfiltered listings = %d, want 5", len(all))
	}

	big := s.Listings(Filter{Guests: 5})
	for _, l := range big {
		if l.MaxGuests < 5 {
			t.Fatalf("guests filter leaked listing %d (max %d)", l.ID, l.MaxGuests)
		}
	}
	if len(big) != 2 {
		t.Fatalf("guests>=5 listings = %d, want 2", len(big))
	}

	// Search matches the location city, case-insensitively.
	lisbon := s.Listings(Filter{Search: "lisBON"})
	if len(lisbon) != 2 {
		t.Fatalf("lisbon listings = %d, want 2", len(lisbon))
	}
}

func TestCreateListing_AssignsNextIDAndPersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "casavia.db.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	created, err := s.CreateListing(CreateListingInput{
		Name:          "Harbor warehouse flat",
		Description:   "Converted warehouse by the fish market.",
		LocationID:    2,
		PricePerNight: 120,
		MaxGuests:     4,
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if created.ID != 6 {
		t.Fatalf("new id = %d, want 6", created.ID)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reloaded.ListingByID(6); err != nil {
		t.Fatalf("created listing must survive a reload: %v", err)
	}
}

func TestReviewsByListingID(t *testing.T) {
	t.Parallel()

	s := seededStore(t)

	reviews := s.ReviewsByListingID(1)
	if len(reviews) != 2 {
		t.Fatalf("reviews for listing 1 = %d, want 2", len(reviews))
	}
	if got := s.ReviewsByListingID(999); len(got) != 0 {
		t.Fatalf("unknown listing must have no reviews, got %d", len(got))
	}
}

func TestHashVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse", DefaultArgon2idParams())
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := VerifyPassword("correct horse", hash)
	if err != nil || !ok {
		t.Fatalf("verify match: ok=%v err=%v", ok, err)
	}
	ok, err = VerifyPassword("battery staple", hash)
	if err != nil || ok {
		t.Fatalf("verify mismatch: ok=%v err=%v", ok, err)
	}
	if _, err := VerifyPassword("x", "$argon2id$v=19$bogus"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("malformed hash: got %v, want ErrInvalidHash", err)
	}
}
