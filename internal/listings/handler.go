// Package listings serves the listings/locations/reviews read-mostly API.
// These handlers are thin lookups over the mock store; the interesting
// machinery (auth gate, session lifecycle) lives in internal/auth.
package listings

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	authapi "casavia/internal/auth/api"
	"casavia/internal/store"
)

// Handler serves listing routes. All of them sit behind the auth gate; the
// gate is applied at registration time in the app wiring.
type Handler struct {
	log   *slog.Logger
	store *store.Store
}

// NewHandler constructs a listings Handler.
func NewHandler(log *slog.Logger, st *store.Store) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, store: st}
}

// Register wires listing routes onto the mux, wrapped by the given gate.
func (h *Handler) Register(mux *http.ServeMux, gate func(http.Handler) http.Handler) {
	protect := func(fn http.HandlerFunc) http.Handler { return gate(fn) }

	mux.Handle("GET /api/listings", protect(h.handleList))
	mux.Handle("GET /api/listings/{id}", protect(h.handleGet))
	mux.Handle("POST /api/listings", protect(h.handleCreate))
	mux.Handle("GET /api/reviews", protect(h.handleReviews))
}

// listingResponse embeds the listing's location the way the browser UI
// consumes it.
type listingResponse struct {
	store.Listing
	Location store.Location `json:"location"`
}

func (h *Handler) withLocation(l store.Listing) (listingResponse, error) {
	loc, err := h.store.LocationByID(l.LocationID)
	if err != nil {
		return listingResponse{}, err
	}
	return listingResponse{Listing: l, Location: loc}, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter store.Filter
	filter.Search = q.Get("search")
	if v := q.Get("guests"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			authapi.WriteMessage(w, http.StatusBadRequest, "Invalid guests filter")
			return
		}
		filter.Guests = n
	}

	matched := h.store.Listings(filter)
	out := make([]listingResponse, 0, len(matched))
	for _, l := range matched {
		resp, err := h.withLocation(l)
		if err != nil {
			h.log.Error("listings.list.location_missing", "listing_id", l.ID, "location_id", l.LocationID)
			continue
		}
		out = append(out, resp)
	}

	authapi.WriteOK(w, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		authapi.WriteMessage(w, http.StatusNotFound, "Listing not found")
		return
	}

	l, err := h.store.ListingByID(id)
	if err != nil {
		authapi.WriteMessage(w, http.StatusNotFound, "Listing not found")
		return
	}
	resp, err := h.withLocation(l)
	if err != nil {
		authapi.WriteMessage(w, http.StatusNotFound, "Location not found")
		return
	}

	authapi.WriteOK(w, resp)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in store.CreateListingInput
	if err := authapi.DecodeJSON(w, r, 1<<20, &in); err != nil {
		authapi.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == "" || in.LocationID == 0 {
		authapi.WriteMessage(w, http.StatusBadRequest, "Name and locationId are required")
		return
	}
	if _, err := h.store.LocationByID(in.LocationID); errors.Is(err, store.ErrNotFound) {
		authapi.WriteMessage(w, http.StatusBadRequest, "Unknown locationId")
		return
	}

	created, err := h.store.CreateListing(in)
	if err != nil {
		h.log.Error("listings.create.fail", "err", err)
		authapi.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.Info("listings.created", "listing_id", created.ID)
	authapi.WriteOK(w, created)
}

func (h *Handler) handleReviews(w http.ResponseWriter, r *http.Request) {
	listingID, err := strconv.ParseInt(r.URL.Query().Get("listingId"), 10, 64)
	if err != nil || listingID <= 0 {
		authapi.WriteMessage(w, http.StatusBadRequest, "listingId is required")
		return
	}

	authapi.WriteOK(w, h.store.ReviewsByListingID(listingID))
}
