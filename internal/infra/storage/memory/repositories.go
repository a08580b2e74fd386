package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
)

// RoomCatalog is an in-memory room store for demos and tests.
type RoomCatalog struct {
	mu    sync.RWMutex
	items map[domainroom.RoomID]*domainroom.Room
}

// NewRoomCatalog builds an empty catalog.
func NewRoomCatalog() *RoomCatalog {
	return &RoomCatalog{items: make(map[domainroom.RoomID]*domainroom.Room)}
}

// ByID returns a copy of the room or room.ErrNotFound.
func (c *RoomCatalog) ByID(ctx context.Context, id domainroom.RoomID) (*domainroom.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.items[id]
	if !ok {
		return nil, domainroom.ErrNotFound
	}
	clone := *r
	return &clone, nil
}

// Save stores/updates a room entry.
func (c *RoomCatalog) Save(ctx context.Context, r *domainroom.Room) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *r
	c.items[r.ID] = &clone
	return nil
}

// List returns every room ordered by number.
func (c *RoomCatalog) List(ctx context.Context) ([]*domainroom.Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*domainroom.Room, 0, len(c.items))
	for _, r := range c.items {
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ReservationRepository stores reservations in memory. Save bumps the
// version, mirroring the optimistic write the durable store performs.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservation.ReservationID]*domainreservation.Reservation
}

// NewReservationRepository builds an empty repository.
func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainreservation.ReservationID]*domainreservation.Reservation)}
}

// ByID fetches a reservation or reservation.ErrNotFound.
func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resv, ok := r.items[id]
	if !ok {
		return nil, domainreservation.ErrNotFound
	}
	return cloneReservation(resv), nil
}

// Save stores the current reservation state.
func (r *ReservationRepository) Save(ctx context.Context, resv *domainreservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resv.Version++
	r.items[resv.ID] = cloneReservation(resv)
	return nil
}

// ListByGuest returns a guest's reservations, newest booking first.
func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID domainguest.GuestID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, resv := range r.items {
		if resv.GuestID == guestID {
			matches = append(matches, cloneReservation(resv))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// OverlappingForRoom returns reservations of any status whose interval
// overlaps the stay under the half-open predicate.
func (r *ReservationRepository) OverlappingForRoom(ctx context.Context, roomID domainroom.RoomID, stay domainrange.DateRange) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, resv := range r.items {
		if resv.RoomID != roomID {
			continue
		}
		if resv.Range.Overlaps(stay) {
			matches = append(matches, cloneReservation(resv))
		}
	}
	return matches, nil
}

// ActiveForRoom returns the room's blocking reservations.
func (r *ReservationRepository) ActiveForRoom(ctx context.Context, roomID domainroom.RoomID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreservation.Reservation, 0)
	for _, resv := range r.items {
		if resv.RoomID != roomID || !resv.Status.Blocks() {
			continue
		}
		matches = append(matches, cloneReservation(resv))
	}
	return matches, nil
}

// ConfirmedArrivingBefore returns Confirmed reservations whose check-in day
// is strictly before the given day.
func (r *ReservationRepository) ConfirmedArrivingBefore(ctx context.Context, day time.Time) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := domainrange.Day(day)
	matches := make([]*domainreservation.Reservation, 0)
	for _, resv := range r.items {
		if resv.Status != domainreservation.StatusConfirmed {
			continue
		}
		if resv.Range.CheckIn.Before(cutoff) {
			matches = append(matches, cloneReservation(resv))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Range.CheckIn.Before(matches[j].Range.CheckIn)
	})
	return matches, nil
}

func cloneReservation(resv *domainreservation.Reservation) *domainreservation.Reservation {
	clone := *resv
	clone.Amenities = make([]domainreservation.AmenityLine, len(resv.Amenities))
	copy(clone.Amenities, resv.Amenities)
	return &clone
}

// GuestDirectory keeps guest records in memory.
type GuestDirectory struct {
	mu    sync.RWMutex
	items map[domainguest.GuestID]*domainguest.Guest
}

// NewGuestDirectory builds an empty directory.
func NewGuestDirectory() *GuestDirectory {
	return &GuestDirectory{items: make(map[domainguest.GuestID]*domainguest.Guest)}
}

// ByID fetches a guest or guest.ErrNotFound.
func (d *GuestDirectory) ByID(ctx context.Context, id domainguest.GuestID) (*domainguest.Guest, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.items[id]
	if !ok {
		return nil, domainguest.ErrNotFound
	}
	clone := *g
	return &clone, nil
}

// Save stores/updates a guest entry.
func (d *GuestDirectory) Save(ctx context.Context, g *domainguest.Guest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := *g
	d.items[g.ID] = &clone
	return nil
}

// AmenityCatalog keeps the amenity price list in memory.
type AmenityCatalog struct {
	mu    sync.RWMutex
	items map[domainamenity.AmenityID]*domainamenity.Amenity
}

// NewAmenityCatalog builds an empty catalog.
func NewAmenityCatalog() *AmenityCatalog {
	return &AmenityCatalog{items: make(map[domainamenity.AmenityID]*domainamenity.Amenity)}
}

// ByID fetches an amenity or amenity.ErrNotFound.
func (c *AmenityCatalog) ByID(ctx context.Context, id domainamenity.AmenityID) (*domainamenity.Amenity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.items[id]
	if !ok {
		return nil, domainamenity.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

// Save stores/updates an amenity entry.
func (c *AmenityCatalog) Save(ctx context.Context, a *domainamenity.Amenity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *a
	c.items[a.ID] = &clone
	return nil
}

// PromotionCatalog keeps promotion records in memory.
type PromotionCatalog struct {
	mu    sync.RWMutex
	items map[domainpromotion.PromotionID]*domainpromotion.Promotion
}

// NewPromotionCatalog builds an empty catalog.
func NewPromotionCatalog() *PromotionCatalog {
	return &PromotionCatalog{items: make(map[domainpromotion.PromotionID]*domainpromotion.Promotion)}
}

// ApplicableForRange returns promotions whose validity window covers the
// check-in date; kind predicates are evaluated by the caller.
func (c *PromotionCatalog) ApplicableForRange(ctx context.Context, stay domainrange.DateRange) ([]*domainpromotion.Promotion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	matches := make([]*domainpromotion.Promotion, 0)
	for _, p := range c.items {
		if !p.InWindow(stay.CheckIn) {
			continue
		}
		clone := *p
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

// Save stores/updates a promotion entry.
func (c *PromotionCatalog) Save(ctx context.Context, p *domainpromotion.Promotion) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *p
	c.items[p.ID] = &clone
	return nil
}
