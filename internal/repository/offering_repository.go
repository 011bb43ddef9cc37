package repository

import (
	"sort"
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// OfferingRepository holds the live seat ledgers. Offerings guard their own
// counters, so the store hands out the shared pointer.
type OfferingRepository struct {
	mu        sync.RWMutex
	offerings map[models.OfferingKey]*models.ProgramOffering
}

// NewOfferingRepository constructs an empty store.
func NewOfferingRepository() *OfferingRepository {
	return &OfferingRepository{offerings: make(map[models.OfferingKey]*models.ProgramOffering)}
}

// Create stores a new offering; a (program, site) pair exists at most once.
func (r *OfferingRepository) Create(offering *models.ProgramOffering) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := offering.Key()
	if _, exists := r.offerings[key]; exists {
		return ErrDuplicate
	}
	r.offerings[key] = offering
	return nil
}

// Find returns the ledger of a (program, site) pair.
func (r *OfferingRepository) Find(key models.OfferingKey) (*models.ProgramOffering, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	offering, ok := r.offerings[key]
	return offering, ok
}

// Count returns the number of stored offerings.
func (r *OfferingRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.offerings)
}

// List returns every offering ordered by program then site.
func (r *OfferingRepository) List() []*models.ProgramOffering {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.ProgramOffering, 0, len(r.offerings))
	for _, o := range r.offerings {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.ProgramID != b.ProgramID {
			return a.ProgramID < b.ProgramID
		}
		return a.SiteID < b.SiteID
	})
	return out
}
