package repository

import (
	"sort"
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// ApplicantRepository stores applicants indexed by id and identification.
type ApplicantRepository struct {
	mu               sync.RWMutex
	byID             map[int64]*models.Applicant
	byIdentification map[string]int64
}

// NewApplicantRepository constructs an empty store.
func NewApplicantRepository() *ApplicantRepository {
	return &ApplicantRepository{
		byID:             make(map[int64]*models.Applicant),
		byIdentification: make(map[string]int64),
	}
}

// Create stores an applicant, one per identification.
func (r *ApplicantRepository) Create(applicant *models.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byIdentification[applicant.Identification]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byID[applicant.ID]; exists {
		return ErrDuplicate
	}
	r.byID[applicant.ID] = cloneApplicant(applicant)
	r.byIdentification[applicant.Identification] = applicant.ID
	return nil
}

// FindByID returns a copy of the applicant.
func (r *ApplicantRepository) FindByID(id int64) (*models.Applicant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	applicant, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return cloneApplicant(applicant), true
}

// FindByIdentification resolves the applicant of a national id.
func (r *ApplicantRepository) FindByIdentification(identification string) (*models.Applicant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byIdentification[identification]
	if !ok {
		return nil, false
	}
	return cloneApplicant(r.byID[id]), true
}

// Update applies fn under the write lock. Identification cannot change.
func (r *ApplicantRepository) Update(id int64, fn func(*models.Applicant) error) (*models.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	working := cloneApplicant(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Identification = current.Identification
	r.byID[id] = working
	return cloneApplicant(working), nil
}

// List returns applicants ordered by id.
func (r *ApplicantRepository) List() []models.Applicant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Applicant, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, *cloneApplicant(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
