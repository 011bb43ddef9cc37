package repository

import (
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// ProfileRepository keeps the affirmative action profile of each applicant.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[int64]*models.AffirmativeProfile
}

// NewProfileRepository constructs an empty store.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[int64]*models.AffirmativeProfile)}
}

// FindByApplicant returns a copy of the applicant's profile.
func (r *ProfileRepository) FindByApplicant(applicantID int64) (*models.AffirmativeProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[applicantID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Upsert applies fn to the applicant's profile, creating it with create when
// absent.
func (r *ProfileRepository) Upsert(applicantID int64, create func() *models.AffirmativeProfile, fn func(*models.AffirmativeProfile) error) (*models.AffirmativeProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var working *models.AffirmativeProfile
	if current, ok := r.profiles[applicantID]; ok {
		working = current.Clone()
	} else {
		working = create()
	}
	if err := fn(working); err != nil {
		return nil, err
	}
	r.profiles[applicantID] = working
	return working.Clone(), nil
}
