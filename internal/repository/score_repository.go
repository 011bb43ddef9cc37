package repository

import (
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// ScoreRepository keeps one final score per applicant.
type ScoreRepository struct {
	mu     sync.RWMutex
	scores map[int64]*models.FinalScore
}

// NewScoreRepository constructs an empty store.
func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{scores: make(map[int64]*models.FinalScore)}
}

// Create stores the applicant's score, failing with ErrDuplicate on a second one.
func (r *ScoreRepository) Create(score *models.FinalScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.scores[score.ApplicantID]; exists {
		return ErrDuplicate
	}
	c := *score
	r.scores[score.ApplicantID] = &c
	return nil
}

// FindByApplicant returns a copy of the applicant's score.
func (r *ScoreRepository) FindByApplicant(applicantID int64) (*models.FinalScore, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scores[applicantID]
	if !ok {
		return nil, false
	}
	c := *s
	return &c, true
}

// Update applies fn to the stored score under the write lock.
func (r *ScoreRepository) Update(applicantID int64, fn func(*models.FinalScore) error) (*models.FinalScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.scores[applicantID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	working := *current
	if err := fn(&working); err != nil {
		return nil, err
	}
	r.scores[applicantID] = &working
	out := working
	return &out, nil
}
