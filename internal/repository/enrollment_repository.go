package repository

import (
	"sort"
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// EnrollmentRepository stores enrollments together with their exams. Both are
// written in the same critical section so an enrollment is never visible
// without its exam.
type EnrollmentRepository struct {
	mu          sync.RWMutex
	enrollments map[int64]*models.Enrollment
	examIndex   map[int64]int64
}

// NewEnrollmentRepository constructs an empty store.
func NewEnrollmentRepository() *EnrollmentRepository {
	return &EnrollmentRepository{
		enrollments: make(map[int64]*models.Enrollment),
		examIndex:   make(map[int64]int64),
	}
}

// CreateGuarded inserts the enrollment built by build once guard accepts the
// applicant's existing enrollments. Guard and insert share the write lock.
func (r *EnrollmentRepository) CreateGuarded(applicantID int64, guard func(existing []models.Enrollment) error, build func() (*models.Enrollment, error)) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make([]models.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.ApplicantID == applicantID {
			existing = append(existing, *cloneEnrollment(e))
		}
	}
	if guard != nil {
		if err := guard(existing); err != nil {
			return nil, err
		}
	}
	enrollment, err := build()
	if err != nil {
		return nil, err
	}
	if _, exists := r.enrollments[enrollment.ID]; exists {
		return nil, ErrDuplicate
	}
	stored := cloneEnrollment(enrollment)
	r.enrollments[stored.ID] = stored
	if stored.Exam != nil {
		r.examIndex[stored.Exam.ID] = stored.ID
	}
	return cloneEnrollment(stored), nil
}

// Create inserts an enrollment without any guard.
func (r *EnrollmentRepository) Create(enrollment *models.Enrollment) error {
	_, err := r.CreateGuarded(enrollment.ApplicantID, nil, func() (*models.Enrollment, error) {
		return enrollment, nil
	})
	return err
}

// FindByID returns a copy of the enrollment and its exam.
func (r *EnrollmentRepository) FindByID(id int64) (*models.Enrollment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, false
	}
	return cloneEnrollment(e), true
}

// FindByExamID returns the enrollment owning an exam.
func (r *EnrollmentRepository) FindByExamID(examID int64) (*models.Enrollment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.examIndex[examID]
	if !ok {
		return nil, false
	}
	return cloneEnrollment(r.enrollments[id]), true
}

// ListByIdentification returns the enrollments of a national id ordered by rank.
func (r *EnrollmentRepository) ListByIdentification(identification string) []models.Enrollment {
	return r.filter(func(e *models.Enrollment) bool { return e.Identification == identification })
}

// ListByApplicant returns the enrollments of an applicant ordered by rank.
func (r *EnrollmentRepository) ListByApplicant(applicantID int64) []models.Enrollment {
	return r.filter(func(e *models.Enrollment) bool { return e.ApplicantID == applicantID })
}

// ListByOffering returns the enrollments targeting a (program, site) pair.
func (r *EnrollmentRepository) ListByOffering(key models.OfferingKey) []models.Enrollment {
	return r.filter(func(e *models.Enrollment) bool {
		return e.ProgramID == key.ProgramID && e.SiteID == key.SiteID
	})
}

// Update applies fn to the stored enrollment under the write lock.
func (r *EnrollmentRepository) Update(id int64, fn func(*models.Enrollment) error) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.enrollments[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	working := cloneEnrollment(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.enrollments[id] = working
	return cloneEnrollment(working), nil
}

// UpdateExam applies fn to an exam through its enrollment.
func (r *EnrollmentRepository) UpdateExam(examID int64, fn func(*models.Exam) error) (*models.Exam, error) {
	return r.updateExam(examID, func(e *models.Enrollment) error {
		if e.Exam == nil {
			return ErrRecordNotFound
		}
		return fn(e.Exam)
	})
}

// UpdateActiveExam applies fn to an exam whose enrollment is still active.
func (r *EnrollmentRepository) UpdateActiveExam(examID int64, fn func(*models.Exam) error) (*models.Exam, error) {
	return r.updateExam(examID, func(e *models.Enrollment) error { return e.ChangeExam(fn) })
}

func (r *EnrollmentRepository) updateExam(examID int64, fn func(*models.Enrollment) error) (*models.Exam, error) {
	r.mu.RLock()
	id, ok := r.examIndex[examID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrRecordNotFound
	}
	updated, err := r.Update(id, fn)
	if err != nil {
		return nil, err
	}
	return updated.Exam, nil
}

func (r *EnrollmentRepository) filter(match func(*models.Enrollment) bool) []models.Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Enrollment, 0)
	for _, e := range r.enrollments {
		if match(e) {
			out = append(out, *cloneEnrollment(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID < out[j].ID
	})
	return out
}
