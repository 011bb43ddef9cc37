package repository

import (
	"sort"
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// AssignmentRepository stores seat assignments.
type AssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[int64]*models.SeatAssignment
}

// NewAssignmentRepository constructs an empty store.
func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{assignments: make(map[int64]*models.SeatAssignment)}
}

// CreateIfNoOpen stores the assignment unless the applicant already holds an
// open one, in which case the open assignment is returned with ErrDuplicate.
func (r *AssignmentRepository) CreateIfNoOpen(assignment *models.SeatAssignment) (*models.SeatAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments {
		if existing.ApplicantID == assignment.ApplicantID && existing.IsOpen() {
			return cloneAssignment(existing), ErrDuplicate
		}
	}
	if _, exists := r.assignments[assignment.ID]; exists {
		return nil, ErrDuplicate
	}
	r.assignments[assignment.ID] = cloneAssignment(assignment)
	return nil, nil
}

// FindByID returns a copy of the assignment.
func (r *AssignmentRepository) FindByID(id int64) (*models.SeatAssignment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assignments[id]
	if !ok {
		return nil, false
	}
	return cloneAssignment(a), true
}

// FindOpenByApplicant returns the applicant's PENDING or CONFIRMED assignment.
func (r *AssignmentRepository) FindOpenByApplicant(applicantID int64) (*models.SeatAssignment, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.assignments {
		if a.ApplicantID == applicantID && a.IsOpen() {
			return cloneAssignment(a), true
		}
	}
	return nil, false
}

// ListByIdentification returns every assignment of a national id, newest first.
func (r *AssignmentRepository) ListByIdentification(identification string) []models.SeatAssignment {
	return r.filter(func(a *models.SeatAssignment) bool { return a.Identification == identification })
}

// ListByOffering returns the assignments of a (program, site) pair.
func (r *AssignmentRepository) ListByOffering(key models.OfferingKey) []models.SeatAssignment {
	return r.filter(func(a *models.SeatAssignment) bool { return a.OfferingKey() == key })
}

// Update applies fn under the write lock.
func (r *AssignmentRepository) Update(id int64, fn func(*models.SeatAssignment) error) (*models.SeatAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.assignments[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	working := cloneAssignment(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.assignments[id] = working
	return cloneAssignment(working), nil
}

// CountByState tallies assignments per state.
func (r *AssignmentRepository) CountByState() map[models.AssignmentState]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[models.AssignmentState]int)
	for _, a := range r.assignments {
		out[a.State]++
	}
	return out
}

func (r *AssignmentRepository) filter(match func(*models.SeatAssignment) bool) []models.SeatAssignment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.SeatAssignment, 0)
	for _, a := range r.assignments {
		if match(a) {
			out = append(out, *cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
