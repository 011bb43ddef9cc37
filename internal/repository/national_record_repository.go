package repository

import (
	"sort"
	"sync"

	"github.com/noah-isme/admission-api/internal/models"
)

// NationalRecordRepository is the registry of verified national records keyed
// by identification.
type NationalRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*models.NationalRecord
}

// NewNationalRecordRepository constructs an empty registry.
func NewNationalRecordRepository() *NationalRecordRepository {
	return &NationalRecordRepository{records: make(map[string]*models.NationalRecord)}
}

// Create registers a record. It fails with ErrDuplicate when the
// identification is already registered.
func (r *NationalRecordRepository) Create(record *models.NationalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.Identification]; exists {
		return ErrDuplicate
	}
	r.records[record.Identification] = cloneRecord(record)
	return nil
}

// FindByIdentification returns a copy of the record.
func (r *NationalRecordRepository) FindByIdentification(identification string) (*models.NationalRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[identification]
	if !ok {
		return nil, false
	}
	return cloneRecord(record), true
}

// Update applies fn to the stored record under the write lock. Changes are
// discarded when fn fails.
func (r *NationalRecordRepository) Update(identification string, fn func(*models.NationalRecord) error) (*models.NationalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.records[identification]
	if !ok {
		return nil, ErrRecordNotFound
	}
	working := cloneRecord(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	r.records[identification] = working
	return cloneRecord(working), nil
}

// List returns every record ordered by identification.
func (r *NationalRecordRepository) List() []models.NationalRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.NationalRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, *cloneRecord(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identification < out[j].Identification })
	return out
}
