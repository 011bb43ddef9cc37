package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/admission-api/internal/models"
)

const catalogColumns = `program_id, program_name, site_id, site_name, level, mode, shift, offer_id, quota_id,
period, leveling_seats, first_semester_seats, quota_seats, quota_type, focalized`

// OfferingCatalogRepository reads the national offer catalog from Postgres.
type OfferingCatalogRepository struct {
	db *sqlx.DB
}

// NewOfferingCatalogRepository constructs the repository.
func NewOfferingCatalogRepository(db *sqlx.DB) *OfferingCatalogRepository {
	return &OfferingCatalogRepository{db: db}
}

// ListByPeriod returns the catalog rows of an admission period.
func (r *OfferingCatalogRepository) ListByPeriod(ctx context.Context, period string) ([]models.CatalogOffering, error) {
	query := fmt.Sprintf(`SELECT %s FROM offering_catalog WHERE period = $1 ORDER BY program_id ASC, site_id ASC`, catalogColumns)
	var rows []models.CatalogOffering
	if err := r.db.SelectContext(ctx, &rows, query, period); err != nil {
		return nil, fmt.Errorf("list offering catalog: %w", err)
	}
	return rows, nil
}

// Get fetches the catalog row of a (program, site) pair.
func (r *OfferingCatalogRepository) Get(ctx context.Context, period string, key models.OfferingKey) (*models.CatalogOffering, error) {
	query := fmt.Sprintf(`SELECT %s FROM offering_catalog WHERE period = $1 AND program_id = $2 AND site_id = $3`, catalogColumns)
	var row models.CatalogOffering
	if err := r.db.GetContext(ctx, &row, query, period, key.ProgramID, key.SiteID); err != nil {
		return nil, err
	}
	return &row, nil
}
