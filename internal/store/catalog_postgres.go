// internal/store/catalog_postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"college-fit-workers/internal/models"
)

const collegeColumns = `id, name, country, location, acceptance_rate,
	       programs, requirements, research_data, cost_data, trust_tier, financial_aid_available`

// PostgresCatalog reads the seeded, read-only colleges table.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) ListColleges(ctx context.Context) ([]models.CollegeRecord, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+collegeColumns+` FROM colleges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query colleges: %w", err)
	}
	defer rows.Close()

	var out []models.CollegeRecord
	for rows.Next() {
		college, err := scanCollege(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *college)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colleges: %w", err)
	}
	return out, nil
}

func (c *PostgresCatalog) GetCollege(ctx context.Context, id int64) (*models.CollegeRecord, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+collegeColumns+` FROM colleges WHERE id = $1`, id)
	college, err := scanCollege(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCollegeNotFound
	}
	return college, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCollege(row rowScanner) (*models.CollegeRecord, error) {
	var (
		c                 models.CollegeRecord
		country, location sql.NullString
		trustTier         sql.NullString
		acceptanceRate    sql.NullFloat64
		financialAid      sql.NullBool
	)

	err := row.Scan(
		&c.ID, &c.Name, &country, &location, &acceptanceRate,
		&c.Programs, &c.Requirements, &c.ResearchData, &c.CostData, &trustTier, &financialAid,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan college: %w", err)
	}

	c.Country = country.String
	c.Location = location.String
	c.TrustTier = trustTier.String
	c.FinancialAidAvailable = financialAid.Bool
	if acceptanceRate.Valid {
		rate := acceptanceRate.Float64
		c.AcceptanceRate = &rate
	}
	return &c, nil
}
