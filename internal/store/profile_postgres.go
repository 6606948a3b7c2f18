// internal/store/profile_postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"college-fit-workers/internal/models"
)

const selectProfileSQL = `
	SELECT user_id, name, curriculum_board, percentage, gpa, gpa_scale,
	       subjects, exams, financial, target_countries, intended_major, intended_majors
	FROM user_academic_profiles
	WHERE user_id = $1`

// PostgresProfileStore reads profiles from user_academic_profiles. JSON
// columns go through the same key alias table as job payloads.
type PostgresProfileStore struct {
	db *sql.DB
}

func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

func (s *PostgresProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserAcademicProfile, error) {
	var (
		id, name, board, gpaScale, major sql.NullString
		percentage, gpa                  sql.NullFloat64
		subjects, exams, financial       models.RawJSON
		countries, majors                models.RawJSON
	)

	err := s.db.QueryRowContext(ctx, selectProfileSQL, userID).Scan(
		&id, &name, &board, &percentage, &gpa, &gpaScale,
		&subjects, &exams, &financial, &countries, &major, &majors,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile %s: %w", userID, err)
	}

	raw := map[string]interface{}{
		"user_id":          id.String,
		"name":             name.String,
		"curriculum_board": board.String,
		"gpa_scale":        gpaScale.String,
		"intended_major":   major.String,
	}
	if percentage.Valid {
		raw["percentage"] = percentage.Float64
	}
	if gpa.Valid {
		raw["gpa"] = gpa.Float64
	}
	putList(raw, "subjects", subjects)
	putObject(raw, "exams", exams)
	putObject(raw, "financial", financial)
	putList(raw, "target_countries", countries)
	putList(raw, "intended_majors", majors)

	profile, err := models.ProfileFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return profile, nil
}

// Malformed JSON columns read as absent.
func putList(raw map[string]interface{}, key string, col models.RawJSON) {
	var v []interface{}
	if col.Decode(&v) {
		raw[key] = v
	}
}

func putObject(raw map[string]interface{}, key string, col models.RawJSON) {
	var v map[string]interface{}
	if col.Decode(&v) {
		raw[key] = v
	}
}
