package database

import (
	"database/sql"
	"errors"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

// MentorRepository reads the mentor directory. The catalog itself is
// maintained by another service; this side only ever reads.
type MentorRepository struct {
	db DB
}

// NewMentorRepository creates a new MentorRepository
func NewMentorRepository(db DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// GetByID retrieves a mentor profile by ID. Returns nil, nil when absent.
func (r *MentorRepository) GetByID(id string) (*models.MentorProfile, error) {
	query := `
		SELECT id, name, title, hourly_rate, availability, created_at, updated_at
		FROM mentors
		WHERE id = $1
	`

	mentor := &models.MentorProfile{}
	err := r.db.QueryRow(query, id).Scan(
		&mentor.ID, &mentor.Name, &mentor.Title, &mentor.HourlyRate,
		&mentor.Availability, &mentor.CreatedAt, &mentor.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return mentor, nil
}
