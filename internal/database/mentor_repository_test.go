package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMentorRepo(t *testing.T) (*MentorRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewMentorRepository(&PostgresDB{DB: sqlxDB})

	return repo, mock, func() { sqlxDB.Close() }
}

func TestMentorGetByID(t *testing.T) {
	repo, mock, closeFn := newMockMentorRepo(t)
	defer closeFn()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "title", "hourly_rate", "availability", "created_at", "updated_at",
	}).AddRow(
		"mentor-1", "Amara Silva", "Senior Product Designer", 2500.0,
		[]byte(`{"Monday": ["09:00", "10:00"], "Thursday": ["15:30"]}`),
		now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM mentors").
		WithArgs("mentor-1").
		WillReturnRows(rows)

	mentor, err := repo.GetByID("mentor-1")

	require.NoError(t, err)
	require.NotNil(t, mentor)
	assert.Equal(t, "Amara Silva", mentor.Name)
	assert.False(t, mentor.IsFree())
	assert.Equal(t, []string{"09:00", "10:00"}, mentor.Availability["Monday"])
}

func TestMentorGetByID_NotFound(t *testing.T) {
	repo, mock, closeFn := newMockMentorRepo(t)
	defer closeFn()

	mock.ExpectQuery("SELECT (.+) FROM mentors").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "title", "hourly_rate", "availability", "created_at", "updated_at",
		}))

	mentor, err := repo.GetByID("ghost")

	require.NoError(t, err)
	assert.Nil(t, mentor)
}
