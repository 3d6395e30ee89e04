package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercompass/mentor-booking-backend/internal/database"
)

func setupMentorTest(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewMentorHandler(database.NewMentorRepository(db), logger)

	router := gin.New()
	router.GET("/mentors/:id", handler.GetMentor)
	router.GET("/mentors/:id/availability", handler.GetAvailability)

	return router, mock
}

func mentorRows(date time.Time, slots string) *sqlmock.Rows {
	now := time.Now()
	availability := fmt.Sprintf(`{"%s": %s}`, date.Weekday(), slots)
	return sqlmock.NewRows([]string{
		"id", "name", "title", "hourly_rate", "availability", "created_at", "updated_at",
	}).AddRow("mentor-1", "Amara Silva", "Senior Product Designer", 2500.0, []byte(availability), now, now)
}

func TestGetMentor(t *testing.T) {
	router, mock := setupMentorTest(t)
	mock.ExpectQuery("SELECT (.+) FROM mentors").
		WillReturnRows(mentorRows(time.Now(), `["09:00"]`))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mentors/mentor-1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Amara Silva")
}

func TestGetMentor_NotFound(t *testing.T) {
	router, mock := setupMentorTest(t)
	mock.ExpectQuery("SELECT (.+) FROM mentors").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "title", "hourly_rate", "availability", "created_at", "updated_at",
		}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mentors/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAvailability(t *testing.T) {
	router, mock := setupMentorTest(t)

	date := time.Now().AddDate(0, 0, 7)
	mock.ExpectQuery("SELECT (.+) FROM mentors").
		WillReturnRows(mentorRows(date, `["09:00", "10:00", "15:30"]`))

	w := httptest.NewRecorder()
	url := "/mentors/mentor-1/availability?date=" + date.Format("2006-01-02")
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		MentorID string   `json:"mentor_id"`
		Slots    []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mentor-1", resp.MentorID)
	assert.Equal(t, []string{"09:00", "10:00", "15:30"}, resp.Slots)
}

func TestGetAvailability_PastDateIsEmpty(t *testing.T) {
	router, mock := setupMentorTest(t)

	date := time.Now().AddDate(0, 0, -7)
	mock.ExpectQuery("SELECT (.+) FROM mentors").
		WillReturnRows(mentorRows(date, `["09:00"]`))

	w := httptest.NewRecorder()
	url := "/mentors/mentor-1/availability?date=" + date.Format("2006-01-02")
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Slots []string `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Slots)
}

func TestGetAvailability_BadDate(t *testing.T) {
	router, _ := setupMentorTest(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mentors/mentor-1/availability?date=tomorrow", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
