package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/careercompass/mentor-booking-backend/internal/booking"
	"github.com/careercompass/mentor-booking-backend/internal/database"
)

// MentorHandler serves mentor directory reads and resolved availability
type MentorHandler struct {
	mentorRepo *database.MentorRepository
	logger     *logrus.Logger
}

// NewMentorHandler creates a new MentorHandler
func NewMentorHandler(mentorRepo *database.MentorRepository, logger *logrus.Logger) *MentorHandler {
	return &MentorHandler{mentorRepo: mentorRepo, logger: logger}
}

// GetMentor returns a mentor profile
// GET /api/v1/mentors/:id
func (h *MentorHandler) GetMentor(c *gin.Context) {
	mentor, err := h.mentorRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load mentor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load mentor"})
		return
	}
	if mentor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mentor not found"})
		return
	}

	c.JSON(http.StatusOK, mentor)
}

// GetAvailability returns the bookable slots for a mentor on a date
// GET /api/v1/mentors/:id/availability?date=YYYY-MM-DD
func (h *MentorHandler) GetAvailability(c *gin.Context) {
	dateStr := c.Query("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	mentor, err := h.mentorRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load mentor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load mentor"})
		return
	}
	if mentor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mentor not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mentor_id": mentor.ID,
		"date":      dateStr,
		"slots":     booking.SlotsFor(mentor, date),
	})
}
