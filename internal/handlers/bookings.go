package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"carrent/internal/models"
	"carrent/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	CarName    string `json:"carName" binding:"required"`
	Days       int    `json:"days" binding:"required,min=1,max=365"`
	RentPerDay int    `json:"rentPerDay" binding:"required,min=1,max=2000"`
}

// UpdateBookingInput is the full set of client-mutable fields.
// Anything else in the body is rejected, not dropped.
type UpdateBookingInput struct {
	CarName    *string               `json:"carName"`
	Days       *int                  `json:"days"`
	RentPerDay *int                  `json:"rentPerDay"`
	Status     *models.BookingStatus `json:"status"`
}

// validate checks the present fields. Pointer semantics matter here:
// nil means "leave alone", a pointer to a zero value is out of range.
func (in *UpdateBookingInput) validate() []gin.H {
	var issues []gin.H
	if in.CarName != nil && strings.TrimSpace(*in.CarName) == "" {
		issues = append(issues, gin.H{"field": "carName", "message": "must not be empty"})
	}
	if in.Days != nil && (*in.Days < 1 || *in.Days > 365) {
		issues = append(issues, gin.H{"field": "days", "message": "must be between 1 and 365"})
	}
	if in.RentPerDay != nil && (*in.RentPerDay < 1 || *in.RentPerDay > 2000) {
		issues = append(issues, gin.H{"field": "rentPerDay", "message": "must be between 1 and 2000"})
	}
	if in.Status != nil {
		switch *in.Status {
		case models.BookingStatusBooked, models.BookingStatusCompleted, models.BookingStatusCancelled:
		default:
			issues = append(issues, gin.H{"field": "status", "message": "must be one of: booked, completed, cancelled"})
		}
	}
	return issues
}

// CreateBooking validates the payload, computes the total server-side
// and persists the booking for the caller.
func CreateBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "Invalid input", "issues": validationIssues(err)})
			return
		}

		booking := models.Booking{
			UserID:     userId,
			CarName:    input.CarName,
			Days:       input.Days,
			RentPerDay: input.RentPerDay,
			TotalCost:  input.Days * input.RentPerDay,
			Status:     models.BookingStatusBooked,
		}

		if err := db.Create(&booking).Error; err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		services.InvalidateBookingSummary(c.Request.Context(), userId)
		hub.SendBookingEvent(userId, "booking_created", booking)

		c.JSON(201, booking)
	}
}

// GetBookings lists the caller's active bookings (cancelled ones are
// excluded), or returns the spend summary when ?summary=true.
func GetBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")
		username := c.GetString("username")
		wantSummary := c.Query("summary") == "true"

		if wantSummary {
			if cached, err := services.GetBookingSummary(c.Request.Context(), userId); err == nil {
				c.Data(200, "application/json; charset=utf-8", cached)
				return
			}
		}

		bookings := make([]models.Booking, 0)
		if err := db.Where("user_id = ? AND status IN ?",
			userId, []models.BookingStatus{models.BookingStatusBooked, models.BookingStatusCompleted}).
			Order("created_at ASC").
			Find(&bookings).Error; err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		if wantSummary {
			totalAmount := 0
			for _, b := range bookings {
				totalAmount += b.TotalCost
			}

			summary := gin.H{
				"userId":           userId,
				"username":         username,
				"totalBookings":    len(bookings),
				"totalAmountSpent": totalAmount,
			}

			services.CacheBookingSummary(c.Request.Context(), userId, summary)
			c.JSON(200, summary)
			return
		}

		c.JSON(200, bookings)
	}
}

// GetBooking returns one booking. A booking that doesn't exist and a
// booking owned by someone else are the same 404.
func GetBooking(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookingId, err := strconv.Atoi(c.Param("bookingId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		var booking models.Booking
		if err := db.Where("id = ? AND user_id = ?", bookingId, userId).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		c.JSON(200, booking)
	}
}

// UpdateBooking applies a partial update. Unknown fields are rejected,
// and the total is recomputed from the merged days/rentPerDay so a
// stale or client-supplied total can never be stored.
func UpdateBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookingId, err := strconv.Atoi(c.Param("bookingId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		var input UpdateBookingInput
		dec := json.NewDecoder(c.Request.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&input); err != nil {
			c.JSON(400, gin.H{"error": "Invalid input", "issues": []gin.H{{"message": err.Error()}}})
			return
		}
		if issues := input.validate(); len(issues) > 0 {
			c.JSON(400, gin.H{"error": "Invalid input", "issues": issues})
			return
		}

		var booking models.Booking
		if err := db.Where("id = ? AND user_id = ?", bookingId, userId).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		updates := map[string]interface{}{}
		if input.CarName != nil {
			updates["car_name"] = *input.CarName
		}
		days := booking.Days
		rentPerDay := booking.RentPerDay
		if input.Days != nil {
			days = *input.Days
			updates["days"] = days
		}
		if input.RentPerDay != nil {
			rentPerDay = *input.RentPerDay
			updates["rent_per_day"] = rentPerDay
		}
		if input.Days != nil || input.RentPerDay != nil {
			updates["total_cost"] = days * rentPerDay
		}
		if input.Status != nil {
			updates["status"] = *input.Status
		}

		if len(updates) == 0 {
			c.JSON(200, booking)
			return
		}

		// The ownership predicate is repeated on the write so a
		// concurrent delete can't turn a stale read into a cross-user
		// update.
		if err := db.Model(&models.Booking{}).
			Where("id = ? AND user_id = ?", bookingId, userId).
			Updates(updates).Error; err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		if err := db.Where("id = ? AND user_id = ?", bookingId, userId).First(&booking).Error; err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		services.InvalidateBookingSummary(c.Request.Context(), userId)
		hub.SendBookingEvent(userId, "booking_updated", booking)

		c.JSON(200, booking)
	}
}

// DeleteBooking removes a booking after an ownership check.
func DeleteBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		bookingId, err := strconv.Atoi(c.Param("bookingId"))
		if err != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}

		var booking models.Booking
		if err := db.Where("id = ? AND user_id = ?", bookingId, userId).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(404, gin.H{"error": "Booking not found"})
				return
			}
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		if err := db.Where("id = ? AND user_id = ?", bookingId, userId).
			Delete(&models.Booking{}).Error; err != nil {
			c.JSON(500, gin.H{"error": "Internal server error"})
			return
		}

		services.InvalidateBookingSummary(c.Request.Context(), userId)
		hub.SendBookingEvent(userId, "booking_deleted", gin.H{"id": booking.ID})

		c.JSON(200, gin.H{"message": "Booking deleted successfully"})
	}
}
