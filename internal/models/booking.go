package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         uint          `gorm:"primarykey" json:"id"`
	UserID     uint          `gorm:"not null;index" json:"userId"`
	User       User          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CarName    string        `gorm:"not null" json:"carName"`
	Days       int           `gorm:"not null" json:"days"`
	RentPerDay int           `gorm:"not null" json:"rentPerDay"`
	TotalCost  int           `gorm:"not null" json:"totalCost"`
	Status     BookingStatus `gorm:"not null;default:'booked'" json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

func (Booking) TableName() string {
	return "bookings"
}
