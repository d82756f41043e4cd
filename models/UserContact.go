package models

import "gorm.io/gorm"

// UserContact is the contact card shown to other users from a listing.
// One per user.
type UserContact struct {
	gorm.Model
	UserID uint   `json:"userID" gorm:"uniqueIndex"`
	Name   string `json:"name"`
	Phone  string `json:"phone" gorm:"size:20"`
}
