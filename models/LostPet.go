package models

import "gorm.io/gorm"

type LostPet struct {
	gorm.Model
	UserID       uint     `json:"userID" gorm:"not null;index"`
	Name         string   `json:"name" gorm:"size:128"`
	Species      string   `json:"species" gorm:"size:32;index"`
	Description  string   `json:"description" gorm:"type:text"`
	Reward       *float64 `json:"reward"`
	ImageURL     string   `json:"imageURL" gorm:"size:512"`
	LastSeenName string   `json:"lastSeenName" gorm:"size:256"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
