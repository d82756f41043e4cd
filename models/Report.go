package models

import "gorm.io/gorm"

// Report is a sighting of a stray or lost animal on the street.
// Coordinates are nullable: reports created without location services
// still show up in the feed, just without a distance.
type Report struct {
	gorm.Model
	UserID       uint     `json:"userID" gorm:"not null;index"`
	Species      string   `json:"species" gorm:"size:32;index"`
	Description  string   `json:"description" gorm:"type:text"`
	ImageURL     string   `json:"imageURL" gorm:"size:512"`
	LocationName string   `json:"locationName" gorm:"size:256"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
