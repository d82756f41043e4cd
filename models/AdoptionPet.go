package models

import "gorm.io/gorm"

type AdoptionPet struct {
	gorm.Model
	UserID      uint     `json:"userID" gorm:"not null;index"`
	PetName     string   `json:"petName" gorm:"size:128"`
	PetAge      *int     `json:"petAge"`
	Description string   `json:"description" gorm:"type:text"`
	Species     string   `json:"species" gorm:"size:32;index"`
	Adopted     bool     `json:"adopted" gorm:"index"`
	ImageURL    string   `json:"imageURL" gorm:"size:512"`
	Vaccinated  *bool    `json:"vaccinated"`
	Castrated   *bool    `json:"castrated"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     string   `json:"address" gorm:"size:256"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
