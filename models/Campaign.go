package models

import "gorm.io/gorm"

// Campaign is a fundraising drive owned by an ONG.
type Campaign struct {
	gorm.Model
	OngID        uint    `json:"ongID" gorm:"not null;index"`
	Title        string  `json:"title" gorm:"size:256"`
	Description  string  `json:"description" gorm:"type:text"`
	GoalAmount   float64 `json:"goalAmount"`
	RaisedAmount float64 `json:"raisedAmount"`

	Ong *Ong `json:"ong,omitempty" gorm:"foreignKey:OngID"`
}
