package models

import "gorm.io/gorm"

// Ong is the organization record behind a user registered as an ONG.
type Ong struct {
	gorm.Model
	UserID      uint   `json:"userID" gorm:"uniqueIndex"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CNPJ        string `json:"cnpj" gorm:"column:cnpj;size:14;uniqueIndex"`

	Campaigns []Campaign `json:"campaigns,omitempty" gorm:"foreignKey:OngID"`
}
