package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email" gorm:"uniqueIndex"`
	Password       string `json:"-"`
	SocialLogin    bool   `json:"socialLogin"`
	SocialProvider string `json:"socialProvider"`
	AvatarURL      string `json:"avatarURL"`
	BirthDate      string `json:"birthDate"`
	// Stored normalized (digits only); handlers format it for display
	CPF            string `json:"-" gorm:"column:cpf;size:11"`
	// An ONG account owns campaigns; the Ong row carries the CNPJ.
	IsOng               bool           `json:"isOng" gorm:"index"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`

	Ong     *Ong         `json:"ong,omitempty" gorm:"foreignKey:UserID"`
	Contact *UserContact `json:"contact,omitempty" gorm:"foreignKey:UserID"`
}

// MarshalJSON flattens the push-token JSON column so clients never see raw bytes.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}
