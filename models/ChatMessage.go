package models

import "time"

// ChatMessage is one message in a thread. Content and ImageURL are both
// nullable at this layer; the append endpoint requires at least one.
// Messages are never edited or deleted.
type ChatMessage struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	ThreadID uint `json:"threadID" gorm:"not null;index"`
	SenderID uint `json:"senderID" gorm:"not null;index"`

	Content  *string `json:"content" gorm:"type:text"`
	ImageURL *string `json:"imageURL" gorm:"size:512"`

	Sender User `json:"sender" gorm:"foreignKey:SenderID"`

	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}
