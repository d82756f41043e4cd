package models

import "time"

// ChatThread is a two-party conversation. ParticipantKey holds the sorted
// user-id pair ("minID:maxID"); its unique index is what makes thread
// resolution race-free: two concurrent first messages between the same pair
// collide on the key instead of creating duplicate threads.
type ChatThread struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	CreatedBy      uint   `json:"createdBy" gorm:"not null;index"`
	ParticipantKey string `json:"-" gorm:"size:64;uniqueIndex"`

	Participants []ChatParticipant `json:"participants,omitempty" gorm:"foreignKey:ThreadID"`
	Messages     []ChatMessage     `json:"messages,omitempty" gorm:"foreignKey:ThreadID"`

	CreatedAt time.Time `json:"createdAt"`
}

// ChatParticipant links a user to a thread. Membership is set-like; the
// composite unique index keeps a user from appearing twice in one thread.
type ChatParticipant struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	ThreadID uint `json:"threadID" gorm:"not null;index;uniqueIndex:idx_thread_user"`
	UserID   uint `json:"userID" gorm:"not null;index;uniqueIndex:idx_thread_user"`

	User User `json:"user" gorm:"foreignKey:UserID"`

	CreatedAt time.Time `json:"createdAt"`
}
