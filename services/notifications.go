package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/luciano-gp/pet-found/models"
	"github.com/luciano-gp/pet-found/utils"
)

// NotificationService handles push notification delivery
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData is the payload clients use for deep linking
type NotificationData struct {
	Type     string `json:"type"`
	ThreadID string `json:"threadId,omitempty"`
	SenderID string `json:"senderId,omitempty"`
	Screen   string `json:"screen"`
}

// pushTokensOf extracts the deliverable tokens from an already-loaded
// user. Callers load the receiver up front so dispatch goroutines
// never touch the database.
func (ns *NotificationService) pushTokensOf(user *models.User) ([]string, error) {
	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("user has no push tokens")
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to every device of a user
func (ns *NotificationService) SendNotificationToUser(receiver *models.User, title, body string, data NotificationData) error {
	tokens, err := ns.pushTokensOf(receiver)
	if err != nil {
		log.Printf("push tokens unavailable for user %d: %v", receiver.ID, err)
		return err
	}

	dataMap := map[string]string{
		"type":     data.Type,
		"threadId": data.ThreadID,
		"senderId": data.SenderID,
		"screen":   data.Screen,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("push send failed for user %d: %v", receiver.ID, err)
			lastError = err
		}
	}

	return lastError
}

// SendMessageNotification notifies a participant about a new chat message.
// The body previews text content; image-only messages get a fixed label.
func (ns *NotificationService) SendMessageNotification(receiver *models.User, senderID, threadID uint, senderName, preview string) error {
	if preview == "" {
		preview = "📷 Imagem"
	}

	return ns.SendNotificationToUser(receiver, senderName, preview, NotificationData{
		Type:     "chat_message",
		ThreadID: fmt.Sprint(threadID),
		SenderID: fmt.Sprint(senderID),
		Screen:   "chat",
	})
}
