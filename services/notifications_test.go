package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/luciano-gp/pet-found/models"
)

func boolPtr(v bool) *bool { return &v }

func TestPushTokensOf(t *testing.T) {
	ns := NewNotificationService()

	enabled := models.User{
		AllowsNotifications: boolPtr(true),
		PushTokens:          datatypes.JSON(`["ExponentPushToken[abc]","ExponentPushToken[def]"]`),
	}
	tokens, err := ns.pushTokensOf(&enabled)
	if err != nil {
		t.Fatalf("expected tokens for enabled user, got error: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "ExponentPushToken[abc]" {
		t.Fatalf("unexpected tokens: %v", tokens)
	}

	// no DB lookup happens here: everything comes from the struct
	undeliverable := []models.User{
		{},
		{AllowsNotifications: boolPtr(false), PushTokens: datatypes.JSON(`["ExponentPushToken[abc]"]`)},
		{AllowsNotifications: boolPtr(true)},
		{AllowsNotifications: boolPtr(true), PushTokens: datatypes.JSON(`[]`)},
	}
	for i, user := range undeliverable {
		if _, err := ns.pushTokensOf(&user); err == nil {
			t.Fatalf("expected error for undeliverable user %d", i)
		}
	}
}
