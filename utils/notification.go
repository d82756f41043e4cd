package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const expoPushURL = "https://exp.host/--/api/v2/push/send"

type expoPushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

// SendNotification posts a single push message to the Expo push service.
func SendNotification(token string, title string, body string, data map[string]string) error {
	msg := expoPushMessage{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	res, err := http.Post(expoPushURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		resBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("expo push status %d: %s", res.StatusCode, string(resBody))
	}

	return nil
}
