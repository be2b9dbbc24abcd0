package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushSender delivers one push message to one device token.
type PushSender func(token, title, body string, data map[string]string) error

var pushClient = &http.Client{Timeout: 10 * time.Second}

// ExpoPush sends a push message through the Expo push gateway, which is
// what the mobile clients register their tokens with.
func ExpoPush(token, title, body string, data map[string]string) error {
	payload := map[string]interface{}{
		"to":    token,
		"title": title,
		"body":  body,
		"data":  data,
		"sound": "default",
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := pushClient.Post("https://exp.host/--/api/v2/push/send",
		"application/json", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
