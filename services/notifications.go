package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ExpoPushMessage represents a push notification message
type ExpoPushMessage struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
	Sound string                 `json:"sound,omitempty"`
}

// NotificationService delivers push notifications and OTP messages.
// Delivery is best-effort: callers treat failures as non-fatal.
type NotificationService struct {
	ExpoPushURL string
	client      *http.Client
}

var Notifications = NewNotificationService()

func NewNotificationService() *NotificationService {
	return &NotificationService{
		ExpoPushURL: "https://exp.host/--/api/v2/push/send",
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

// SendPushNotification sends a push notification through Expo
func (ns *NotificationService) SendPushNotification(pushToken, title, body string, data map[string]interface{}) error {
	if pushToken == "" {
		return fmt.Errorf("push token is empty")
	}

	message := ExpoPushMessage{
		To:    pushToken,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequest("POST", ns.ExpoPushURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ns.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("push notification failed with status %d: %s", resp.StatusCode, string(responseBody))
	}
	return nil
}

// SendOTP hands a one-time code to the delivery channel. The mail/SMS
// provider is environment-specific; in development the code is logged.
func (ns *NotificationService) SendOTP(email, code, purpose string) {
	logrus.WithFields(logrus.Fields{
		"email":   email,
		"purpose": purpose,
	}).Infof("OTP issued: %s", code)
}
