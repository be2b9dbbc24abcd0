package services

import (
	"errors"
	"testing"

	"mechmarket-server/models"
)

type fakeNotificationStore struct {
	saved     []models.Notification
	saveErr   error
	tokens    []string
	tokensErr error
}

func (f *fakeNotificationStore) SaveNotification(n *models.Notification) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *n)
	return nil
}

func (f *fakeNotificationStore) UserPushTokens(userID uint) ([]string, error) {
	return f.tokens, f.tokensErr
}

// The side channel is best-effort: a failing push must neither panic nor
// undo the persisted notification row.
func TestNotifySwallowsPushFailure(t *testing.T) {
	store := &fakeNotificationStore{tokens: []string{"tok-1", "tok-2"}}
	pushed := 0
	ns := &NotificationService{
		store: store,
		push: func(token, title, body string, data map[string]string) error {
			pushed++
			return errors.New("gateway down")
		},
	}

	ns.Notify(42, "quote_received", "New quote", "body", map[string]string{"quoteID": "1"})

	if len(store.saved) != 1 {
		t.Fatalf("notification row must persist despite push failure, saved=%d", len(store.saved))
	}
	if pushed != 2 {
		t.Fatalf("expected a push attempt per token, got %d", pushed)
	}
	if store.saved[0].UserID != 42 || store.saved[0].Type != "quote_received" {
		t.Fatalf("unexpected saved row: %+v", store.saved[0])
	}
}

func TestNotifySkipsPushWhenTokensUnavailable(t *testing.T) {
	store := &fakeNotificationStore{tokensErr: errors.New("notifications disabled")}
	ns := &NotificationService{
		store: store,
		push: func(token, title, body string, data map[string]string) error {
			t.Fatal("push must not be attempted without tokens")
			return nil
		},
	}

	ns.Notify(7, "booking_status", "Booking update", "body", nil)

	if len(store.saved) != 1 {
		t.Fatalf("in-app row still persists, saved=%d", len(store.saved))
	}
}

func TestNotifyGivesUpQuietlyOnSaveFailure(t *testing.T) {
	store := &fakeNotificationStore{saveErr: errors.New("db down")}
	ns := &NotificationService{store: store, push: func(string, string, string, map[string]string) error {
		t.Fatal("no push after failed save")
		return nil
	}}

	// must not panic or propagate
	ns.Notify(7, "message", "New message", "body", nil)
}
