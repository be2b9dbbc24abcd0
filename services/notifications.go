package services

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"

	"gorm.io/datatypes"

	"mechmarket-server/models"
	"mechmarket-server/storage"
)

// NotificationStore is the slice of persistence the notification service
// needs; the default implementation sits on the gorm singleton.
type NotificationStore interface {
	SaveNotification(n *models.Notification) error
	UserPushTokens(userID uint) ([]string, error)
}

// NotificationService persists in-app notifications and pushes them to the
// user's devices. Delivery is strictly best-effort: the in-app row is the
// source of truth, push and realtime failures are logged and swallowed so
// they can never fail the write that triggered them.
type NotificationService struct {
	store NotificationStore
	push  PushSender
	emit  *Emitter
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		store: gormNotificationStore{},
		push:  ExpoPush,
		emit:  NewEmitter(),
	}
}

// Notify writes the notification row and fans it out. No error is
// returned; callers fire and forget.
func (ns *NotificationService) Notify(userID uint, ntype, title, body string, data map[string]string) {
	row := models.Notification{
		UserID: userID,
		Type:   ntype,
		Title:  title,
		Body:   body,
	}
	if data != nil {
		if encoded, err := json.Marshal(data); err == nil {
			row.Data = datatypes.JSON(encoded)
		}
	}

	if err := ns.store.SaveNotification(&row); err != nil {
		log.Printf("notification save failed for user %d: %v", userID, err)
		return
	}

	if ns.emit != nil {
		if err := ns.emit.PublishToUser(userID, "notification", row); err != nil {
			log.Printf("notification emit failed for user %d: %v", userID, err)
		}
	}

	tokens, err := ns.store.UserPushTokens(userID)
	if err != nil {
		log.Printf("push token lookup failed for user %d: %v", userID, err)
		return
	}
	for _, token := range tokens {
		if err := ns.push(token, title, body, data); err != nil {
			log.Printf("push to token %s failed: %v", token, err)
		}
	}
}

// Domain-specific wrappers used by the routes.

func (ns *NotificationService) NotifyQuoteReceived(ownerID uint, quoteID uint, shopName string) {
	ns.Notify(ownerID, "quote_received", "New quote",
		shopName+" sent you a quote", map[string]string{"quoteID": uintToStr(quoteID)})
}

func (ns *NotificationService) NotifyQuoteAccepted(shopUserID uint, quoteID uint) {
	ns.Notify(shopUserID, "quote_accepted", "Quote accepted",
		"Your quote was accepted", map[string]string{"quoteID": uintToStr(quoteID)})
}

func (ns *NotificationService) NotifyBookingCreated(shopUserID uint, bookingID uint, date, start string) {
	ns.Notify(shopUserID, "booking_created", "New booking",
		"New booking on "+date+" at "+start, map[string]string{"bookingID": uintToStr(bookingID)})
}

func (ns *NotificationService) NotifyBookingStatus(ownerID uint, bookingID uint, status string) {
	ns.Notify(ownerID, "booking_status", "Booking update",
		"Your booking is now "+status, map[string]string{"bookingID": uintToStr(bookingID)})
}

func (ns *NotificationService) NotifyInvoiceIssued(ownerID uint, invoiceID uint) {
	ns.Notify(ownerID, "invoice_issued", "Invoice ready",
		"Your invoice is ready for review", map[string]string{"invoiceID": uintToStr(invoiceID)})
}

func (ns *NotificationService) NotifyInvoicePaid(shopUserID uint, invoiceID uint) {
	ns.Notify(shopUserID, "invoice_paid", "Invoice paid",
		"An invoice was approved and paid", map[string]string{"invoiceID": uintToStr(invoiceID)})
}

func (ns *NotificationService) NotifyNewMessage(receiverID uint, conversationID uint, senderName string) {
	ns.Notify(receiverID, "message", "New message",
		senderName+" sent you a message", map[string]string{"conversationID": uintToStr(conversationID)})
}

func uintToStr(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

// gormNotificationStore backs the service with the shared database.
type gormNotificationStore struct{}

func (gormNotificationStore) SaveNotification(n *models.Notification) error {
	return storage.DB.Create(n).Error
}

func (gormNotificationStore) UserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, errors.New("user has notifications disabled or no tokens")
	}
	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}
