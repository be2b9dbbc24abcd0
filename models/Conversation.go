package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a direct channel between a vehicle owner and a shop,
// optionally anchored to a booking or a quote request.
type Conversation struct {
	gorm.Model
	OwnerID        uint       `json:"ownerID" gorm:"not null;index:idx_conv_pair"`
	ShopUserID     uint       `json:"shopUserID" gorm:"not null;index:idx_conv_pair"`
	BookingID      *uint      `json:"bookingID" gorm:"index"`
	QuoteRequestID *uint      `json:"quoteRequestID" gorm:"index"`
	Messages       []Message  `json:"messages" gorm:"foreignKey:ConversationID"`
	LastMessageAt  *time.Time `json:"lastMessageAt" gorm:"index"`
}
