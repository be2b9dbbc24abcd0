package routes

import (
	"time"

	"github.com/kataras/iris/v12"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type StartConversationInput struct {
	ShopUserID     uint   `json:"shopUserID"`
	OwnerID        uint   `json:"ownerID"`
	BookingID      *uint  `json:"bookingID"`
	QuoteRequestID *uint  `json:"quoteRequestID"`
	Text           string `json:"text" validate:"required"`
}

// StartConversation opens (or reuses) the direct channel between an owner
// and a shop user, seeding it with the first message.
func StartConversation(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role := ctx.Values().Get("role").(models.Role)

	var input StartConversationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var ownerID, shopUserID uint
	switch role {
	case models.RoleOwner:
		ownerID, shopUserID = userID, input.ShopUserID
	case models.RoleShop:
		ownerID, shopUserID = input.OwnerID, userID
	default:
		utils.CreateForbidden(ctx)
		return
	}
	if ownerID == 0 || shopUserID == 0 {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Conversation needs both participants"})
		return
	}

	var conversation models.Conversation
	err := storage.DB.Where("owner_id = ? AND shop_user_id = ?", ownerID, shopUserID).
		First(&conversation).Error
	if err != nil {
		conversation = models.Conversation{
			OwnerID:        ownerID,
			ShopUserID:     shopUserID,
			BookingID:      input.BookingID,
			QuoteRequestID: input.QuoteRequestID,
		}
		if err := storage.DB.Create(&conversation).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	message, ok := appendMessage(ctx, conversation, userID, input.Text, "", "")
	if !ok {
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"conversation": conversation, "message": message})
}

func ListConversations(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var conversations []models.Conversation
	if err := storage.DB.Where("owner_id = ? OR shop_user_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").Find(&conversations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// annotate with presence of the other participant
	data := make([]iris.Map, 0, len(conversations))
	for _, conversation := range conversations {
		other := conversation.OwnerID
		if other == userID {
			other = conversation.ShopUserID
		}
		data = append(data, iris.Map{
			"conversation": conversation,
			"otherUserID":  other,
			"otherOnline":  emitter.IsOnline(other),
		})
	}

	ctx.JSON(iris.Map{"success": true, "data": data})
}

// ListMessages returns the most recent 100 messages, oldest first, and
// marks the caller's unseen messages delivered.
func ListMessages(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	conversation, ok := conversationForUser(ctx, userID)
	if !ok {
		return
	}

	var messages []models.Message
	storage.DB.Where("conversation_id = ?", conversation.ID).
		Order("id DESC").Limit(100).Find(&messages)
	// reverse to chronological
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	now := time.Now()
	storage.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND state = ?", conversation.ID, userID, "sent").
		Updates(map[string]interface{}{"state": "delivered", "delivered_at": now})

	ctx.JSON(iris.Map{"success": true, "messages": messages})
}

type SendMessageInput struct {
	Text           string `json:"text"`
	AttachmentURL  string `json:"attachmentURL"`
	AttachmentType string `json:"attachmentType" validate:"omitempty,oneof=image video pdf"`
}

func SendMessage(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	conversation, ok := conversationForUser(ctx, userID)
	if !ok {
		return
	}

	var input SendMessageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Text == "" && input.AttachmentURL == "" {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Message needs text or an attachment"})
		return
	}

	message, ok := appendMessage(ctx, conversation, userID, input.Text, input.AttachmentURL, input.AttachmentType)
	if !ok {
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(message)
}

// MarkMessagesSeen flips the caller's received messages to seen and tells
// the sender's room.
func MarkMessagesSeen(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	conversation, ok := conversationForUser(ctx, userID)
	if !ok {
		return
	}

	now := time.Now()
	storage.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND state != ?", conversation.ID, userID, "seen").
		Updates(map[string]interface{}{"state": "seen", "seen_at": now})

	emitter.PublishToConversation(conversation.ID, "seen",
		iris.Map{"conversationID": conversation.ID, "by": userID})

	ctx.JSON(iris.Map{"success": true})
}

// Typing relays a typing indicator to the conversation room. Pure fan-out,
// nothing persisted.
func Typing(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	conversation, ok := conversationForUser(ctx, userID)
	if !ok {
		return
	}

	emitter.PublishToConversation(conversation.ID, "typing",
		iris.Map{"conversationID": conversation.ID, "userID": userID})
	ctx.JSON(iris.Map{"success": true})
}

// Presence marks the caller online; clients ping this while the app is in
// the foreground.
func Presence(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	emitter.SetOnline(userID)
	ctx.JSON(iris.Map{"success": true})
}

func conversationForUser(ctx iris.Context, userID uint) (models.Conversation, bool) {
	conversationID, ok := parseUintParam(ctx, "id")
	if !ok {
		return models.Conversation{}, false
	}

	var conversation models.Conversation
	if err := storage.DB.First(&conversation, conversationID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return models.Conversation{}, false
	}
	if conversation.OwnerID != userID && conversation.ShopUserID != userID {
		utils.CreateForbidden(ctx)
		return models.Conversation{}, false
	}
	return conversation, true
}

func appendMessage(ctx iris.Context, conversation models.Conversation, senderID uint, text, attachmentURL, attachmentType string) (models.Message, bool) {
	receiverID := conversation.OwnerID
	if receiverID == senderID {
		receiverID = conversation.ShopUserID
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
		AttachmentURL:  attachmentURL,
		AttachmentType: attachmentType,
		State:          "sent",
	}
	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return models.Message{}, false
	}

	now := time.Now()
	storage.DB.Model(&models.Conversation{}).Where("id = ?", conversation.ID).
		Update("last_message_at", now)

	// realtime + push are side channels; the message row is already in
	go func() {
		emitter.PublishToConversation(conversation.ID, "message", message)
		var sender models.User
		if err := storage.DB.Select("id, first_name, last_name").First(&sender, senderID).Error; err == nil {
			notifier.NotifyNewMessage(receiverID, conversation.ID, sender.FirstName+" "+sender.LastName)
		}
	}()

	return message, true
}
