package routes

import (
	"gorm.io/gorm"

	"mechmarket-server/scheduling"
	"mechmarket-server/services"
)

// Shared collaborators, constructed once in main after the database is up.
var (
	slots    *scheduling.Service
	notifier *services.NotificationService
	emitter  *services.Emitter
)

// Setup wires the route handlers to their collaborators.
func Setup(db *gorm.DB) {
	slots = scheduling.NewService(scheduling.NewGormSlotRepo(db))
	notifier = services.NewNotificationService()
	emitter = services.NewEmitter()
}
