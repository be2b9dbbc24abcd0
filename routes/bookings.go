package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"mechmarket-server/models"
	"mechmarket-server/scheduling"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type BookingInput struct {
	ShopID             uint   `json:"shopID" validate:"required"`
	VehicleID          uint   `json:"vehicleID" validate:"required"`
	QuoteID            *uint  `json:"quoteID"`
	ServiceDescription string `json:"serviceDescription"`
	Date               string `json:"date" validate:"required,len=10"`
	StartTime          string `json:"startTime" validate:"required,len=5"`
}

// CreateBooking reserves a slot for the owner. The booking row and the
// slot claim commit in one transaction: if the claim loses (slot gone or
// already booked) the booking row is rolled back, so a conflict never
// leaves partial state.
func CreateBooking(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input BookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var vehicle models.Vehicle
	if err := storage.DB.Where("id = ? AND owner_id = ?", input.VehicleID, userID).First(&vehicle).Error; err != nil {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Vehicle not found or access denied"})
		return
	}

	var shop models.Shop
	if err := storage.DB.First(&shop, input.ShopID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	booking := models.Booking{
		OwnerID:            userID,
		ShopID:             input.ShopID,
		VehicleID:          input.VehicleID,
		ServiceDescription: input.ServiceDescription,
		ScheduledDate:      input.Date,
		ScheduledTime:      input.StartTime,
		Status:             models.BookingStatusPending,
	}

	if input.QuoteID != nil {
		var quote models.Quote
		if err := storage.DB.First(&quote, *input.QuoteID).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if quote.ShopID != input.ShopID || quote.Status != models.QuoteStatusAccepted {
			utils.CreateConflict("Booking quote must be an accepted quote from the same shop.", ctx)
			return
		}
		var request models.QuoteRequest
		if err := storage.DB.Where("id = ? AND owner_id = ?", quote.QuoteRequestID, userID).
			First(&request).Error; err != nil {
			utils.CreateForbidden(ctx)
			return
		}
		booking.QuoteID = input.QuoteID
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		txSlots := scheduling.NewService(scheduling.NewGormSlotRepo(tx))
		_, err := txSlots.Book(input.ShopID, input.Date, input.StartTime, booking.ID)
		return err
	})

	switch {
	case txErr == nil:
		// fall through to respond
	case errors.Is(txErr, scheduling.ErrSlotNotFound):
		utils.CreateNotFound(ctx)
		return
	case errors.Is(txErr, scheduling.ErrSlotTaken):
		utils.CreateConflict("Time slot is already booked.", ctx)
		return
	default:
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifier.NotifyBookingCreated(shop.UserID, booking.ID, input.Date, input.StartTime)

	storage.DB.Preload("Shop").Preload("Vehicle").First(&booking, booking.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(booking)
}

func ListMyBookings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var bookings []models.Booking
	if err := storage.DB.Where("owner_id = ?", userID).
		Preload("Shop").Preload("Vehicle").Preload("Quote").Preload("Invoice").
		Order("scheduled_date DESC, scheduled_time DESC").Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": bookings})
}

func ListShopBookings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	query := storage.DB.Where("shop_id = ?", shop.ID)
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Preload("Owner").Preload("Vehicle").Preload("Quote").Preload("Invoice").
		Order("scheduled_date ASC, scheduled_time ASC").Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": bookings})
}

func GetBooking(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	bookingID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var booking models.Booking
	if err := storage.DB.Preload("Shop").Preload("Vehicle").Preload("Quote").
		Preload("Quote.LineItems").Preload("Invoice").Preload("Invoice.LineItems").
		First(&booking, bookingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if !mayActOnBooking(userID, booking) {
		// conceal existence from strangers
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(booking)
}

// ConfirmBooking: shop accepts a pending booking.
func ConfirmBooking(ctx iris.Context) {
	advanceBookingStatus(ctx, models.BookingStatusPending, models.BookingStatusConfirmed)
}

// StartBookingWork: shop marks the job in progress.
func StartBookingWork(ctx iris.Context) {
	advanceBookingStatus(ctx, models.BookingStatusConfirmed, models.BookingStatusInProgress)
}

func advanceBookingStatus(ctx iris.Context, from, to string) {
	userID := ctx.Values().Get("userID").(uint)
	bookingID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var booking models.Booking
	if err := storage.DB.Where("id = ? AND shop_id = ?", bookingID, shop.ID).First(&booking).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if booking.Status != from {
		utils.CreateConflict("Booking is not "+from+".", ctx)
		return
	}

	if err := storage.DB.Model(&booking).Update("status", to).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifier.NotifyBookingStatus(booking.OwnerID, booking.ID, to)

	booking.Status = to
	ctx.JSON(booking)
}

// CancelBooking cancels and releases the slot. Owner or shop may cancel,
// but not once work started.
func CancelBooking(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	bookingID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, bookingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if !mayActOnBooking(userID, booking) {
		utils.CreateNotFound(ctx)
		return
	}

	switch booking.Status {
	case models.BookingStatusPending, models.BookingStatusConfirmed:
		// cancellable
	default:
		utils.CreateConflict("Booking can no longer be cancelled.", ctx)
		return
	}

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booking).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return err
		}
		txSlots := scheduling.NewService(scheduling.NewGormSlotRepo(tx))
		return txSlots.Release(booking.ID)
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifier.NotifyBookingStatus(booking.OwnerID, booking.ID, models.BookingStatusCancelled)

	booking.Status = models.BookingStatusCancelled
	ctx.JSON(booking)
}

// mayActOnBooking: the owner or the shop's user.
func mayActOnBooking(userID uint, booking models.Booking) bool {
	if booking.OwnerID == userID {
		return true
	}
	var shop models.Shop
	if err := storage.DB.First(&shop, booking.ShopID).Error; err != nil {
		return false
	}
	return shop.UserID == userID
}
