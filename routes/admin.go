package routes

import (
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"mechmarket-server/models"
	"mechmarket-server/scheduling"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

func AdminListUsers(ctx iris.Context) {
	page, perPage := pagination(ctx)

	query := storage.DB.Model(&models.User{})
	if role := ctx.URLParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if q := ctx.URLParam("q"); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("id ASC").Offset((page - 1) * perPage).Limit(perPage).
		Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, users, page, perPage, total)
}

type ChangeRoleInput struct {
	Role models.Role `json:"role" validate:"required"`
}

func AdminChangeUserRole(ctx iris.Context) {
	userID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var input ChangeRoleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !input.Role.Valid() {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Unknown role"})
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	before := user.Role
	if err := storage.DB.Model(&user).Update("role", input.Role).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "user.role_change", "user", user.ID,
		iris.Map{"role": before}, iris.Map{"role": input.Role})

	user.Role = input.Role
	ctx.JSON(user)
}

func AdminVerifyShop(ctx iris.Context) {
	shopID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var shop models.Shop
	if err := storage.DB.First(&shop, shopID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input struct {
		Verified bool `json:"verified"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := shop.IsVerified
	if err := storage.DB.Model(&shop).Update("is_verified", input.Verified).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "shop.verify", "shop", shop.ID,
		iris.Map{"isVerified": before}, iris.Map{"isVerified": input.Verified})

	shop.IsVerified = input.Verified
	ctx.JSON(shop)
}

func AdminListBookings(ctx iris.Context) {
	page, perPage := pagination(ctx)

	query := storage.DB.Model(&models.Booking{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if shopID := ctx.URLParam("shopID"); shopID != "" {
		query = query.Where("shop_id = ?", shopID)
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Preload("Shop").Preload("Owner").
		Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).
		Find(&bookings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, bookings, page, perPage, total)
}

// AdminCancelBooking force-cancels any still-active booking and frees its
// slot; used for dispute resolution.
func AdminCancelBooking(ctx iris.Context) {
	bookingID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, bookingID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	switch booking.Status {
	case models.BookingStatusCompleted, models.BookingStatusCancelled:
		utils.CreateConflict("Booking is already finished.", ctx)
		return
	}

	before := booking.Status
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&booking).Update("status", models.BookingStatusCancelled).Error; err != nil {
			return err
		}
		return scheduling.NewService(scheduling.NewGormSlotRepo(tx)).Release(booking.ID)
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "booking.force_cancel", "booking", booking.ID,
		iris.Map{"status": before}, iris.Map{"status": models.BookingStatusCancelled})

	go notifier.NotifyBookingStatus(booking.OwnerID, booking.ID, models.BookingStatusCancelled)

	booking.Status = models.BookingStatusCancelled
	ctx.JSON(booking)
}

// AdminHideReview toggles moderation visibility; the shop aggregate is
// recomputed because hidden reviews stop counting.
func AdminHideReview(ctx iris.Context) {
	reviewID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := storage.DB.First(&review, reviewID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input struct {
		Hidden bool `json:"hidden"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	before := review.IsHidden
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&review).Update("is_hidden", input.Hidden).Error; err != nil {
			return err
		}
		return recalculateShopRating(tx, review.ShopID)
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "review.moderate", "review", review.ID,
		iris.Map{"isHidden": before}, iris.Map{"isHidden": input.Hidden})

	review.IsHidden = input.Hidden
	ctx.JSON(review)
}

func AdminDeleteReview(ctx iris.Context) {
	reviewID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := storage.DB.First(&review, reviewID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recalculateShopRating(tx, review.ShopID)
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "review.delete", "review", review.ID, review, nil)

	ctx.JSON(iris.Map{"success": true})
}

// AdminStats is the dashboard summary. Counts come from the database;
// average shop response time needs a quote-latency rollup that is not
// collected yet, so it is reported as null.
func AdminStats(ctx iris.Context) {
	var userCount, shopCount, bookingCount, openRequestCount int64
	storage.DB.Model(&models.User{}).Count(&userCount)
	storage.DB.Model(&models.Shop{}).Count(&shopCount)
	storage.DB.Model(&models.Booking{}).Count(&bookingCount)
	storage.DB.Model(&models.QuoteRequest{}).
		Where("status = ?", models.QuoteRequestStatusOpen).Count(&openRequestCount)

	since := time.Now().AddDate(0, 0, -30)
	var revenue struct{ Total float64 }
	storage.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("status = ? AND updated_at >= ?", models.InvoiceStatusPaid, since).
		Scan(&revenue)

	ctx.JSON(iris.Map{
		"users":             userCount,
		"shops":             shopCount,
		"bookings":          bookingCount,
		"openQuoteRequests": openRequestCount,
		"paidRevenue30d":    revenue.Total,
		"avgResponseTime":   nil,
	})
}

// AdminActivity returns the most recent audit entries.
func AdminActivity(ctx iris.Context) {
	var entries []models.AuditLog
	if err := storage.DB.Order("created_at DESC").Limit(100).Find(&entries).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": entries})
}

func pagination(ctx iris.Context) (page, perPage int) {
	page, _ = strconv.Atoi(ctx.URLParamDefault("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(ctx.URLParamDefault("perPage", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	return page, perPage
}
