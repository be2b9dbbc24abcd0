package routes

import (
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type ReviewInput struct {
	ShopID    uint     `json:"shopID" validate:"required"`
	BookingID *uint    `json:"bookingID"`
	Title     string   `json:"title" validate:"max=256"`
	Body      string   `json:"body" validate:"required"`
	Stars     int      `json:"stars" validate:"required,min=1,max=5"`
	Photos    []string `json:"photos"`
}

// CreateReview posts an owner's review of a shop. Reviews tied to one of
// the owner's completed bookings are marked verified; one review per
// booking. The shop's rating aggregate updates in the same transaction.
func CreateReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input ReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var shop models.Shop
	if err := storage.DB.First(&shop, input.ShopID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	review := models.Review{
		UserID: userID,
		ShopID: shop.ID,
		Title:  input.Title,
		Body:   input.Body,
		Stars:  input.Stars,
		Photos: marshalJSON(input.Photos),
	}

	if input.BookingID != nil {
		var booking models.Booking
		if err := storage.DB.Where("id = ? AND owner_id = ? AND shop_id = ?",
			*input.BookingID, userID, shop.ID).First(&booking).Error; err != nil {
			utils.CreateNotFound(ctx)
			return
		}
		if booking.Status != models.BookingStatusCompleted {
			utils.CreateConflict("Only completed bookings can be reviewed.", ctx)
			return
		}
		var existing models.Review
		if err := storage.DB.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
			utils.CreateConflict("Booking already has a review.", ctx)
			return
		}
		review.BookingID = input.BookingID
		review.IsVerified = true
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return recalculateShopRating(tx, shop.ID)
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(review)
}

// ListShopReviews is public; hidden reviews are excluded.
func ListShopReviews(ctx iris.Context) {
	shopID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var reviews []models.Review
	if err := storage.DB.Where("shop_id = ? AND is_hidden = ?", shopID, false).
		Preload("User").Order("created_at DESC").Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": reviews})
}

func DeleteMyReview(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	reviewID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := storage.DB.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error; err != nil {
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

	ctx.JSON(iris.Map{"success": true})
}

// recalculateShopRating recomputes the visible-review average and count.
// Hidden reviews do not count toward the aggregate.
func recalculateShopRating(tx *gorm.DB, shopID uint) error {
	var stats struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(stars), 0) AS avg, COUNT(*) AS count").
		Where("shop_id = ? AND is_hidden = ?", shopID, false).
		Scan(&stats).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.Shop{}).Where("id = ?", shopID).
		Updates(map[string]interface{}{"stars": stats.Avg, "review_count": stats.Count}).Error
}
