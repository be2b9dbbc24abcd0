package routes

import (
	"encoding/json"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type QuoteRequestInput struct {
	VehicleID     uint     `json:"vehicleID" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Symptoms      []string `json:"symptoms"`
	Photos        []string `json:"photos"`
	Broadcast     *bool    `json:"broadcast"`
	TargetShopIDs []uint   `json:"targetShopIDs"`
}

// CreateQuoteRequest opens an owner's ask. A request is either broadcast to
// every shop or targeted at an explicit shop list.
func CreateQuoteRequest(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input QuoteRequestInput
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

	broadcast := true
	if input.Broadcast != nil {
		broadcast = *input.Broadcast
	}
	if !broadcast && len(input.TargetShopIDs) == 0 {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Targeted requests need at least one shop"})
		return
	}

	request := models.QuoteRequest{
		OwnerID:       userID,
		VehicleID:     input.VehicleID,
		Description:   input.Description,
		Symptoms:      marshalJSON(input.Symptoms),
		Photos:        marshalJSON(input.Photos),
		Broadcast:     broadcast,
		TargetShopIDs: marshalJSON(input.TargetShopIDs),
		Status:        models.QuoteRequestStatusOpen,
	}

	if err := storage.DB.Create(&request).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(request)
}

func ListMyQuoteRequests(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var requests []models.QuoteRequest
	if err := storage.DB.Where("owner_id = ?", userID).
		Preload("Vehicle").
		Preload("Quotes").
		Preload("Quotes.Shop").
		Preload("Quotes.LineItems").
		Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": requests})
}

// ListOpenQuoteRequests returns the open requests visible to the calling
// shop: broadcast ones plus those targeting it, minus any it already
// quoted.
func ListOpenQuoteRequests(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var requests []models.QuoteRequest
	quoted := storage.DB.Model(&models.Quote{}).Select("quote_request_id").Where("shop_id = ?", shop.ID)
	if err := storage.DB.Where("status = ?", models.QuoteRequestStatusOpen).
		Where("id NOT IN (?)", quoted).
		Preload("Vehicle").
		Preload("Owner").
		Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	visible := make([]models.QuoteRequest, 0, len(requests))
	for _, request := range requests {
		if request.Broadcast {
			visible = append(visible, request)
			continue
		}
		var targets []uint
		if request.TargetShopIDs != nil {
			json.Unmarshal(request.TargetShopIDs, &targets)
		}
		if slices.Contains(targets, shop.ID) {
			visible = append(visible, request)
		}
	}

	ctx.JSON(iris.Map{"success": true, "data": visible})
}

func GetQuoteRequest(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	requestID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var request models.QuoteRequest
	if err := storage.DB.Preload("Vehicle").
		Preload("Quotes").
		Preload("Quotes.Shop").
		Preload("Quotes.LineItems").
		First(&request, requestID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if request.OwnerID != userID && !shopMaySeeRequest(userID, request) {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(request)
}

// CloseQuoteRequest lets the owner withdraw an open request.
func CloseQuoteRequest(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	requestID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var request models.QuoteRequest
	if err := storage.DB.Where("id = ? AND owner_id = ?", requestID, userID).First(&request).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if request.Status != models.QuoteRequestStatusOpen {
		utils.CreateConflict("Request is not open.", ctx)
		return
	}

	request.Status = models.QuoteRequestStatusClosed
	if err := storage.DB.Save(&request).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(request)
}

// shopMaySeeRequest checks targeted visibility for shop accounts.
func shopMaySeeRequest(userID uint, request models.QuoteRequest) bool {
	var shop models.Shop
	if err := storage.DB.Where("user_id = ?", userID).First(&shop).Error; err != nil {
		return false
	}
	if request.Broadcast {
		return true
	}
	var targets []uint
	if request.TargetShopIDs != nil {
		json.Unmarshal(request.TargetShopIDs, &targets)
	}
	return slices.Contains(targets, shop.ID)
}
