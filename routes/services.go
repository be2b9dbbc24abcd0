package routes

import (
	"github.com/kataras/iris/v12"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type ShopServiceInput struct {
	Name           string  `json:"name" validate:"required,max=256"`
	Description    string  `json:"description"`
	BasePrice      float64 `json:"basePrice" validate:"min=0"`
	EstimatedHours float64 `json:"estimatedHours" validate:"min=0"`
	Category       string  `json:"category"`
	IsActive       *bool   `json:"isActive"`
}

func CreateShopService(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var input ShopServiceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	service := models.ShopService{
		ShopID:         shop.ID,
		Name:           input.Name,
		Description:    input.Description,
		BasePrice:      input.BasePrice,
		EstimatedHours: input.EstimatedHours,
		Category:       input.Category,
		IsActive:       true,
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := storage.DB.Create(&service).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(service)
}

func UpdateShopService(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	serviceID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var service models.ShopService
	if err := storage.DB.Where("id = ? AND shop_id = ?", serviceID, shop.ID).First(&service).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input ShopServiceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	service.Name = input.Name
	service.Description = input.Description
	service.BasePrice = input.BasePrice
	service.EstimatedHours = input.EstimatedHours
	service.Category = input.Category
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := storage.DB.Save(&service).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(service)
}

func DeleteShopService(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	serviceID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	result := storage.DB.Where("id = ? AND shop_id = ?", serviceID, shop.ID).Delete(&models.ShopService{})
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

func ListShopServices(ctx iris.Context) {
	shopID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var services []models.ShopService
	query := storage.DB.Where("shop_id = ? AND is_active = ?", shopID, true)
	if category := ctx.URLParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": services})
}
