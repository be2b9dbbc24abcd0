package routes

import (
	"encoding/json"
	"strconv"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type ShopInput struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	PhoneNumber string   `json:"phoneNumber"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Photos      []string `json:"photos"`
	Specialties []string `json:"specialties"`
	LaborRate   float64  `json:"laborRate" validate:"min=0"`
}

// CreateShop creates the caller's shop profile. One shop per shop account.
func CreateShop(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input ShopInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existing models.Shop
	if err := storage.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		utils.CreateConflict("Shop profile already exists.", ctx)
		return
	}

	shop := models.Shop{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
		Photos:      marshalJSON(input.Photos),
		Specialties: marshalJSON(input.Specialties),
		LaborRate:   input.LaborRate,
	}

	if err := storage.DB.Create(&shop).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(shop)
}

func UpdateShop(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var input ShopInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	shop.Name = input.Name
	shop.Description = input.Description
	shop.Address = input.Address
	shop.City = input.City
	shop.PhoneNumber = input.PhoneNumber
	shop.Email = input.Email
	shop.Photos = marshalJSON(input.Photos)
	shop.Specialties = marshalJSON(input.Specialties)
	shop.LaborRate = input.LaborRate

	if err := storage.DB.Save(&shop).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(shop)
}

func GetShop(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid shop ID"})
		return
	}

	var shop models.Shop
	if err := storage.DB.Preload("Services", "is_active = ?", true).First(&shop, id).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(shop)
}

// ListShops supports browse and search: ?q= matches name, ?city= filters,
// paginated.
func ListShops(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 20)
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := storage.DB.Model(&models.Shop{})
	if q := ctx.URLParam("q"); q != "" {
		query = query.Where("lower(name) LIKE lower(?)", "%"+q+"%")
	}
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("lower(city) = lower(?)", city)
	}
	if ctx.URLParamDefault("verified", "") == "true" {
		query = query.Where("is_verified = ?", true)
	}

	var total int64
	query.Count(&total)

	var shops []models.Shop
	if err := query.Preload("Services", "is_active = ?", true).
		Order("stars DESC, review_count DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&shops).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, shops, page, perPage, total)
}

// shopForUser loads the caller's shop or writes the error response.
func shopForUser(userID uint, ctx iris.Context) (models.Shop, bool) {
	var shop models.Shop
	if err := storage.DB.Where("user_id = ?", userID).First(&shop).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"message": "Shop profile not found"})
		return models.Shop{}, false
	}
	return shop, true
}

func marshalJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(encoded)
}

func parseUintParam(ctx iris.Context, name string) (uint, bool) {
	raw := ctx.Params().Get(name)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid " + name})
		return 0, false
	}
	return uint(parsed), true
}
