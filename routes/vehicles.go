package routes

import (
	"github.com/kataras/iris/v12"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type VehicleInput struct {
	Make        string   `json:"make" validate:"required,max=64"`
	Model       string   `json:"model" validate:"required,max=64"`
	Year        int      `json:"year" validate:"min=1900,max=2100"`
	PlateNumber string   `json:"plateNumber"`
	VIN         string   `json:"vin" validate:"omitempty,len=17"`
	Mileage     int      `json:"mileage" validate:"min=0"`
	Photos      []string `json:"photos"`
}

func CreateVehicle(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input VehicleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	vehicle := models.Vehicle{
		OwnerID:      userID,
		Make:         input.Make,
		VehicleModel: input.Model,
		Year:         input.Year,
		PlateNumber:  input.PlateNumber,
		VIN:          input.VIN,
		Mileage:      input.Mileage,
		Photos:       marshalJSON(input.Photos),
	}

	if err := storage.DB.Create(&vehicle).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(vehicle)
}

func ListMyVehicles(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var vehicles []models.Vehicle
	if err := storage.DB.Where("owner_id = ?", userID).Order("created_at DESC").Find(&vehicles).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": vehicles})
}

func UpdateVehicle(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	vehicleID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var vehicle models.Vehicle
	if err := storage.DB.Where("id = ? AND owner_id = ?", vehicleID, userID).First(&vehicle).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var input VehicleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	vehicle.Make = input.Make
	vehicle.VehicleModel = input.Model
	vehicle.Year = input.Year
	vehicle.PlateNumber = input.PlateNumber
	vehicle.VIN = input.VIN
	vehicle.Mileage = input.Mileage
	if input.Photos != nil {
		vehicle.Photos = marshalJSON(input.Photos)
	}

	if err := storage.DB.Save(&vehicle).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(vehicle)
}

func DeleteVehicle(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	vehicleID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	// A vehicle with an active booking cannot disappear under it.
	var activeCount int64
	storage.DB.Model(&models.Booking{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID,
			[]string{models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusInProgress}).
		Count(&activeCount)
	if activeCount > 0 {
		utils.CreateConflict("Vehicle has active bookings.", ctx)
		return
	}

	result := storage.DB.Where("id = ? AND owner_id = ?", vehicleID, userID).Delete(&models.Vehicle{})
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
