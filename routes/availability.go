package routes

import (
	"errors"

	"github.com/kataras/iris/v12"

	"mechmarket-server/scheduling"
	"mechmarket-server/utils"
)

type CreateTimeSlotsInput struct {
	Slots []scheduling.SlotInput `json:"slots" validate:"required,min=1,dive"`
}

// CreateTimeSlots upserts a batch of slots for the calling shop. Each slot
// is written independently; if one fails, the earlier ones stay and the
// response says how far the batch got.
func CreateTimeSlots(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var input CreateTimeSlotsInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	created, err := slots.CreateSlots(shop.ID, input.Slots)
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{
			"message": "Failed to save all slots",
			"saved":   len(created),
			"data":    created,
		})
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "data": created})
}

// GetShopAvailability lists a shop's slots for a date range. Public:
// owners use it to pick a booking time.
func GetShopAvailability(ctx iris.Context) {
	shopID, ok := parseUintParam(ctx, "shopID")
	if !ok {
		return
	}

	from := ctx.URLParam("startDate")
	to := ctx.URLParam("endDate")
	if from == "" || to == "" {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Start date and end date are required"})
		return
	}

	listed, err := slots.ListSlots(shopID, from, to)
	if err != nil {
		ctx.StatusCode(iris.StatusInternalServerError)
		ctx.JSON(iris.Map{"message": "Failed to fetch availability"})
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": listed})
}

// DeleteTimeSlot removes one of the shop's unbooked slots. Booked slots
// are only ever freed through the booking lifecycle.
func DeleteTimeSlot(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	slotID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	err := slots.DeleteSlot(shop.ID, slotID)
	switch {
	case err == nil:
		ctx.JSON(iris.Map{"success": true})
	case errors.Is(err, scheduling.ErrSlotNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, scheduling.ErrNotSlotOwner):
		utils.CreateForbidden(ctx)
	case errors.Is(err, scheduling.ErrSlotBooked):
		utils.CreateConflict("Slot is booked and cannot be deleted.", ctx)
	default:
		utils.CreateInternalServerError(ctx)
	}
}
