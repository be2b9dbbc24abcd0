package scheduling

import (
	"errors"

	"gorm.io/gorm"

	"mechmarket-server/models"
)

// GormSlotRepo stores slots in the time_slots table. The booking claim is a
// single conditional UPDATE guarded on is_booked = false, so the database
// serializes concurrent claims and at most one wins.
type GormSlotRepo struct {
	db *gorm.DB
}

func NewGormSlotRepo(db *gorm.DB) *GormSlotRepo {
	return &GormSlotRepo{db: db}
}

func toSlot(m models.TimeSlot) Slot {
	return Slot{
		ID:        m.ID,
		ShopID:    m.ShopID,
		Date:      m.Date,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		IsBooked:  m.IsBooked,
		BookingID: m.BookingID,
	}
}

func (r *GormSlotRepo) Upsert(shopID uint, in SlotInput) (Slot, error) {
	var existing models.TimeSlot
	err := r.db.Where("shop_id = ? AND date = ? AND start_time = ?",
		shopID, in.Date, in.StartTime).First(&existing).Error

	if err == nil {
		existing.EndTime = in.EndTime
		if saveErr := r.db.Save(&existing).Error; saveErr != nil {
			return Slot{}, saveErr
		}
		return toSlot(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Slot{}, err
	}

	slot := models.TimeSlot{
		ShopID:    shopID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if createErr := r.db.Create(&slot).Error; createErr != nil {
		return Slot{}, createErr
	}
	return toSlot(slot), nil
}

func (r *GormSlotRepo) FindByID(id uint) (Slot, bool, error) {
	var m models.TimeSlot
	err := r.db.First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Slot{}, false, nil
	}
	if err != nil {
		return Slot{}, false, err
	}
	return toSlot(m), true, nil
}

func (r *GormSlotRepo) FindByKey(shopID uint, date, startTime string) (Slot, bool, error) {
	var m models.TimeSlot
	err := r.db.Where("shop_id = ? AND date = ? AND start_time = ?",
		shopID, date, startTime).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Slot{}, false, nil
	}
	if err != nil {
		return Slot{}, false, err
	}
	return toSlot(m), true, nil
}

func (r *GormSlotRepo) FindByBooking(bookingID uint) (Slot, bool, error) {
	var m models.TimeSlot
	err := r.db.Where("booking_id = ?", bookingID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Slot{}, false, nil
	}
	if err != nil {
		return Slot{}, false, err
	}
	return toSlot(m), true, nil
}

func (r *GormSlotRepo) ListRange(shopID uint, from, to string) ([]Slot, error) {
	var rows []models.TimeSlot
	err := r.db.Where("shop_id = ? AND date >= ? AND date <= ?", shopID, from, to).
		Order("date ASC, start_time ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, 0, len(rows))
	for _, m := range rows {
		slots = append(slots, toSlot(m))
	}
	return slots, nil
}

func (r *GormSlotRepo) Claim(slotID, bookingID uint) (bool, error) {
	result := r.db.Model(&models.TimeSlot{}).
		Where("id = ? AND is_booked = ?", slotID, false).
		Updates(map[string]interface{}{"is_booked": true, "booking_id": bookingID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormSlotRepo) Release(slotID uint) error {
	return r.db.Model(&models.TimeSlot{}).
		Where("id = ?", slotID).
		Updates(map[string]interface{}{"is_booked": false, "booking_id": nil}).Error
}

func (r *GormSlotRepo) Delete(slotID uint) error {
	return r.db.Delete(&models.TimeSlot{}, slotID).Error
}
