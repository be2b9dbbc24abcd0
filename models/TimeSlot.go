package models

import "gorm.io/gorm"

// TimeSlot is a shop-owned unit of bookable time. The composite unique index
// on (shop_id, date, start_time) is what makes the booking claim safe: a slot
// can only ever transition unbooked -> booked through an atomic conditional
// update keyed on that index (see scheduling package).
type TimeSlot struct {
	gorm.Model
	ShopID    uint   `json:"shopID" gorm:"not null;uniqueIndex:idx_shop_date_start"`
	Date      string `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:idx_shop_date_start"`
	StartTime string `json:"startTime" gorm:"type:varchar(5);not null;uniqueIndex:idx_shop_date_start"`
	EndTime   string `json:"endTime" gorm:"type:varchar(5);not null"`
	IsBooked  bool   `json:"isBooked" gorm:"default:false;index"`
	BookingID *uint  `json:"bookingID" gorm:"index"`
}
