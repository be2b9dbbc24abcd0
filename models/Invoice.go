package models

import "gorm.io/gorm"

const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPaid    = "PAID"
)

// Invoice is the final bill, 1:1 with a completed booking. Variance is the
// percentage difference against the accepted quote's estimated total (0 when
// the booking had no quote). Approval by the owner flips the invoice to PAID
// and the parent booking to COMPLETED in one transaction.
type Invoice struct {
	gorm.Model
	BookingID      uint       `json:"bookingID" gorm:"not null;uniqueIndex"`
	ShopID         uint       `json:"shopID" gorm:"not null;index"`
	OwnerID        uint       `json:"ownerID" gorm:"not null;index"`
	Number         string     `json:"number" gorm:"type:varchar(40);uniqueIndex"`
	LineItems      []LineItem `json:"lineItems" gorm:"foreignKey:InvoiceID"`
	PartsCostTotal float64    `json:"partsCostTotal"`
	LaborCostTotal float64    `json:"laborCostTotal"`
	ShopFees       float64    `json:"shopFees"`
	Taxes          float64    `json:"taxes"`
	Total          float64    `json:"total"`
	DepositApplied float64    `json:"depositApplied"`
	AmountDue      float64    `json:"amountDue"`
	Variance       float64    `json:"variance"`
	Notes          string     `json:"notes" gorm:"type:text"`
	Status         string     `json:"status" gorm:"type:varchar(16);default:PENDING;index"`
}
