package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuoteStatusPending  = "PENDING"
	QuoteStatusQuoted   = "QUOTED"
	QuoteStatusAccepted = "ACCEPTED"
	QuoteStatusRejected = "REJECTED"
	QuoteStatusExpired  = "EXPIRED"
)

// Quote is a shop's price offer against one quote request. All monetary
// fields are derived from the line items by the billing package at write
// time.
type Quote struct {
	gorm.Model
	QuoteRequestID uint       `json:"quoteRequestID" gorm:"not null;index"`
	ShopID         uint       `json:"shopID" gorm:"not null;index"`
	Shop           Shop       `json:"shop" gorm:"foreignKey:ShopID"`
	LineItems      []LineItem `json:"lineItems" gorm:"foreignKey:QuoteID"`
	PartsCostTotal float64    `json:"partsCostTotal"`
	LaborCostTotal float64    `json:"laborCostTotal"`
	ShopFees       float64    `json:"shopFees"`
	Taxes          float64    `json:"taxes"`
	EstimatedTotal float64    `json:"estimatedTotal"`
	RangeMin       float64    `json:"rangeMin"`
	RangeMax       float64    `json:"rangeMax"`
	Confidence     float64    `json:"confidence"`
	Guaranteed     bool       `json:"guaranteed" gorm:"default:false"`
	Notes          string     `json:"notes" gorm:"type:text"`
	ValidUntil     *time.Time `json:"validUntil"`
	Status         string     `json:"status" gorm:"type:varchar(16);default:QUOTED;index"`
}
