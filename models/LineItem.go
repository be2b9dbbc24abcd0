package models

import "gorm.io/gorm"

// LineItem is one billable unit on a quote or an invoice. Exactly one of
// QuoteID / InvoiceID is set. Line items are immutable once created; totals
// on the parent are always recomputed from them, never edited directly.
type LineItem struct {
	gorm.Model
	QuoteID     *uint   `json:"quoteID" gorm:"index"`
	InvoiceID   *uint   `json:"invoiceID" gorm:"index"`
	Description string  `json:"description" gorm:"not null"`
	PartCost    float64 `json:"partCost"`
	Quantity    int     `json:"quantity" gorm:"default:1"`
	LaborHours  float64 `json:"laborHours"`
	LaborRate   float64 `json:"laborRate"`
	Subtotal    float64 `json:"subtotal"`
}
