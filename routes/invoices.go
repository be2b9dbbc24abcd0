package routes

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"mechmarket-server/billing"
	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type InvoiceInput struct {
	BookingID uint            `json:"bookingID" validate:"required"`
	LineItems []LineItemInput `json:"lineItems" validate:"required,min=1,dive"`
	ShopFees  float64         `json:"shopFees" validate:"min=0"`
	Notes     string          `json:"notes"`
}

// CreateInvoice issues the final bill for a booking whose work is done.
// One invoice per booking; totals and variance are computed server-side,
// and the deposit from an accepted quote is credited automatically.
func CreateInvoice(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var input InvoiceInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.Where("id = ? AND shop_id = ?", input.BookingID, shop.ID).First(&booking).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if booking.Status != models.BookingStatusInProgress {
		utils.CreateConflict("Invoice requires the job to be in progress.", ctx)
		return
	}

	var existing models.Invoice
	if err := storage.DB.Where("booking_id = ?", booking.ID).First(&existing).Error; err == nil {
		utils.CreateConflict("Booking already has an invoice.", ctx)
		return
	}

	items := make([]billing.LineItem, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		items = append(items, billing.LineItem{
			Description: item.Description,
			PartCost:    item.PartCost,
			Quantity:    item.Quantity,
			LaborHours:  item.LaborHours,
			LaborRate:   item.LaborRate,
		})
	}
	totals := billing.CalculateTotals(items, input.ShopFees, billing.DefaultTaxRate)

	// Variance against the accepted quote, deposit credited from it.
	var variance, deposit float64
	if booking.QuoteID != nil {
		var quote models.Quote
		if err := storage.DB.First(&quote, *booking.QuoteID).Error; err == nil {
			variance = billing.Variance(quote.EstimatedTotal, totals.Total)
			deposit = billing.Deposit(quote.EstimatedTotal, billing.DefaultDepositPercent)
		}
	}

	invoice := models.Invoice{
		BookingID:      booking.ID,
		ShopID:         shop.ID,
		OwnerID:        booking.OwnerID,
		Number:         "INV-" + strings.ToUpper(uuid.NewString()[:8]),
		PartsCostTotal: totals.PartsCostTotal,
		LaborCostTotal: totals.LaborCostTotal,
		ShopFees:       totals.ShopFees,
		Taxes:          totals.Taxes,
		Total:          totals.Total,
		DepositApplied: deposit,
		AmountDue:      billing.Round2(totals.Total - deposit),
		Variance:       variance,
		Notes:          input.Notes,
		Status:         models.InvoiceStatusPending,
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for _, item := range input.LineItems {
			lineItem := models.LineItem{
				InvoiceID:   &invoice.ID,
				Description: item.Description,
				PartCost:    item.PartCost,
				Quantity:    item.Quantity,
				LaborHours:  item.LaborHours,
				LaborRate:   item.LaborRate,
				Subtotal: billing.LineItemSubtotal(billing.LineItem{
					PartCost:   item.PartCost,
					Quantity:   item.Quantity,
					LaborHours: item.LaborHours,
					LaborRate:  item.LaborRate,
				}),
			}
			if err := tx.Create(&lineItem).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifier.NotifyInvoiceIssued(booking.OwnerID, invoice.ID)

	storage.DB.Preload("LineItems").First(&invoice, invoice.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"invoice":       invoice,
		"overTolerance": billing.OverTolerance(invoice.Variance, billing.DefaultVarianceTolerance),
	})
}

func GetInvoice(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	invoiceID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := storage.DB.Preload("LineItems").First(&invoice, invoiceID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if !mayActOnInvoice(userID, invoice) {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"invoice":       invoice,
		"overTolerance": billing.OverTolerance(invoice.Variance, billing.DefaultVarianceTolerance),
	})
}

// ApproveInvoice settles the bill: the owner approves, the invoice flips
// to PAID and the booking to COMPLETED in the same transaction.
func ApproveInvoice(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	invoiceID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var invoice models.Invoice
	if err := storage.DB.Where("id = ? AND owner_id = ?", invoiceID, userID).First(&invoice).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	if invoice.Status != models.InvoiceStatusPending {
		utils.CreateConflict("Invoice is already settled.", ctx)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&invoice).Update("status", models.InvoiceStatusPaid).Error; err != nil {
			return err
		}
		return tx.Model(&models.Booking{}).Where("id = ?", invoice.BookingID).
			Update("status", models.BookingStatusCompleted).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var shop models.Shop
	if err := storage.DB.First(&shop, invoice.ShopID).Error; err == nil {
		go notifier.NotifyInvoicePaid(shop.UserID, invoice.ID)
	}

	invoice.Status = models.InvoiceStatusPaid
	ctx.JSON(invoice)
}

func ListMyInvoices(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role := ctx.Values().Get("role").(models.Role)

	var invoices []models.Invoice
	query := storage.DB.Preload("LineItems").Order("created_at DESC")

	switch role {
	case models.RoleOwner:
		query = query.Where("owner_id = ?", userID)
	case models.RoleShop:
		shop, ok := shopForUser(userID, ctx)
		if !ok {
			return
		}
		query = query.Where("shop_id = ?", shop.ID)
	case models.RoleAdmin:
		// admins see everything
	}

	if err := query.Find(&invoices).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": invoices})
}

func mayActOnInvoice(userID uint, invoice models.Invoice) bool {
	if invoice.OwnerID == userID {
		return true
	}
	var shop models.Shop
	if err := storage.DB.First(&shop, invoice.ShopID).Error; err != nil {
		return false
	}
	return shop.UserID == userID
}
