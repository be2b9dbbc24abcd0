package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"mechmarket-server/billing"
	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

type LineItemInput struct {
	Description string  `json:"description" validate:"required,max=512"`
	PartCost    float64 `json:"partCost" validate:"min=0"`
	Quantity    int     `json:"quantity" validate:"min=1"`
	LaborHours  float64 `json:"laborHours" validate:"min=0"`
	LaborRate   float64 `json:"laborRate" validate:"min=0"`
}

type QuoteInput struct {
	QuoteRequestID uint            `json:"quoteRequestID" validate:"required"`
	LineItems      []LineItemInput `json:"lineItems" validate:"required,min=1,dive"`
	ShopFees       float64         `json:"shopFees" validate:"min=0"`
	Confidence     float64         `json:"confidence" validate:"min=0,max=1"`
	Guaranteed     bool            `json:"guaranteed"`
	Notes          string          `json:"notes"`
	ValidDays      int             `json:"validDays" validate:"min=0,max=90"`
}

// SubmitQuote creates a shop's offer against an open request. Totals, tax
// and the confidence range are computed server-side; client-sent numbers
// are never trusted.
func SubmitQuote(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var input QuoteInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var request models.QuoteRequest
	if err := storage.DB.First(&request, input.QuoteRequestID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	if request.Status != models.QuoteRequestStatusOpen {
		utils.CreateConflict("Request is no longer open.", ctx)
		return
	}
	if !shopMaySeeRequest(userID, request) {
		utils.CreateForbidden(ctx)
		return
	}

	var existing models.Quote
	if err := storage.DB.Where("quote_request_id = ? AND shop_id = ?", request.ID, shop.ID).
		First(&existing).Error; err == nil {
		utils.CreateConflict("Shop already quoted this request.", ctx)
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
	rangeMin, rangeMax := billing.EstimatedRange(totals.Total, input.Confidence)

	quote := models.Quote{
		QuoteRequestID: request.ID,
		ShopID:         shop.ID,
		PartsCostTotal: totals.PartsCostTotal,
		LaborCostTotal: totals.LaborCostTotal,
		ShopFees:       totals.ShopFees,
		Taxes:          totals.Taxes,
		EstimatedTotal: totals.Total,
		RangeMin:       rangeMin,
		RangeMax:       rangeMax,
		Confidence:     input.Confidence,
		Guaranteed:     input.Guaranteed,
		Notes:          input.Notes,
		Status:         models.QuoteStatusQuoted,
	}
	if input.ValidDays > 0 {
		until := time.Now().AddDate(0, 0, input.ValidDays)
		quote.ValidUntil = &until
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		for _, item := range input.LineItems {
			lineItem := models.LineItem{
				QuoteID:     &quote.ID,
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

	// best-effort side channel, never blocks the write
	go notifier.NotifyQuoteReceived(request.OwnerID, quote.ID, shop.Name)

	storage.DB.Preload("LineItems").Preload("Shop").First(&quote, quote.ID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(quote)
}

// CompareQuotesForRequest returns the owner's quotes for one request in
// preference order, each annotated with its confidence label.
func CompareQuotesForRequest(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	requestID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var request models.QuoteRequest
	if err := storage.DB.Where("id = ? AND owner_id = ?", requestID, userID).First(&request).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var quotes []models.Quote
	if err := storage.DB.Where("quote_request_id = ? AND status = ?", requestID, models.QuoteStatusQuoted).
		Preload("Shop").Preload("LineItems").
		Order("created_at ASC").Find(&quotes).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ranks := make([]billing.QuoteRank, 0, len(quotes))
	byID := make(map[uint]models.Quote, len(quotes))
	for _, quote := range quotes {
		ranks = append(ranks, billing.QuoteRank{
			ID:             quote.ID,
			Guaranteed:     quote.Guaranteed,
			Confidence:     quote.Confidence,
			EstimatedTotal: quote.EstimatedTotal,
		})
		byID[quote.ID] = quote
	}

	ranked := billing.CompareQuotes(ranks)
	data := make([]iris.Map, 0, len(ranked))
	for _, rank := range ranked {
		quote := byID[rank.ID]
		data = append(data, iris.Map{
			"quote":           quote,
			"confidenceLabel": billing.ConfidenceLabel(quote.Confidence),
			"deposit":         billing.Deposit(quote.EstimatedTotal, billing.DefaultDepositPercent),
		})
	}

	ctx.JSON(iris.Map{"success": true, "data": data})
}

// AcceptQuote marks a quote accepted and the siblings rejected; only the
// requesting owner may accept, and only while the request is open.
func AcceptQuote(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	quoteID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var quote models.Quote
	if err := storage.DB.Preload("Shop").First(&quote, quoteID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var request models.QuoteRequest
	if err := storage.DB.Where("id = ? AND owner_id = ?", quote.QuoteRequestID, userID).First(&request).Error; err != nil {
		utils.CreateForbidden(ctx)
		return
	}

	if quote.Status != models.QuoteStatusQuoted {
		utils.CreateConflict("Quote cannot be accepted in its current state.", ctx)
		return
	}
	if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) {
		storage.DB.Model(&quote).Update("status", models.QuoteStatusExpired)
		utils.CreateConflict("Quote has expired.", ctx)
		return
	}

	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Quote{}).Where("id = ?", quote.ID).
			Update("status", models.QuoteStatusAccepted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Quote{}).
			Where("quote_request_id = ? AND id != ? AND status = ?",
				request.ID, quote.ID, models.QuoteStatusQuoted).
			Update("status", models.QuoteStatusRejected).Error; err != nil {
			return err
		}
		return tx.Model(&models.QuoteRequest{}).Where("id = ?", request.ID).
			Update("status", models.QuoteRequestStatusClosed).Error
	})
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	go notifier.NotifyQuoteAccepted(quote.Shop.UserID, quote.ID)

	quote.Status = models.QuoteStatusAccepted
	ctx.JSON(quote)
}

// RejectQuote lets the owner decline a single quote.
func RejectQuote(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	quoteID, ok := parseUintParam(ctx, "id")
	if !ok {
		return
	}

	var quote models.Quote
	if err := storage.DB.First(&quote, quoteID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var request models.QuoteRequest
	if err := storage.DB.Where("id = ? AND owner_id = ?", quote.QuoteRequestID, userID).First(&request).Error; err != nil {
		utils.CreateForbidden(ctx)
		return
	}

	if quote.Status != models.QuoteStatusQuoted {
		utils.CreateConflict("Quote cannot be rejected in its current state.", ctx)
		return
	}

	if err := storage.DB.Model(&quote).Update("status", models.QuoteStatusRejected).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	quote.Status = models.QuoteStatusRejected
	ctx.JSON(quote)
}

// ListMyQuotes returns the calling shop's submitted quotes.
func ListMyQuotes(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	shop, ok := shopForUser(userID, ctx)
	if !ok {
		return
	}

	var quotes []models.Quote
	if err := storage.DB.Where("shop_id = ?", shop.ID).
		Preload("LineItems").
		Order("created_at DESC").Find(&quotes).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "data": quotes})
}
