package routes

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"github.com/xuri/excelize/v2"

	"mechmarket-server/models"
	"mechmarket-server/storage"
	"mechmarket-server/utils"
)

// Excel exports run as background jobs: the request returns a job ID right
// away and the client polls until the file is ready under /uploads.

type ExportJob struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"` // running, done, failed
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

var (
	exportMu   sync.Mutex
	exportJobs = map[string]*ExportJob{}
)

type ExportInput struct {
	Type string `json:"type" validate:"required,oneof=bookings invoices"`
}

func AdminStartExport(ctx iris.Context) {
	var input ExportInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	job := &ExportJob{
		ID:        uuid.NewString(),
		Type:      input.Type,
		Status:    "running",
		CreatedAt: time.Now(),
	}
	exportMu.Lock()
	exportJobs[job.ID] = job
	exportMu.Unlock()

	go runExport(job)

	ctx.StatusCode(iris.StatusAccepted)
	ctx.JSON(job)
}

func AdminGetExport(ctx iris.Context) {
	jobID := ctx.Params().Get("id")

	exportMu.Lock()
	job, ok := exportJobs[jobID]
	exportMu.Unlock()
	if !ok {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(job)
}

func runExport(job *ExportJob) {
	var url string
	var err error
	switch job.Type {
	case "bookings":
		url, err = exportBookings()
	case "invoices":
		url, err = exportInvoices()
	default:
		err = fmt.Errorf("unknown export type %q", job.Type)
	}

	exportMu.Lock()
	defer exportMu.Unlock()
	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
		return
	}
	job.Status = "done"
	job.URL = url
}

func exportBookings() (string, error) {
	var bookings []models.Booking
	if err := storage.DB.Preload("Shop").Preload("Owner").
		Order("created_at DESC").Find(&bookings).Error; err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"ID", "Status", "Shop", "Owner", "Date", "Time", "Service", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, booking := range bookings {
		values := []interface{}{
			booking.ID,
			booking.Status,
			booking.Shop.Name,
			booking.Owner.Email,
			booking.ScheduledDate,
			booking.ScheduledTime,
			booking.ServiceDescription,
			booking.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return saveWorkbook(f, "bookings")
}

func exportInvoices() (string, error) {
	var invoices []models.Invoice
	if err := storage.DB.Order("created_at DESC").Find(&invoices).Error; err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Number", "Booking", "Status", "Parts", "Labor", "Fees", "Taxes", "Total", "Deposit", "Due", "Variance", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	for row, invoice := range invoices {
		values := []interface{}{
			invoice.Number,
			invoice.BookingID,
			invoice.Status,
			invoice.PartsCostTotal,
			invoice.LaborCostTotal,
			invoice.ShopFees,
			invoice.Taxes,
			invoice.Total,
			invoice.DepositApplied,
			invoice.AmountDue,
			invoice.Variance,
			invoice.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	return saveWorkbook(f, "invoices")
}

func saveWorkbook(f *excelize.File, prefix string) (string, error) {
	name := fmt.Sprintf("%s-%s.xlsx", prefix, uuid.NewString()[:8])
	if err := f.SaveAs(filepath.Join(storage.UploadDir(), name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
