package Controllers

import (
	"log"
	"path/filepath"
	"strings"

	"AgriDealer/Analytics"
	"AgriDealer/Models"
	"AgriDealer/Reports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// LedgerController records credits, payments and disputes on a farmer's account
type LedgerController struct {
	DB *gorm.DB
}

func NewLedgerController(db *gorm.DB) *LedgerController {
	return &LedgerController{DB: db}
}

type LedgerEntryInput struct {
	Kind       string `json:"kind" validate:"required,entrykind"`
	Amount     string `json:"amount" validate:"required"`
	OccurredAt string `json:"occurred_at"`
	Note       string `json:"note" validate:"max=255"`
}

// GetLedger lists a farmer's entries, oldest first, with the running balance
func (c *LedgerController) GetLedger(ctx *fiber.Ctx) error {
	farmer, ferr := loadFarmer(c.DB, ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}

	_, entries, err := Models.FarmerLedger(c.DB, farmer.DealerID, farmer.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve ledger"})
	}

	core := make([]Analytics.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		core = append(core, e.ToAnalytics())
	}

	return ctx.JSON(fiber.Map{
		"farmer":  farmer,
		"entries": entries,
		"balance": Analytics.Balance(core),
	})
}

// CreateEntry records one ledger entry. Amounts arrive as strings to keep paise exact.
func (c *LedgerController) CreateEntry(ctx *fiber.Ctx) error {
	farmer, ferr := loadFarmer(c.DB, ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}

	var input LedgerEntryInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if errs := validateInput(input); errs != nil {
		return validationFailed(ctx, errs)
	}

	amount, err := Models.ParseAmount(input.Amount)
	if err != nil {
		return validationFailed(ctx, fiber.Map{"amount": err.Error()})
	}
	occurredAt, err := Models.ParseOccurredAt(input.OccurredAt)
	if err != nil {
		return validationFailed(ctx, fiber.Map{"occurred_at": err.Error()})
	}
	kind, _ := Analytics.ParseEntryKind(input.Kind)

	entry := Models.LedgerEntry{
		FarmerID:   farmer.ID,
		DealerID:   farmer.DealerID,
		Amount:     amount,
		Kind:       string(kind),
		OccurredAt: occurredAt,
		Note:       input.Note,
	}
	if err := c.DB.Create(&entry).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create ledger entry"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(entry)
}

// Dispute excludes an entry from every calculation until it is resolved
func (c *LedgerController) Dispute(ctx *fiber.Ctx) error {
	return c.setStatus(ctx, Models.StatusDisputed)
}

func (c *LedgerController) Resolve(ctx *fiber.Ctx) error {
	return c.setStatus(ctx, Models.StatusActive)
}

func (c *LedgerController) setStatus(ctx *fiber.Ctx, status string) error {
	var entry Models.LedgerEntry
	result := c.DB.Where("id = ? AND dealer_id = ?", ctx.Params("entry_id"), currentUser(ctx).Dealer()).First(&entry)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ledger entry not found"})
	}

	if err := c.DB.Model(&entry).Update("status", status).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update ledger entry"})
	}
	entry.Status = status
	return ctx.JSON(entry)
}

// ImportLedger bulk-loads entries from an uploaded xlsx. Unreadable rows are skipped and reported.
func (c *LedgerController) ImportLedger(ctx *fiber.Ctx) error {
	farmer, ferr := loadFarmer(c.DB, ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file provided. Please upload an xlsx file."})
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".xlsx" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file type. Please upload an xlsx file."})
	}

	src, err := file.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open uploaded file."})
	}
	defer src.Close()

	entries, skipped, err := Reports.ReadLedger(src, farmer.ID, farmer.DealerID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	for _, row := range skipped {
		log.Printf("Ledger import for farmer %d: skipped row %d: %s\n", farmer.ID, row.Row, row.Message)
	}

	if len(entries) > 0 {
		if err := c.DB.CreateInBatches(&entries, 100).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save imported entries"})
		}
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"imported": len(entries),
		"skipped":  skipped,
	})
}
