package Controllers

import (
	"fmt"
	"time"

	"AgriDealer/Analytics"
	"AgriDealer/Constants"
	"AgriDealer/Models"
	"AgriDealer/Reports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StatementController serves a farmer's balance, aging and reminder advice
type StatementController struct {
	DB     *gorm.DB
	Policy Analytics.ReminderPolicy
}

func NewStatementController(db *gorm.DB) *StatementController {
	return &StatementController{DB: db, Policy: Constants.ReminderPolicy()}
}

func (c *StatementController) load(ctx *fiber.Ctx) (Analytics.Statement, []Analytics.LedgerEntry, *fiber.Error) {
	farmer, ferr := loadFarmer(c.DB, ctx)
	if ferr != nil {
		return Analytics.Statement{}, nil, ferr
	}
	asOf, err := referenceDate(ctx)
	if err != nil {
		return Analytics.Statement{}, nil, fiber.NewError(fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	_, stored, err := Models.FarmerLedger(c.DB, farmer.DealerID, farmer.ID)
	if err != nil {
		return Analytics.Statement{}, nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to retrieve ledger")
	}
	entries := make([]Analytics.LedgerEntry, 0, len(stored))
	for _, e := range stored {
		entries = append(entries, e.ToAnalytics())
	}
	return c.Policy.BuildStatement(farmer.ToAnalytics(), entries, asOf), entries, nil
}

// GetStatement returns balance, aging buckets, bucket shares and the reminder advice
func (c *StatementController) GetStatement(ctx *fiber.Ctx) error {
	statement, _, ferr := c.load(ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}
	return ctx.JSON(statement)
}

// ExportStatement downloads the statement as xlsx
func (c *StatementController) ExportStatement(ctx *fiber.Ctx) error {
	statement, entries, ferr := c.load(ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}

	buf, err := Reports.StatementWorkbook(statement, entries)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("Failed to build statement: %v", err)})
	}

	filename := fmt.Sprintf("statement_%s_%s.xlsx", statement.Farmer.ID, time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", Reports.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(buf.Bytes())
}
