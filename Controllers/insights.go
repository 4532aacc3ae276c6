package Controllers

import (
	"fmt"
	"strconv"
	"time"

	"AgriDealer/Analytics"
	"AgriDealer/Models"
	"AgriDealer/Reports"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InsightsController serves customer segments, bundle suggestions and vendor sales trends
type InsightsController struct {
	DB           *gorm.DB
	Segmentation Analytics.SegmentationConfig
}

func NewInsightsController(db *gorm.DB) *InsightsController {
	return &InsightsController{DB: db, Segmentation: Analytics.DefaultSegmentationConfig()}
}

// GetSegments groups the dealer's farmers into whales, loyalists, dormant and prospects
func (c *InsightsController) GetSegments(ctx *fiber.Ctx) error {
	now, err := referenceDate(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}
	data, err := Models.LoadDealerData(c.DB, currentUser(ctx).Dealer())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dealer data"})
	}
	return ctx.JSON(c.Segmentation.Segment(data.Farmers, data.Orders, now))
}

// GetBundles suggests product pairs from the dealer's multi-item orders
func (c *InsightsController) GetBundles(ctx *fiber.Ctx) error {
	data, err := Models.LoadDealerData(c.DB, currentUser(ctx).Dealer())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dealer data"})
	}
	return ctx.JSON(Analytics.FindBundles(data.Orders, data.Items, data.Listings, data.Products))
}

func (c *InsightsController) trend(ctx *fiber.Ctx) (string, []Analytics.TrendPoint, *fiber.Error) {
	id, err := strconv.Atoi(ctx.Params("vendor_id"))
	if err != nil || id <= 0 {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Invalid vendor ID")
	}
	if uint(id) != currentUser(ctx).Dealer() {
		return "", nil, fiber.NewError(fiber.StatusForbidden, "You can only view your own sales")
	}
	now, err := referenceDate(ctx)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	// a little before the first bucket so every order in the window is loaded
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -6, 0)
	orders, items, listings, err := Models.VendorSales(c.DB, uint(id), since)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to load sales")
	}
	vendorID := strconv.Itoa(id)
	return vendorID, Analytics.MonthlyTrend(orders, items, listings, vendorID, now), nil
}

// GetTrend returns six monthly revenue buckets ending at ?date=
func (c *InsightsController) GetTrend(ctx *fiber.Ctx) error {
	_, points, ferr := c.trend(ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}
	return ctx.JSON(points)
}

func (c *InsightsController) ExportTrend(ctx *fiber.Ctx) error {
	vendorID, points, ferr := c.trend(ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}
	buf, err := Reports.TrendWorkbook(vendorID, points)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("Failed to build report: %v", err)})
	}

	filename := fmt.Sprintf("sales_trend_%s_%s.xlsx", vendorID, time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", Reports.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return ctx.Send(buf.Bytes())
}
