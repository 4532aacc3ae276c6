package Controllers

import (
	"strconv"

	"AgriDealer/Constants"
	"AgriDealer/Models"
	"AgriDealer/Weather"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ForecastController predicts a dealer's input demand against current stock
type ForecastController struct {
	DB      *gorm.DB
	Weather Weather.Provider
}

func NewForecastController(db *gorm.DB, weather Weather.Provider) *ForecastController {
	return &ForecastController{DB: db, Weather: weather}
}

// dealerParam reads :dealer_id and checks it belongs to the current user
func dealerParam(ctx *fiber.Ctx) (uint, *fiber.Error) {
	id, err := strconv.Atoi(ctx.Params("dealer_id"))
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid dealer ID")
	}
	if uint(id) != currentUser(ctx).Dealer() {
		return 0, fiber.NewError(fiber.StatusForbidden, "You can only view your own forecast")
	}
	return uint(id), nil
}

// GetForecast returns predictions ordered by largest stock gap. ?district= picks the
// weather location, otherwise the district of the dealer's first farmer is used.
func (c *ForecastController) GetForecast(ctx *fiber.Ctx) error {
	dealerID, ferr := dealerParam(ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}
	now, err := referenceDate(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	data, err := Models.LoadDealerData(c.DB, dealerID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load dealer data"})
	}

	district := ctx.Query("district")
	if district == "" && len(data.Farmers) > 0 {
		district = data.Farmers[0].District
	}
	weather, err := c.Weather.Snapshot(ctx.UserContext(), district, now)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Weather is unavailable"})
	}

	predictions := data.Forecast(Constants.ForecastConfig(), dealerID, weather, now)
	return ctx.JSON(fiber.Map{
		"district":    district,
		"weather":     weather,
		"predictions": predictions,
	})
}
