package Controllers

import (
	"strconv"

	"AgriDealer/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FarmerController handles a dealer's farmers and their plots
type FarmerController struct {
	DB *gorm.DB
}

func NewFarmerController(db *gorm.DB) *FarmerController {
	return &FarmerController{DB: db}
}

type FarmerInput struct {
	FullName    string `json:"full_name" validate:"required"`
	Mobile      string `json:"mobile" validate:"omitempty,numeric,min=10,max=13"`
	Village     string `json:"village"`
	Mandal      string `json:"mandal"`
	District    string `json:"district"`
	PrimaryCrop string `json:"primary_crop"`
}

type PlotInput struct {
	Acreage   float64 `json:"acreage" validate:"gt=0"`
	SoilType  string  `json:"soil_type"`
	PlantType string  `json:"plant_type"`
	PlantedAt string  `json:"planted_at"`
}

// loadFarmer finds a farmer of the current dealer from the :id param
func loadFarmer(db *gorm.DB, ctx *fiber.Ctx) (Models.Farmer, *fiber.Error) {
	var farmer Models.Farmer
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return farmer, fiber.NewError(fiber.StatusBadRequest, "Invalid farmer ID")
	}
	if err := db.Where("dealer_id = ?", currentUser(ctx).Dealer()).First(&farmer, id).Error; err != nil {
		return farmer, fiber.NewError(fiber.StatusNotFound, "Farmer not found")
	}
	return farmer, nil
}

func fail(ctx *fiber.Ctx, e *fiber.Error) error {
	return ctx.Status(e.Code).JSON(fiber.Map{"error": e.Message})
}

// GetFarmers lists the dealer's farmers, optionally filtered by ?village=
func (c *FarmerController) GetFarmers(ctx *fiber.Ctx) error {
	query := c.DB.Where("dealer_id = ?", currentUser(ctx).Dealer())
	if village := ctx.Query("village"); village != "" {
		query = query.Where("village = ?", village)
	}

	var farmers []Models.Farmer
	if err := query.Order("full_name").Find(&farmers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve farmers"})
	}
	return ctx.JSON(farmers)
}

func (c *FarmerController) GetFarmer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid farmer ID"})
	}

	var farmer Models.Farmer
	result := c.DB.Preload("Plots").Where("dealer_id = ?", currentUser(ctx).Dealer()).First(&farmer, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Farmer not found"})
	}
	return ctx.JSON(farmer)
}

func (c *FarmerController) CreateFarmer(ctx *fiber.Ctx) error {
	var input FarmerInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if errs := validateInput(input); errs != nil {
		return validationFailed(ctx, errs)
	}

	farmer := Models.Farmer{
		DealerID:    currentUser(ctx).Dealer(),
		FullName:    input.FullName,
		Mobile:      input.Mobile,
		Village:     input.Village,
		Mandal:      input.Mandal,
		District:    input.District,
		PrimaryCrop: input.PrimaryCrop,
	}
	if err := c.DB.Create(&farmer).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create farmer"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(farmer)
}

// AddPlot records a plot for the farmer. An empty planted_at leaves the date unknown.
func (c *FarmerController) AddPlot(ctx *fiber.Ctx) error {
	farmer, ferr := loadFarmer(c.DB, ctx)
	if ferr != nil {
		return fail(ctx, ferr)
	}

	var input PlotInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if errs := validateInput(input); errs != nil {
		return validationFailed(ctx, errs)
	}

	plantedAt, err := Models.ParseOccurredAt(input.PlantedAt)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid planted_at date"})
	}

	plot := Models.FarmPlot{
		FarmerID:  farmer.ID,
		Acreage:   input.Acreage,
		SoilType:  input.SoilType,
		PlantType: input.PlantType,
		PlantedAt: plantedAt,
	}
	if err := c.DB.Create(&plot).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create plot"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(plot)
}
