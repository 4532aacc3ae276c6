package Controllers

import (
	"AgriDealer/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceController struct {
	DB *gorm.DB
}

func NewDeviceController(db *gorm.DB) *DeviceController {
	return &DeviceController{DB: db}
}

type DeviceInput struct {
	Token string `json:"token" validate:"required,min=20"`
}

// RegisterDevice stores an FCM token for the current user. A token moves to the
// latest user that registers it.
func (c *DeviceController) RegisterDevice(ctx *fiber.Ctx) error {
	var input DeviceInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if errs := validateInput(input); errs != nil {
		return validationFailed(ctx, errs)
	}

	device := Models.DeviceToken{UserID: currentUser(ctx).Id, Value: input.Token}
	result := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "value"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
	}).Create(&device)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register device"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Device registered"})
}
