package Controllers

import (
	"errors"
	"strings"
	"time"

	"AgriDealer/Models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	validate   = validator.New()
	translator ut.Translator
)

func init() {
	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}
	validate.RegisterValidation("entrykind", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case Models.KindCreditGiven, Models.KindPaymentReceived, Models.KindInterestCharged, Models.KindDiscountGiven:
			return true
		}
		return false
	})
	validate.RegisterTranslation("entrykind", translator, func(ut ut.Translator) error {
		return ut.Add("entrykind", "{0} must be one of CREDIT_GIVEN, PAYMENT_RECEIVED, INTEREST_CHARGED, DISCOUNT_GIVEN", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("entrykind", fe.Field())
		return t
	})
}

// validateInput returns nil or a map of field name to English message
func validateInput(input interface{}) fiber.Map {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fiber.Map{"input": err.Error()}
	}
	messages := fiber.Map{}
	for _, fe := range fieldErrors {
		messages[fe.Field()] = fe.Translate(translator)
	}
	return messages
}

func validationFailed(ctx *fiber.Ctx, errs fiber.Map) error {
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": errs,
	})
}

// currentUser returns the user Verify stored on the request
func currentUser(ctx *fiber.Ctx) Models.User {
	user, _ := ctx.Locals("user").(Models.User)
	return user
}

// referenceDate reads ?date=2006-01-02, defaulting to now
func referenceDate(ctx *fiber.Ctx) (time.Time, error) {
	raw := ctx.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}
