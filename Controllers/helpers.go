package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/Services"
	"Stockbook/config"
)

const internalErrorMessage = "Internal server error"

var errInvalidID = errors.New("invalid id")

// respond maps service errors onto HTTP statuses. Anything unrecognised is
// logged and answered with a generic 500.
func respond(ctx *fiber.Ctx, log *logrus.Logger, funcName string, err error) error {
	var validation *Services.ValidationError
	var notFound *Services.NotFoundError
	var conflict *Services.ConflictError

	switch {
	case errors.As(err, &validation):
		body := fiber.Map{"error": validation.Message}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(body)
	case errors.As(err, &notFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	case errors.As(err, &conflict):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflict.Error()})
	}

	config.LogError(log, "Controllers", funcName, ctx.Method()+" "+ctx.Path(), nil, err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": internalErrorMessage})
}

// lookupFailed answers a failed First(): 404 for a missing row, otherwise respond.
func lookupFailed(ctx *fiber.Ctx, log *logrus.Logger, funcName, entity string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": entity + " not found"})
	}
	return respond(ctx, log, funcName, err)
}

func paramID(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := ctx.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func invalidID(ctx *fiber.Ctx, entity string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + entity + " ID"})
}

func badBody(ctx *fiber.Ctx, err error) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body: " + err.Error()})
}

// queryID reads an optional positive integer query value such as ?customer=3.
func queryID(ctx *fiber.Ctx, key string) (*uint, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, &Services.ValidationError{
			Message: key + " must be a positive integer",
			Fields:  map[string]string{key: key + " must be a positive integer"},
		}
	}
	id := uint(n)
	return &id, nil
}

// currentUserID is the authenticated user's id, or nil when auth is off.
func currentUserID(ctx *fiber.Ctx) *uint {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok || user.ID == 0 {
		return nil
	}
	id := user.ID
	return &id
}

func salesFilter(ctx *fiber.Ctx) (Services.SalesFilter, error) {
	var filter Services.SalesFilter
	r, err := Services.ParseDateRange(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return filter, err
	}
	filter.Range = r
	if filter.CustomerID, err = queryID(ctx, "customer"); err != nil {
		return filter, err
	}
	if filter.ProductID, err = queryID(ctx, "product"); err != nil {
		return filter, err
	}
	return filter, nil
}
