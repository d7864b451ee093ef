package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"Stockbook/Models"
	"Stockbook/Services"
)

type PurchaseController struct {
	Purchases *Services.PurchaseService
	Log       *logrus.Logger
}

func NewPurchaseController(purchases *Services.PurchaseService, log *logrus.Logger) *PurchaseController {
	return &PurchaseController{Purchases: purchases, Log: log}
}

// GetPurchases accepts ?status=, ?vendor=, ?startDate= and ?endDate=.
func (c *PurchaseController) GetPurchases(ctx *fiber.Ctx) error {
	r, err := Services.ParseDateRange(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return respond(ctx, c.Log, "GetPurchases", err)
	}
	vendorID, err := queryID(ctx, "vendor")
	if err != nil {
		return respond(ctx, c.Log, "GetPurchases", err)
	}

	purchases, err := c.Purchases.List(ctx.UserContext(), Services.PurchaseFilter{
		Status:   Models.PurchaseStatus(ctx.Query("status")),
		VendorID: vendorID,
		Range:    r,
	})
	if err != nil {
		return respond(ctx, c.Log, "GetPurchases", err)
	}
	return ctx.JSON(purchases)
}

func (c *PurchaseController) GetPurchase(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "purchase")
	}
	purchase, err := c.Purchases.Get(ctx.UserContext(), id)
	if err != nil {
		return respond(ctx, c.Log, "GetPurchase", err)
	}
	return ctx.JSON(purchase)
}

// CreatePurchase records received goods and adds them to stock.
func (c *PurchaseController) CreatePurchase(ctx *fiber.Ctx) error {
	var input Models.PurchaseInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}

	purchase, err := c.Purchases.Create(ctx.UserContext(), input, currentUserID(ctx))
	if err != nil {
		return respond(ctx, c.Log, "CreatePurchase", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(purchase)
}

func (c *PurchaseController) DeletePurchase(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "purchase")
	}
	if err := c.Purchases.Delete(ctx.UserContext(), id); err != nil {
		return respond(ctx, c.Log, "DeletePurchase", err)
	}
	return ctx.JSON(fiber.Map{"message": "Purchase deleted successfully"})
}
