package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/Services"
)

type StockController struct {
	DB     *gorm.DB
	Ledger *Services.Ledger
	Log    *logrus.Logger
}

func NewStockController(db *gorm.DB, ledger *Services.Ledger, log *logrus.Logger) *StockController {
	return &StockController{DB: db, Ledger: ledger, Log: log}
}

// GetStock lists every product with its quantity on hand.
// ?lowStock=true keeps products in (0, 10]; ?category= narrows by category.
func (c *StockController) GetStock(ctx *fiber.Ctx) error {
	stock, err := c.Ledger.Stock(ctx.UserContext(), Services.StockFilter{
		LowStock: ctx.Query("lowStock") == "true",
		Category: ctx.Query("category"),
	})
	if err != nil {
		return respond(ctx, c.Log, "GetStock", err)
	}
	return ctx.JSON(stock)
}

// GetMovements accepts ?product=, ?type=, ?startDate= and ?endDate=.
func (c *StockController) GetMovements(ctx *fiber.Ctx) error {
	productID, err := queryID(ctx, "product")
	if err != nil {
		return respond(ctx, c.Log, "GetMovements", err)
	}
	r, err := Services.ParseDateRange(ctx.Query("startDate"), ctx.Query("endDate"))
	if err != nil {
		return respond(ctx, c.Log, "GetMovements", err)
	}

	refType := Models.ReferenceType(ctx.Query("type"))
	switch refType {
	case "", Models.ReferenceInvoice, Models.ReferencePurchase, Models.ReferenceAdjustment:
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "type must be one of [invoice purchase adjustment]",
			"fields": fiber.Map{"type": "type must be one of [invoice purchase adjustment]"},
		})
	}

	movements, err := c.Ledger.Movements(ctx.UserContext(), Services.MovementFilter{
		ProductID: productID,
		Type:      refType,
		Range:     r,
	})
	if err != nil {
		return respond(ctx, c.Log, "GetMovements", err)
	}
	return ctx.JSON(movements)
}

func (c *StockController) CreateAdjustment(ctx *fiber.Ctx) error {
	var input Models.AdjustmentInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}

	adjustment, err := c.Ledger.Adjust(ctx.UserContext(), input, currentUserID(ctx))
	if err != nil {
		return respond(ctx, c.Log, "CreateAdjustment", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(adjustment)
}

func (c *StockController) DeleteAdjustment(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "adjustment")
	}
	if err := c.Ledger.DeleteAdjustment(ctx.UserContext(), id); err != nil {
		return respond(ctx, c.Log, "DeleteAdjustment", err)
	}
	return ctx.JSON(fiber.Map{"message": "Adjustment deleted successfully"})
}

// GetAudit reconciles documents against the ledger.
func (c *StockController) GetAudit(ctx *fiber.Ctx) error {
	report, err := Services.AuditLedger(ctx.UserContext(), c.DB, c.Log)
	if err != nil {
		return respond(ctx, c.Log, "GetAudit", err)
	}
	return ctx.JSON(fiber.Map{
		"consistent": report.Consistent(),
		"report":     report,
	})
}
