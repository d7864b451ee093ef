package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"Stockbook/Models"
	"Stockbook/Services"
)

type InvoiceController struct {
	Invoices *Services.InvoiceService
	Log      *logrus.Logger
}

func NewInvoiceController(invoices *Services.InvoiceService, log *logrus.Logger) *InvoiceController {
	return &InvoiceController{Invoices: invoices, Log: log}
}

// GetInvoices
// GET /api/invoices
func (c *InvoiceController) GetInvoices(ctx *fiber.Ctx) error {
	invoices, err := c.Invoices.List(ctx.UserContext())
	if err != nil {
		return respond(ctx, c.Log, "GetInvoices", err)
	}
	return ctx.JSON(invoices)
}

// GetInvoice
// GET /api/invoices/:id
func (c *InvoiceController) GetInvoice(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "invoice")
	}
	invoice, err := c.Invoices.Get(ctx.UserContext(), id)
	if err != nil {
		return respond(ctx, c.Log, "GetInvoice", err)
	}
	return ctx.JSON(invoice)
}

// CreateInvoice issues an invoice and takes its items out of stock.
// POST /api/invoices
func (c *InvoiceController) CreateInvoice(ctx *fiber.Ctx) error {
	var input Models.InvoiceInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}

	invoice, err := c.Invoices.Create(ctx.UserContext(), input, currentUserID(ctx))
	if err != nil {
		return respond(ctx, c.Log, "CreateInvoice", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(invoice)
}

// DeleteInvoice removes the invoice, its items and its stock movements.
// DELETE /api/invoices/:id
func (c *InvoiceController) DeleteInvoice(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "invoice")
	}
	if err := c.Invoices.Delete(ctx.UserContext(), id); err != nil {
		return respond(ctx, c.Log, "DeleteInvoice", err)
	}
	return ctx.JSON(fiber.Map{"message": "Invoice deleted successfully"})
}
