package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"Stockbook/Models"
	"Stockbook/Services"
)

// CreditController serves /api/credits: receivable balances and the
// payments reconciled against them.
type CreditController struct {
	Credits *Services.CreditService
	Log     *logrus.Logger
}

func NewCreditController(credits *Services.CreditService, log *logrus.Logger) *CreditController {
	return &CreditController{Credits: credits, Log: log}
}

// GetCredits accepts ?status= and ?customer=.
func (c *CreditController) GetCredits(ctx *fiber.Ctx) error {
	customerID, err := queryID(ctx, "customer")
	if err != nil {
		return respond(ctx, c.Log, "GetCredits", err)
	}
	credits, err := c.Credits.ListCredits(ctx.UserContext(), Services.CreditFilter{
		Status:     Models.CreditStatus(ctx.Query("status")),
		CustomerID: customerID,
	})
	if err != nil {
		return respond(ctx, c.Log, "GetCredits", err)
	}
	return ctx.JSON(credits)
}

func (c *CreditController) CreateCredit(ctx *fiber.Ctx) error {
	var input Models.CreditInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	credit, err := c.Credits.CreateCredit(ctx.UserContext(), input, currentUserID(ctx))
	if err != nil {
		return respond(ctx, c.Log, "CreateCredit", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(credit)
}

func (c *CreditController) GetPayments(ctx *fiber.Ctx) error {
	payments, err := c.Credits.ListPayments(ctx.UserContext())
	if err != nil {
		return respond(ctx, c.Log, "GetPayments", err)
	}
	return ctx.JSON(payments)
}

// CreatePayment records a payment and updates the invoice's credit, if any.
func (c *CreditController) CreatePayment(ctx *fiber.Ctx) error {
	var input Models.PaymentInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	payment, err := c.Credits.CreatePayment(ctx.UserContext(), input, currentUserID(ctx))
	if err != nil {
		return respond(ctx, c.Log, "CreatePayment", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(payment)
}

func (c *CreditController) GetInvoicePayments(ctx *fiber.Ctx) error {
	invoiceID, err := paramID(ctx, "invoiceId")
	if err != nil {
		return invalidID(ctx, "invoice")
	}
	payments, err := c.Credits.PaymentsForInvoice(ctx.UserContext(), invoiceID)
	if err != nil {
		return respond(ctx, c.Log, "GetInvoicePayments", err)
	}
	return ctx.JSON(payments)
}

func (c *CreditController) DeletePayment(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "payment")
	}
	if err := c.Credits.DeletePayment(ctx.UserContext(), id); err != nil {
		return respond(ctx, c.Log, "DeletePayment", err)
	}
	return ctx.JSON(fiber.Map{"message": "Payment deleted successfully"})
}

func (c *CreditController) GetOutstanding(ctx *fiber.Ctx) error {
	invoices, err := c.Credits.Outstanding(ctx.UserContext())
	if err != nil {
		return respond(ctx, c.Log, "GetOutstanding", err)
	}
	return ctx.JSON(invoices)
}

func (c *CreditController) GetCustomerHistory(ctx *fiber.Ctx) error {
	customerID, err := paramID(ctx, "customerId")
	if err != nil {
		return invalidID(ctx, "customer")
	}
	history, err := c.Credits.CustomerHistory(ctx.UserContext(), customerID)
	if err != nil {
		return respond(ctx, c.Log, "GetCustomerHistory", err)
	}
	return ctx.JSON(history)
}
