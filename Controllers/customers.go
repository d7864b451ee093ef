package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/Services"
)

type CustomerController struct {
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *Services.Validator
}

func NewCustomerController(db *gorm.DB, log *logrus.Logger, v *Services.Validator) *CustomerController {
	return &CustomerController{DB: db, Log: log, Validator: v}
}

func (c *CustomerController) GetCustomers(ctx *fiber.Ctx) error {
	var customers []Models.Customer
	if err := c.DB.WithContext(ctx.UserContext()).Order("name ASC").Find(&customers).Error; err != nil {
		return respond(ctx, c.Log, "GetCustomers", err)
	}
	return ctx.JSON(customers)
}

func (c *CustomerController) GetCustomer(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "customer")
	}

	var customer Models.Customer
	if err := c.DB.WithContext(ctx.UserContext()).First(&customer, id).Error; err != nil {
		return lookupFailed(ctx, c.Log, "GetCustomer", "Customer", err)
	}
	return ctx.JSON(customer)
}

// CreateCustomer requires a name and a phone number.
func (c *CustomerController) CreateCustomer(ctx *fiber.Ctx) error {
	var input Models.CustomerInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "CreateCustomer", err)
	}

	customer := Models.Customer{
		Base:  Models.Base{CreatedBy: currentUserID(ctx)},
		Party: input.Party(),
	}
	if err := c.DB.WithContext(ctx.UserContext()).Create(&customer).Error; err != nil {
		return respond(ctx, c.Log, "CreateCustomer", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(customer)
}

func (c *CustomerController) UpdateCustomer(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "customer")
	}

	var input Models.PartyUpdate
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "UpdateCustomer", err)
	}

	db := c.DB.WithContext(ctx.UserContext())
	var customer Models.Customer
	if err := db.First(&customer, id).Error; err != nil {
		return lookupFailed(ctx, c.Log, "UpdateCustomer", "Customer", err)
	}
	input.Apply(&customer.Party)
	if err := db.Save(&customer).Error; err != nil {
		return respond(ctx, c.Log, "UpdateCustomer", err)
	}
	return ctx.JSON(customer)
}

// DeleteCustomer removes the customer only. Invoices and credits keep the id.
func (c *CustomerController) DeleteCustomer(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "customer")
	}

	result := c.DB.WithContext(ctx.UserContext()).Delete(&Models.Customer{}, id)
	if result.Error != nil {
		return respond(ctx, c.Log, "DeleteCustomer", result.Error)
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Customer deleted successfully"})
}
