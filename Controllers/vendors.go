package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/Services"
)

// VendorController handles vendor-related API endpoints
type VendorController struct {
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *Services.Validator
}

// NewVendorController creates a new VendorController
func NewVendorController(db *gorm.DB, log *logrus.Logger, v *Services.Validator) *VendorController {
	return &VendorController{DB: db, Log: log, Validator: v}
}

// GetVendors retrieves all vendors
func (c *VendorController) GetVendors(ctx *fiber.Ctx) error {
	var vendors []Models.Vendor
	if err := c.DB.WithContext(ctx.UserContext()).Order("name ASC").Find(&vendors).Error; err != nil {
		return respond(ctx, c.Log, "GetVendors", err)
	}
	return ctx.JSON(vendors)
}

// GetVendor retrieves a single vendor by ID
func (c *VendorController) GetVendor(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "vendor")
	}

	var vendor Models.Vendor
	if err := c.DB.WithContext(ctx.UserContext()).First(&vendor, id).Error; err != nil {
		return lookupFailed(ctx, c.Log, "GetVendor", "Vendor", err)
	}
	return ctx.JSON(vendor)
}

// CreateVendor creates a new vendor
func (c *VendorController) CreateVendor(ctx *fiber.Ctx) error {
	var input Models.PartyInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "CreateVendor", err)
	}

	vendor := Models.Vendor{
		Base:  Models.Base{CreatedBy: currentUserID(ctx)},
		Party: input.Party(),
	}
	if err := c.DB.WithContext(ctx.UserContext()).Create(&vendor).Error; err != nil {
		return respond(ctx, c.Log, "CreateVendor", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(vendor)
}

// UpdateVendor updates the fields present in the request body
func (c *VendorController) UpdateVendor(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "vendor")
	}

	var input Models.PartyUpdate
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "UpdateVendor", err)
	}

	db := c.DB.WithContext(ctx.UserContext())
	var vendor Models.Vendor
	if err := db.First(&vendor, id).Error; err != nil {
		return lookupFailed(ctx, c.Log, "UpdateVendor", "Vendor", err)
	}
	input.Apply(&vendor.Party)
	if err := db.Save(&vendor).Error; err != nil {
		return respond(ctx, c.Log, "UpdateVendor", err)
	}
	return ctx.JSON(vendor)
}

// DeleteVendor removes a vendor. Purchases keep their vendor id.
func (c *VendorController) DeleteVendor(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "vendor")
	}

	result := c.DB.WithContext(ctx.UserContext()).Delete(&Models.Vendor{}, id)
	if result.Error != nil {
		return respond(ctx, c.Log, "DeleteVendor", result.Error)
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vendor not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Vendor deleted successfully"})
}
