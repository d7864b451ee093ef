package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/Services"
)

// ProductController serves the product catalogue. Quantities on hand come
// from the ledger, never from the product row.
type ProductController struct {
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *Services.Validator
	Ledger    *Services.Ledger
}

func NewProductController(db *gorm.DB, log *logrus.Logger, v *Services.Validator, ledger *Services.Ledger) *ProductController {
	return &ProductController{DB: db, Log: log, Validator: v, Ledger: ledger}
}

// GetProducts lists products with stockRemaining, optionally by ?category=.
func (c *ProductController) GetProducts(ctx *fiber.Ctx) error {
	q := c.DB.WithContext(ctx.UserContext()).Order("name ASC")
	if category := ctx.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var products []Models.Product
	if err := q.Find(&products).Error; err != nil {
		return respond(ctx, c.Log, "GetProducts", err)
	}

	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	levels, err := c.Ledger.StockLevels(ctx.UserContext(), ids)
	if err != nil {
		return respond(ctx, c.Log, "GetProducts", err)
	}

	out := make([]Models.ProductWithStock, 0, len(products))
	for _, p := range products {
		out = append(out, Models.ProductWithStock{Product: p, StockRemaining: levels[p.ID]})
	}
	return ctx.JSON(out)
}

func (c *ProductController) GetProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "product")
	}

	var product Models.Product
	if err := c.DB.WithContext(ctx.UserContext()).First(&product, id).Error; err != nil {
		return lookupFailed(ctx, c.Log, "GetProduct", "Product", err)
	}
	qty, err := c.Ledger.CurrentStock(ctx.UserContext(), product.ID)
	if err != nil {
		return respond(ctx, c.Log, "GetProduct", err)
	}
	return ctx.JSON(Models.ProductWithStock{Product: product, StockRemaining: qty})
}

func (c *ProductController) CreateProduct(ctx *fiber.Ctx) error {
	var input Models.ProductInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "CreateProduct", err)
	}

	product := Models.Product{
		Base:        Models.Base{CreatedBy: currentUserID(ctx)},
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Cost:        *input.Cost,
	}
	if err := c.DB.WithContext(ctx.UserContext()).Create(&product).Error; err != nil {
		return respond(ctx, c.Log, "CreateProduct", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(Models.ProductWithStock{Product: product})
}

func (c *ProductController) UpdateProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "product")
	}

	var input Models.ProductUpdate
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "UpdateProduct", err)
	}

	db := c.DB.WithContext(ctx.UserContext())
	var product Models.Product
	if err := db.First(&product, id).Error; err != nil {
		return lookupFailed(ctx, c.Log, "UpdateProduct", "Product", err)
	}
	input.Apply(&product)
	if err := db.Save(&product).Error; err != nil {
		return respond(ctx, c.Log, "UpdateProduct", err)
	}
	return ctx.JSON(product)
}

// DeleteProduct removes the product row. Its movements and invoice lines stay.
func (c *ProductController) DeleteProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return invalidID(ctx, "product")
	}

	result := c.DB.WithContext(ctx.UserContext()).Delete(&Models.Product{}, id)
	if result.Error != nil {
		return respond(ctx, c.Log, "DeleteProduct", result.Error)
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Product deleted successfully"})
}
