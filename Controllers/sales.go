package Controllers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"Stockbook/Services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SalesController handles the sales reporting endpoints
type SalesController struct {
	Reports *Services.ReportService
	Log     *logrus.Logger
}

// NewSalesController creates a new SalesController
func NewSalesController(reports *Services.ReportService, log *logrus.Logger) *SalesController {
	return &SalesController{Reports: reports, Log: log}
}

// GetSales lists sent and paid invoices
func (c *SalesController) GetSales(ctx *fiber.Ctx) error {
	filter, err := salesFilter(ctx)
	if err != nil {
		return respond(ctx, c.Log, "GetSales", err)
	}
	sales, err := c.Reports.Sales(ctx.UserContext(), filter)
	if err != nil {
		return respond(ctx, c.Log, "GetSales", err)
	}
	return ctx.JSON(sales)
}

// Summary returns line totals grouped by ?period=day|week|month|year
func (c *SalesController) Summary(ctx *fiber.Ctx) error {
	period, groups, err := c.summary(ctx)
	if err != nil {
		return respond(ctx, c.Log, "Summary", err)
	}
	return ctx.JSON(fiber.Map{
		"period": period,
		"groups": groups,
	})
}

// ExportSummary streams the same summary as an xlsx workbook
func (c *SalesController) ExportSummary(ctx *fiber.Ctx) error {
	period, groups, err := c.summary(ctx)
	if err != nil {
		return respond(ctx, c.Log, "ExportSummary", err)
	}

	buf, err := Services.SummaryWorkbook(period, groups)
	if err != nil {
		return respond(ctx, c.Log, "ExportSummary", err)
	}

	filename := fmt.Sprintf("sales_summary_%s_%s.xlsx", period, time.Now().Format("20060102"))
	ctx.Attachment(filename)
	ctx.Set(fiber.HeaderContentType, xlsxContentType)
	return ctx.Send(buf.Bytes())
}

func (c *SalesController) summary(ctx *fiber.Ctx) (Services.Period, []Services.SummaryGroup, error) {
	period, err := Services.ParsePeriod(ctx.Query("period"))
	if err != nil {
		return "", nil, err
	}
	filter, err := salesFilter(ctx)
	if err != nil {
		return "", nil, err
	}
	groups, err := c.Reports.Summary(ctx.UserContext(), period, filter)
	if err != nil {
		return "", nil, err
	}
	return period, groups, nil
}

// TopProducts ranks products by revenue, ?limit= defaults to 5
func (c *SalesController) TopProducts(ctx *fiber.Ctx) error {
	limit := Services.DefaultTopProductsLimit
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "limit must be a positive integer",
				"fields": fiber.Map{"limit": "limit must be a positive integer"},
			})
		}
		limit = n
	}

	filter, err := salesFilter(ctx)
	if err != nil {
		return respond(ctx, c.Log, "TopProducts", err)
	}
	products, err := c.Reports.TopProducts(ctx.UserContext(), filter, limit)
	if err != nil {
		return respond(ctx, c.Log, "TopProducts", err)
	}
	return ctx.JSON(products)
}
