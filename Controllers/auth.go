package Controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"Stockbook/Models"
	"Stockbook/Services"
	"Stockbook/middleware"
)

type AuthController struct {
	DB        *gorm.DB
	Log       *logrus.Logger
	Validator *Services.Validator
	Secret    string
	// Secure marks the session cookie HTTPS-only.
	Secure bool
}

func NewAuthController(db *gorm.DB, log *logrus.Logger, v *Services.Validator, secret string, secure bool) *AuthController {
	return &AuthController{DB: db, Log: log, Validator: v, Secret: secret, Secure: secure}
}

// Register
// POST /api/auth/register
func (c *AuthController) Register(ctx *fiber.Ctx) error {
	var input Models.RegisterInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "Register", err)
	}

	user := Models.User{
		Name:  input.Name,
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
		Role:  input.Role,
	}
	if user.Role == "" {
		user.Role = Models.RoleStaff
	}
	if err := user.SetPassword(input.Password); err != nil {
		return respond(ctx, c.Log, "Register", err)
	}

	if err := c.DB.WithContext(ctx.UserContext()).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A user with this email already exists"})
		}
		return respond(ctx, c.Log, "Register", err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(user)
}

// Login sets the jwt cookie.
// POST /api/auth/login
func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input Models.LoginInput
	if err := ctx.BodyParser(&input); err != nil {
		return badBody(ctx, err)
	}
	if err := c.Validator.Struct(input); err != nil {
		return respond(ctx, c.Log, "Login", err)
	}

	var user Models.User
	err := c.DB.WithContext(ctx.UserContext()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return respond(ctx, c.Log, "Login", err)
	}
	if err != nil || !user.CheckPassword(input.Password) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, expires, err := middleware.SignToken(c.Secret, user.ID, time.Now())
	if err != nil {
		return respond(ctx, c.Log, "Login", err)
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   c.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(fiber.Map{"message": "Login successful", "user": user})
}

// Logout
// POST /api/auth/logout
func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   c.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return ctx.JSON(fiber.Map{"message": "Logged out"})
}

// Me returns the user Verify stored on the request.
// GET /api/auth/me
func (c *AuthController) Me(ctx *fiber.Ctx) error {
	user, ok := ctx.Locals("user").(Models.User)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Not Logged In."})
	}
	return ctx.JSON(user)
}
