package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"Stockbook/Models"
)

const testSecret = "middleware-secret"

func authDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&Models.User{}))
	return db
}

func authApp(db *gorm.DB, roles ...Models.Role) *fiber.App {
	app := fiber.New()
	app.Get("/private", Verify(testSecret, db, roles...), func(c *fiber.Ctx) error {
		user := c.Locals("user").(Models.User)
		return c.SendString(user.Email)
	})
	return app
}

func get(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestSignTokenClaims(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	token, expires, err := SignToken(testSecret, 42, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(TokenTTL), expires)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Issuer)
	assert.True(t, claims.ExpiresAt.Time.Equal(expires))
}

func TestVerify(t *testing.T) {
	db := authDB(t)
	user := Models.User{Name: "Ann", Email: "ann@example.com", Password: []byte("x"), Role: Models.RoleStaff}
	require.NoError(t, db.Create(&user).Error)

	valid, _, err := SignToken(testSecret, user.ID, time.Now())
	require.NoError(t, err)

	t.Run("valid cookie", func(t *testing.T) {
		status, body := get(t, authApp(db), valid)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ann@example.com", body)
	})

	t.Run("missing cookie", func(t *testing.T) {
		status, body := get(t, authApp(db), "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, body, "Not Logged In.")
	})

	t.Run("wrong secret", func(t *testing.T) {
		forged, _, err := SignToken("other-secret", user.ID, time.Now())
		require.NoError(t, err)
		status, _ := get(t, authApp(db), forged)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("expired", func(t *testing.T) {
		old, _, err := SignToken(testSecret, user.ID, time.Now().Add(-2*TokenTTL))
		require.NoError(t, err)
		status, _ := get(t, authApp(db), old)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost, _, err := SignToken(testSecret, user.ID+100, time.Now())
		require.NoError(t, err)
		status, body := get(t, authApp(db), ghost)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Contains(t, body, "User not found")
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		status, _ := get(t, authApp(db), unsigned)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("role required", func(t *testing.T) {
		status, _ := get(t, authApp(db, Models.RoleAdmin, Models.RoleManager), valid)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = get(t, authApp(db, Models.RoleStaff), valid)
		assert.Equal(t, http.StatusOK, status)
	})
}
