// internal/domain/user/service_test.go
package user

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/pharmacy-backend/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testService(t *testing.T) *Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{
		App: config.AppConfig{Name: "Pharmacy Backend"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key-that-is-long-enough-for-hmac",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	return NewService(db, cfg, log)
}

func TestRegisterAndLogin(t *testing.T) {
	service := testService(t)

	registered, err := service.Register(&RegisterRequest{
		Email:    "Jane@Example.com",
		Password: "sturdy-pass1",
		Name:     "Jane Doe",
		Phone:    "0300-1234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)

	loggedIn, err := service.Login(&LoginRequest{
		Email:    "jane@example.com",
		Password: "sturdy-pass1",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotNil(t, loggedIn.User.LastLoginAt)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := testService(t)

	req := &RegisterRequest{Email: "jane@example.com", Password: "sturdy-pass1", Name: "Jane"}
	_, err := service.Register(req)
	require.NoError(t, err)

	_, err = service.Register(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service := testService(t)

	_, err := service.Register(&RegisterRequest{Email: "jane@example.com", Password: "sturdy-pass1", Name: "Jane"})
	require.NoError(t, err)

	_, err = service.Login(&LoginRequest{Email: "jane@example.com", Password: "wrong-pass1"})
	assert.Error(t, err)

	_, err = service.Login(&LoginRequest{Email: "nobody@example.com", Password: "sturdy-pass1"})
	assert.Error(t, err)
}

func TestRefreshTokenIssuesNewPair(t *testing.T) {
	service := testService(t)

	registered, err := service.Register(&RegisterRequest{Email: "jane@example.com", Password: "sturdy-pass1", Name: "Jane"})
	require.NoError(t, err)

	refreshed, err := service.RefreshToken(registered.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token
	_, err = service.RefreshToken(registered.AccessToken)
	assert.Error(t, err)
}

func TestUpdateProfilePartialFields(t *testing.T) {
	service := testService(t)

	registered, err := service.Register(&RegisterRequest{Email: "jane@example.com", Password: "sturdy-pass1", Name: "Jane"})
	require.NoError(t, err)

	city := "Lahore"
	street := "12 Mall Road"
	updated, err := service.UpdateProfile(registered.User.ID, &UpdateProfileRequest{
		AddressStreet: &street,
		AddressCity:   &city,
	})
	require.NoError(t, err)
	assert.Equal(t, "12 Mall Road", updated.AddressStreet)
	assert.Equal(t, "Lahore", updated.AddressCity)
	assert.Equal(t, "Jane", updated.Name)
}

func TestChangePassword(t *testing.T) {
	service := testService(t)

	registered, err := service.Register(&RegisterRequest{Email: "jane@example.com", Password: "sturdy-pass1", Name: "Jane"})
	require.NoError(t, err)

	err = service.ChangePassword(registered.User.ID, "wrong-pass1", "another-pass2")
	assert.Error(t, err)

	require.NoError(t, service.ChangePassword(registered.User.ID, "sturdy-pass1", "another-pass2"))

	_, err = service.Login(&LoginRequest{Email: "jane@example.com", Password: "another-pass2"})
	assert.NoError(t, err)
}
