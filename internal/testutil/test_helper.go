package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
	"gorm.io/gorm"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username, email string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}
	if email == "" {
		email = "test@example.com"
	}

	return &models.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "hashed_password_123",
		FullName:     "Test User",
		Role:         "user",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// CreateLocatedTestUser creates a test user with a last known coordinate.
func (h *TestHelper) CreateLocatedTestUser(id uint, username string, latitude, longitude float64) *models.User {
	user := h.CreateTestUser(id, username, "")
	now := time.Now()
	user.LastLatitude = &latitude
	user.LastLongitude = &longitude
	user.LocatedAt = &now
	return user
}

// CreateTestArea creates an active circular area around the coordinate.
func (h *TestHelper) CreateTestArea(id uint, latitude, longitude float64, radius models.AreaRadius) *models.Area {
	if id == 0 {
		id = 1
	}
	if !models.ValidRadius(radius) {
		radius = models.RadiusHundredFiftyM
	}
	return &models.Area{
		ID:        id,
		Latitude:  latitude,
		Longitude: longitude,
		Radius:    radius,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreateTestGroup creates an active group attached to the given areas.
func (h *TestHelper) CreateTestGroup(id uint, name string, creatorID uint, areas ...models.Area) *models.Group {
	if id == 0 {
		id = 1
	}
	if name == "" {
		name = "Test Group"
	}
	if creatorID == 0 {
		creatorID = 1
	}
	return &models.Group{
		ID:        id,
		Name:      name,
		IsActive:  true,
		CreatorID: creatorID,
		Areas:     areas,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
	os.Setenv("PASSWORD_MIN_LENGTH", "10")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("PASSWORD_MIN_LENGTH")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}

// AssertNotNil checks if a value is not nil
func (h *TestHelper) AssertNotNil(value interface{}, testName string) {
	if value == nil {
		h.t.Errorf("%s: expected non-nil value", testName)
	}
}

// AssertNil checks if a value is nil
func (h *TestHelper) AssertNil(value interface{}, testName string) {
	if value != nil {
		h.t.Errorf("%s: expected nil value but got %v", testName, value)
	}
}

// GetRecordNotFoundError returns an error that mimics gorm.ErrRecordNotFound
func GetRecordNotFoundError() error {
	return gorm.ErrRecordNotFound
}
