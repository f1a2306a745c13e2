package validation

import (
	"net/mail"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) bool {
	username = NormalizeUsername(username)
	return usernameRe.MatchString(username)
}

func PasswordMinLength() int {
	minStr := os.Getenv("PASSWORD_MIN_LENGTH")
	if minStr == "" {
		return 10
	}
	min, err := strconv.Atoi(minStr)
	if err != nil || min < 8 {
		return 10
	}
	return min
}

func ValidatePassword(password string) bool {
	return len(password) >= PasswordMinLength()
}

// ValidateLatitude accepts the WGS84 latitude range.
func ValidateLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// ValidateLongitude accepts the WGS84 longitude range.
func ValidateLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

func ValidateCoordinates(lat, lng float64) bool {
	return ValidateLatitude(lat) && ValidateLongitude(lng)
}

// ValidateGroupName bounds a trimmed group name to the column size.
func ValidateGroupName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && len(name) <= 100
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
