package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ndewijer/Portfolio-Tracker-Backend/internal/apperrors"
)

// MaxUsernameLength is the longest accepted username.
const MaxUsernameLength = 50

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateUsername checks that a username is non-empty, at most
// MaxUsernameLength characters and made of letters, digits, '_', '.' or '-'.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return fmt.Errorf("%w: username is required", apperrors.ErrInvalidUsername)
	case len(username) > MaxUsernameLength:
		return fmt.Errorf("%w: username must be %d characters or less", apperrors.ErrInvalidUsername, MaxUsernameLength)
	case !usernamePattern.MatchString(username):
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidUsername, username)
	}
	return nil
}

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}
