package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password the portal accepts.
const MinPasswordLength = 10

// usernameRegex matches portal logins: six lowercase letters followed by
// two lowercase letters or digits (e.g. "xlogin00").
var usernameRegex = regexp.MustCompile(`^[a-z][a-z]{5}[a-z0-9]{2}$`)

var (
	// ErrInvalidUsername is returned when a username does not look like a portal login.
	ErrInvalidUsername = errors.New("invalid username: expected a login such as xlogin00")

	// ErrPasswordTooShort is returned when the password is shorter than MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("invalid password: must be at least %d characters", MinPasswordLength)
)

// Credentials is a username/password pair for HTTP Basic authentication.
type Credentials struct {
	Username string
	Password string
}

// Validate checks the syntactic constraints the portal puts on logins.
func (c Credentials) Validate() error {
	if err := ValidateUsername(c.Username); err != nil {
		return err
	}
	return ValidatePassword(c.Password)
}

// ValidateUsername checks a single username.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks a single password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// String never prints the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s:%s", c.Username, strings.Repeat("*", 8))
}
