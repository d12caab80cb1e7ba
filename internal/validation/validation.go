// Package validation provides field-level validation for administrative
// input on access credentials.
package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxUsernameLength is the longest accepted username, in characters.
	MaxUsernameLength = 128
	// MaxPasswordLength bounds the plaintext password, in bytes.
	MaxPasswordLength = 1024
	// MaxDurationHours is one year.
	MaxDurationHours = 24 * 365
)

// ValidateUsername checks a non-empty username.
// Usernames may not carry leading or trailing whitespace or control characters.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if strings.TrimSpace(username) != username {
		return fmt.Errorf("username must not start or end with whitespace")
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("username must not contain control characters")
		}
	}
	return nil
}

// ValidatePassword checks a non-empty password.
func ValidatePassword(password string) error {
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateDurationHours checks the validity window of a credential.
func ValidateDurationHours(hours int) error {
	if hours <= 0 {
		return fmt.Errorf("durationHours must be a positive number of hours")
	}
	if hours > MaxDurationHours {
		return fmt.Errorf("durationHours must be at most %d", MaxDurationHours)
	}
	return nil
}

// CredentialInput is the operator-supplied part of a credential.
type CredentialInput struct {
	Username      string
	Password      string
	DurationHours int

	// PasswordOptional allows an empty password, meaning "keep the stored hash".
	PasswordOptional bool
}

// CheckCredential returns the names of absent required fields and the
// validation errors of the fields that are present.
func CheckCredential(in CredentialInput) (missing []string, errs ValidationErrors) {
	if in.Username == "" {
		missing = append(missing, "username")
	} else if err := ValidateUsername(in.Username); err != nil {
		errs.Add("username", in.Username, err.Error())
	}

	if in.Password == "" {
		if !in.PasswordOptional {
			missing = append(missing, "password")
		}
	} else if err := ValidatePassword(in.Password); err != nil {
		errs.Add("password", "", err.Error())
	}

	if in.DurationHours == 0 {
		missing = append(missing, "durationHours")
	} else if err := ValidateDurationHours(in.DurationHours); err != nil {
		errs.Add("durationHours", fmt.Sprint(in.DurationHours), err.Error())
	}

	return missing, errs
}
