package auth

import (
	"strings"
	"unicode/utf16"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

const (
	EmailDomain       = "@lxgcapital.com"
	AdminEmail        = "jose.correa@lxgcapital.com"
	MinPasswordLength = 6
)

var (
	ErrInvalidEmailDomain = internal.NewValidationError("Solo @lxgcapital.com", internal.ErrCodeInvalidEmailDomain)
	ErrPasswordTooShort   = internal.NewValidationError("Mínimo 6 caracteres", internal.ErrCodePasswordTooShort)
	ErrPasswordTooLong    = internal.NewValidationError("Máximo 72 bytes", internal.ErrCodePasswordTooLong)
	ErrNameRequired       = internal.NewValidationError("Ingresa tu nombre", internal.ErrCodeNameRequired)
	ErrEmailRegistered    = internal.NewConflictError("Email registrado", internal.ErrCodeEmailRegistered)
	ErrInvalidCredentials = internal.NewUnauthorizedError("Credenciales incorrectas", internal.ErrCodeInvalidCredentials)
)

// ValidateCredentials runs the registration checks that do not need the store,
// in the order they are reported.
func ValidateCredentials(email, password, name string) error {
	if !strings.HasSuffix(email, EmailDomain) {
		return ErrInvalidEmailDomain
	}
	if passwordLength(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return nil
}

// passwordLength counts UTF-16 code units, so a character outside the Basic
// Multilingual Plane counts as two.
func passwordLength(password string) int {
	n := 0
	for _, r := range password {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}

// ValidateRegistration reports the first failing registration rule.
func ValidateRegistration(snap *timesheet.Snapshot, email, password, name string) error {
	if err := ValidateCredentials(email, password, name); err != nil {
		return err
	}
	if _, exists := snap.Users[email]; exists {
		return ErrEmailRegistered
	}
	return nil
}

// IsAdminEmail decides the admin flag. It is applied once, at registration.
func IsAdminEmail(email string) bool {
	return email == AdminEmail
}
