// Package profile holds the administrator's account form and password change.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 6

var (
	ErrPasswordMismatch = errors.New("new passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

var validate = validator.New()

// Info is the administrator's account information.
type Info struct {
	Name  string `json:"name" validate:"required,max=64"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"`
}

// DefaultInfo is the account shown before any edit.
func DefaultInfo() Info {
	return Info{Name: "Admin User", Email: "admin@photobook.com", Role: "Administrator"}
}

// Validate checks name and email.
func (i Info) Validate() error {
	if err := validate.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: failed %q check", strings.ToLower(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

// PasswordForm is the three-field password change form.
type PasswordForm struct {
	Current string
	New     string
	Confirm string
}

// Check validates the form. A mismatch is reported before a short password.
func (f PasswordForm) Check() error {
	if f.New != f.Confirm {
		return ErrPasswordMismatch
	}
	if len(f.New) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Account is the profile screen state.
type Account struct {
	info     Info
	password PasswordForm
}

func NewAccount(info Info) *Account { return &Account{info: info} }

func (a *Account) Info() Info { return a.info }

func (a *Account) Password() PasswordForm { return a.password }

// SetPassword replaces the in-progress password form.
func (a *Account) SetPassword(f PasswordForm) { a.password = f }

// UpdateInfo validates and stores new account info. The role is not editable.
func (a *Account) UpdateInfo(next Info) error {
	next.Role = a.info.Role
	next.Name = strings.TrimSpace(next.Name)
	next.Email = strings.TrimSpace(next.Email)
	if err := next.Validate(); err != nil {
		return err
	}
	a.info = next
	return nil
}

// ChangePassword checks the current form and clears it on success. On failure
// the form is left as entered.
func (a *Account) ChangePassword() error {
	if err := a.password.Check(); err != nil {
		return err
	}
	a.password = PasswordForm{}
	return nil
}
