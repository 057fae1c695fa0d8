package signin

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every controller; validator caches struct metadata.
var validate = validator.New()

// Form holds the two fields of the sign-in form.
type Form struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// EmailValid reports whether email is non-blank and, exactly as typed,
// syntactically an email address. Surrounding whitespace makes it invalid.
func EmailValid(email string) bool {
	return strings.TrimSpace(email) != "" && validate.Var(email, "email") == nil
}

// PasswordValid reports whether password is non-empty.
func PasswordValid(password string) bool {
	return validate.Var(password, "required") == nil
}

// Valid reports whether the form can be submitted for sign-in.
func (f Form) Valid() bool {
	return EmailValid(f.Email) && PasswordValid(f.Password)
}

// Credentials builds the transient credentials for a sign-in call.
func (f Form) Credentials() Credentials {
	return Credentials{
		Email:    f.Email,
		Password: f.Password,
	}
}
