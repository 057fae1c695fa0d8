package signin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValid(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"empty", "", false},
		{"blank", " ", false},
		{"tabs and spaces", " \t ", false},
		{"missing at sign", "invalidEmail", false},
		{"missing domain", "valid@", false},
		{"missing local part", "@gmail.com", false},
		{"valid", "valid@gmail.com", true},
		{"leading space", " valid@gmail.com", false},
		{"trailing space", "valid@gmail.com ", false},
		{"surrounding tab and newline", "\tvalid@gmail.com\n", false},
		{"valid with subdomain", "first.last@mail.example.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmailValid(tt.email))
		})
	}
}

func TestPasswordValid(t *testing.T) {
	assert.False(t, PasswordValid(""))
	assert.True(t, PasswordValid("anyPassword"))
	assert.True(t, PasswordValid(" "), "a non-empty password is accepted as typed")
}

func TestForm(t *testing.T) {
	t.Run("invalid email disables login regardless of password", func(t *testing.T) {
		for _, email := range []string{"", " ", "invalidEmail"} {
			for _, password := range []string{"", "anyPassword"} {
				assert.False(t, Form{Email: email, Password: password}.Valid(), "email %q password %q", email, password)
			}
		}
	})

	t.Run("valid email with empty password is invalid", func(t *testing.T) {
		assert.False(t, Form{Email: "valid@gmail.com"}.Valid())
	})

	t.Run("valid email with password is valid", func(t *testing.T) {
		assert.True(t, Form{Email: "valid@gmail.com", Password: "anyPassword"}.Valid())
	})

	t.Run("email with surrounding whitespace is invalid", func(t *testing.T) {
		assert.False(t, Form{Email: " valid@gmail.com", Password: "anyPassword"}.Valid())
		assert.False(t, Form{Email: "valid@gmail.com ", Password: "anyPassword"}.Valid())
	})

	t.Run("credentials carry the fields as typed", func(t *testing.T) {
		creds := Form{Email: "valid@gmail.com", Password: " secret "}.Credentials()
		assert.Equal(t, Credentials{Email: "valid@gmail.com", Password: " secret "}, creds)
	})
}
