package auth

import "time"

// SigninData is the view model of the sign-in screen.
type SigninData struct {
	Email string

	EmailError    string
	PasswordError string

	IsLoginIn            bool
	IsRecoveringPassword bool
	LoginEnabled         bool
	RecoverEnabled       bool
}

// Busy reports whether a call is outstanding and the screen should keep polling.
func (d SigninData) Busy() bool {
	return d.IsLoginIn || d.IsRecoveringPassword
}

// NotificationData is a toast rendered into the notification area.
type NotificationData struct {
	ID       string
	Message  string
	Dismiss  string
	Duration time.Duration
}

// HomeData is passed to the page shown after sign-in.
type HomeData struct {
	Email string
}

// ResetPasswordData carries the reset token into the new-password form.
type ResetPasswordData struct {
	Token string
}
