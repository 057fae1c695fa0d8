package pages

import (
	"github.com/a-h/templ"
	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/nfrund/signin/web/src/templates/layouts"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// ResetPasswordPath is the target of the link in recovery emails.
const ResetPasswordPath = "/reset-password"

// ResetPasswordPage renders the new-password form opened from a recovery email.
func ResetPasswordPage(data auth.ResetPasswordData, flashes view.FlashData) templ.Component {
	return view.AdaptGomponentToTempl(layouts.Base("Reset password", flashes, nil,
		h.Section(h.Class("signin"),
			h.H1(g.Text("Choose a new password")),
			h.Form(h.Method("post"), h.Action(ResetPasswordPath),
				h.Input(h.Type("hidden"), h.Name("token"), h.Value(data.Token)),
				passwordField("password", "New password"),
				passwordField("password_confirm", "Confirm new password"),
				h.Button(h.Type("submit"), h.Class("primary"), h.Data("testid", "reset-password-button"), g.Text("Reset password")),
			),
		),
	))
}

func passwordField(name, label string) g.Node {
	return h.Div(h.Class("field"),
		h.Label(h.For(name), g.Text(label)),
		h.Input(h.ID(name), h.Name(name), h.Type("password"), h.AutoComplete("new-password"), h.Required(),
			h.Data("testid", name+"-input")),
	)
}
