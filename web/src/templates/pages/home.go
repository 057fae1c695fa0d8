package pages

import (
	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/nfrund/signin/web/src/templates/layouts"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// HomePage is shown to a signed-in user.
func HomePage(data auth.HomeData, flashes view.FlashData) g.Node {
	return layouts.Base("Home", flashes, nil,
		h.Section(h.Class("home"),
			h.H1(g.Text("Welcome")),
			h.P(g.Textf("You are signed in as %s.", data.Email)),
			h.Form(h.Method("post"), h.Action("/logout"),
				h.Button(h.Type("submit"), h.Data("testid", "logout-button"), g.Text("Log out")),
			),
		),
	)
}
