// Package layouts holds the page shells shared by every screen.
package layouts

import (
	"github.com/nfrund/signin/internal/view"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// NotificationsID is the element toasts are appended to.
const NotificationsID = "notifications"

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Base renders a full HTML document around content. toasts are rendered into
// the notification area and may be nil.
func Base(title string, flashes view.FlashData, toasts g.Node, content ...g.Node) g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text(CalculateTitle(title))),
				h.Link(h.Rel("stylesheet"), h.Href("/static/css/app.css")),
				h.Script(h.Src(htmxSrc), h.Defer()),
			),
			h.Body(
				Flashes(flashes),
				h.Main(h.Class("container"), g.Group(content)),
				h.Div(h.ID(NotificationsID), h.Class("notifications"), g.Attr("aria-live", "polite"), toasts),
			),
		),
	)
}

// Flashes renders one-shot session messages, if any.
func Flashes(f view.FlashData) g.Node {
	if f.Empty() {
		return nil
	}
	return h.Div(h.Class("flashes"),
		g.Map(f.Success, func(msg string) g.Node {
			return h.P(h.Class("flash flash-success"), g.Attr("role", "status"), g.Text(msg))
		}),
		g.Map(f.Error, func(msg string) g.Node {
			return h.P(h.Class("flash flash-error"), g.Attr("role", "alert"), g.Text(msg))
		}),
	)
}
