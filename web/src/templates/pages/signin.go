// Package pages renders the application's screens and their htmx fragments.
package pages

import (
	"fmt"

	"github.com/nfrund/signin/internal/view"
	"github.com/nfrund/signin/internal/view/dto/auth"
	"github.com/nfrund/signin/web/src/templates/layouts"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// Element ids and endpoints shared with the handlers.
const (
	FormID     = "signin-form"
	ControlsID = "signin-controls"

	ValidatePath = "/signin/validate"
	LoginPath    = "/signin/login"
	RecoverPath  = "/signin/recover-password"
	StatusPath   = "/signin/status"
	DismissPath  = "/signin/dismiss"

	pollTrigger = "load delay:500ms"
)

// SigninPage renders the full sign-in screen with any notifications still pending.
func SigninPage(data auth.SigninData, flashes view.FlashData, pending []auth.NotificationData) g.Node {
	return layouts.Base("Sign in", flashes, g.Map(pending, Toast),
		h.Section(h.Class("signin"),
			h.H1(g.Text("Sign in")),
			h.Form(h.ID(FormID), h.Method("post"), h.Action(LoginPath), g.Attr("novalidate"),
				field("email", "Email", "email", data.Email, "username"),
				field("password", "Password", "password", "", "current-password"),
			),
			SigninControls(data),
		),
	)
}

func field(name, label, typ, value, autocomplete string) g.Node {
	return h.Div(h.Class("field"),
		h.Label(h.For(name), g.Text(label)),
		h.Input(
			h.ID(name),
			h.Name(name),
			h.Type(typ),
			h.Value(value),
			h.AutoComplete(autocomplete),
			h.Data("testid", name+"-input"),
			hx.Post(ValidatePath),
			hx.Trigger("input changed delay:200ms"),
			hx.Include("#"+FormID),
			hx.Target("#"+ControlsID),
			hx.Swap("outerHTML"),
		),
	)
}

// SigninControls renders the field errors and both actions. A busy action shows
// its loader in place of its button, and the fragment polls the status endpoint
// to replace itself until the call settles.
func SigninControls(data auth.SigninData) g.Node {
	return h.Div(h.ID(ControlsID), h.Class("controls"),
		g.If(data.Busy(), g.Group{
			hx.Get(StatusPath),
			hx.Trigger(pollTrigger),
			hx.Target("this"),
			hx.Swap("outerHTML"),
		}),
		fieldError("email", data.EmailError),
		fieldError("password", data.PasswordError),
		action(data.IsLoginIn, "login", "primary", LoginPath, "Log in", data.LoginEnabled),
		action(data.IsRecoveringPassword, "recover-password", "link", RecoverPath, "Forgot your password?", data.RecoverEnabled),
	)
}

// action renders the button for name, or its loader while busy.
func action(busy bool, name, class, path, label string, enabled bool) g.Node {
	if busy {
		return loader(name + "-loader")
	}
	return h.Button(
		h.Type("button"),
		h.Class(class),
		h.Data("testid", name+"-button"),
		g.If(!enabled, h.Disabled()),
		hx.Post(path),
		hx.Include("#"+FormID),
		hx.Target("#"+ControlsID),
		hx.Swap("outerHTML"),
		g.Text(label),
	)
}

func fieldError(name, msg string) g.Node {
	if msg == "" {
		return nil
	}
	return h.P(h.Class("field-error"), h.Data("testid", name+"-error"), g.Text(msg))
}

func loader(testID string) g.Node {
	return h.Span(h.Class("loader"), h.Data("testid", testID), g.Attr("aria-hidden", "true"))
}

// Toasts renders notifications as an out-of-band append to the notification area.
func Toasts(items []auth.NotificationData) g.Node {
	if len(items) == 0 {
		return nil
	}
	return h.Div(h.ID(layouts.NotificationsID), hx.SwapOOB("beforeend"),
		g.Map(items, Toast),
	)
}

// Toast renders one notification. It removes itself after its duration or
// when its dismiss button is pressed.
func Toast(n auth.NotificationData) g.Node {
	removeSelf := func(extra ...g.Node) g.Node {
		return g.Group(append([]g.Node{
			hx.Get(DismissPath),
			hx.Target("closest .toast"),
			hx.Swap("delete"),
		}, extra...))
	}
	return h.Div(h.ID("toast-"+n.ID), h.Class("toast"), g.Attr("role", "status"), h.Data("testid", "notification"),
		h.Span(h.Class("toast-message"), g.Text(n.Message)),
		h.Button(h.Type("button"), h.Class("toast-dismiss"), removeSelf(), g.Text(n.Dismiss)),
		h.Span(removeSelf(hx.Trigger(fmt.Sprintf("load delay:%dms", n.Duration.Milliseconds())))),
	)
}
