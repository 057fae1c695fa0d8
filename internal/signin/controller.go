// Package signin implements the state machine behind the sign-in screen: form
// validation, the login and recover-password request cycles, and the busy
// state that gates the screen's controls.
package signin

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Phase is the state of one handler's request cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Action names a user-triggered request cycle.
type Action string

const (
	ActionLogin           Action = "login"
	ActionRecoverPassword Action = "recover_password"
)

// Outcome describes a settled call.
type Outcome struct {
	Action  Action
	Email   string
	Err     error
	Elapsed time.Duration
}

// Observer is told about every settled call. It must not block.
type Observer interface {
	Settled(o Outcome)
}

// Observers fans a settled call out to every observer in order.
type Observers []Observer

func (all Observers) Settled(o Outcome) {
	for _, obs := range all {
		obs.Settled(o)
	}
}

// State is a snapshot of the controller used to render the screen.
type State struct {
	Form    Form
	Login   Phase
	Recover Phase

	IsLoginIn            bool
	IsRecoveringPassword bool
	LoginEnabled         bool
	RecoverEnabled       bool
}

// Busy reports whether a call is outstanding.
func (s State) Busy() bool {
	return s.IsLoginIn || s.IsRecoveringPassword
}

// Option configures a Controller.
type Option func(*Controller)

// WithCallTimeout settles an outstanding call as failed after d. Zero disables the guard.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithObserver registers an observer for settled calls.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// Controller drives the sign-in screen. It is safe for concurrent use.
type Controller struct {
	auth      AuthService
	notifier  Notifier
	navigator Navigator
	observer  Observer
	timeout   time.Duration

	mu       sync.Mutex
	form     Form
	login    Phase
	recover  Phase
	identity *Identity

	wg sync.WaitGroup
}

// NewController creates a Controller with an empty form and both handlers idle.
func NewController(auth AuthService, notifier Notifier, navigator Navigator, opts ...Option) *Controller {
	c := &Controller{
		auth:      auth,
		notifier:  notifier,
		navigator: navigator,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetEmail updates the email field.
func (c *Controller) SetEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Email = email
}

// SetPassword updates the password field.
func (c *Controller) SetPassword(password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Password = password
}

// SetForm replaces both fields.
func (c *Controller) SetForm(f Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = f
}

// State returns a snapshot of the form and both handlers.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{
		Form:                 c.form,
		Login:                c.login,
		Recover:              c.recover,
		IsLoginIn:            c.login == PhaseSubmitting,
		IsRecoveringPassword: c.recover == PhaseSubmitting,
	}
	s.LoginEnabled = !s.Busy() && c.form.Valid()
	s.RecoverEnabled = !s.Busy() && EmailValid(c.form.Email)
	return s
}

// Identity returns the identity of the last successful sign-in, if any.
func (c *Controller) Identity() *Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Login starts a sign-in call with the current form and returns immediately.
// On success the navigator is sent to HomeRoute; on failure the error is notified.
func (c *Controller) Login(ctx context.Context) error {
	c.mu.Lock()
	s := c.stateLocked()
	if s.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if !s.LoginEnabled {
		c.mu.Unlock()
		return ErrLoginDisabled
	}
	creds := c.form.Credentials()
	c.login = PhaseSubmitting
	c.identity = nil
	c.wg.Add(1)
	c.mu.Unlock()

	go c.runLogin(ctx, creds)
	return nil
}

func (c *Controller) runLogin(ctx context.Context, creds Credentials) {
	defer c.wg.Done()

	start := time.Now()
	identity, err := call(ctx, c.timeout, func(ctx context.Context) (*Identity, error) {
		return c.auth.SignIn(ctx, creds)
	})
	c.observe(Outcome{Action: ActionLogin, Email: creds.Email, Err: err, Elapsed: time.Since(start)})

	if err == nil {
		c.mu.Lock()
		c.identity = identity
		c.mu.Unlock()
	}

	// Notify or navigate first; the phase leaves Submitting afterwards.
	if err != nil {
		c.notifier.Notify(Notification{Message: MessageOf(err), Dismiss: DismissOK, Duration: NotifyDuration})
	} else {
		c.navigator.NavigateTo(HomeRoute)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.login = PhaseFailed
		return
	}
	c.login = PhaseSucceeded
}

// RecoverPassword starts a password-recovery call for the current email and
// returns immediately. Either outcome is notified.
func (c *Controller) RecoverPassword(ctx context.Context) error {
	c.mu.Lock()
	s := c.stateLocked()
	if s.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if !s.RecoverEnabled {
		c.mu.Unlock()
		return ErrRecoverDisabled
	}
	email := c.form.Credentials().Email
	c.recover = PhaseSubmitting
	c.wg.Add(1)
	c.mu.Unlock()

	go c.runRecover(ctx, email)
	return nil
}

func (c *Controller) runRecover(ctx context.Context, email string) {
	defer c.wg.Done()

	start := time.Now()
	_, err := call(ctx, c.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.auth.RecoverPassword(ctx, email)
	})
	c.observe(Outcome{Action: ActionRecoverPassword, Email: email, Err: err, Elapsed: time.Since(start)})

	if err != nil {
		c.notifier.Notify(Notification{Message: MessageOf(err), Dismiss: DismissOke, Duration: NotifyDuration})
	} else {
		c.notifier.Notify(Notification{Message: RecoverySentMessage, Dismiss: DismissOK, Duration: NotifyDuration})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.recover = PhaseFailed
		return
	}
	c.recover = PhaseSucceeded
}

// Wait blocks until no call is outstanding.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) observe(o Outcome) {
	if c.observer != nil {
		c.observer.Settled(o)
	}
}

// call runs fn detached from the cancellation of ctx, bounded by timeout.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx = context.WithoutCancel(ctx)
	if timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return r.v, ErrCallTimeout
		}
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ErrCallTimeout
	}
}
