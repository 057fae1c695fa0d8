package screen

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nfrund/signin/internal/signin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct{}

func (stubAuth) SignIn(context.Context, signin.Credentials) (*signin.Identity, error) {
	return &signin.Identity{ID: "user:1", Email: "valid@gmail.com", Token: "token"}, nil
}

func (stubAuth) RecoverPassword(context.Context, string) error {
	return signin.NewAuthError("anyError", nil)
}

type countingHooks struct {
	mounted   atomic.Int32
	unmounted atomic.Int32
}

func (h *countingHooks) ScreenMounted()   { h.mounted.Add(1) }
func (h *countingHooks) ScreenUnmounted() { h.unmounted.Add(1) }

func TestScreen_Inbox(t *testing.T) {
	s := &Screen{}
	s.Notify(signin.Notification{Message: "first"})
	s.Notify(signin.Notification{Message: "second"})

	drained := s.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "first", drained[0].Message)
	assert.Empty(t, s.Drain())

	assert.Empty(t, s.TakeRoute())
	s.NavigateTo("/elsewhere")
	s.NavigateTo(signin.HomeRoute)
	assert.Equal(t, signin.HomeRoute, s.TakeRoute())
	assert.Empty(t, s.TakeRoute())
}

func TestRegistry_MountGetUnmount(t *testing.T) {
	hooks := &countingHooks{}
	r := NewRegistry(stubAuth{}, time.Minute, hooks)

	s := r.Mount()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, int32(1), hooks.mounted.Load())

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	st := got.Controller.State()
	assert.Equal(t, signin.PhaseIdle, st.Login)
	assert.False(t, st.LoginEnabled)

	r.Unmount(s.ID)
	_, ok = r.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, int32(1), hooks.unmounted.Load())
}

func TestRegistry_ScreenCollectsControllerSideEffects(t *testing.T) {
	r := NewRegistry(stubAuth{}, time.Minute, nil)
	s := r.Mount()

	s.Controller.SetForm(signin.Form{Email: "valid@gmail.com", Password: "validPassword"})
	require.NoError(t, s.Controller.Login(context.Background()))
	s.Controller.Wait()
	assert.Equal(t, signin.HomeRoute, s.TakeRoute())

	require.NoError(t, s.Controller.RecoverPassword(context.Background()))
	s.Controller.Wait()
	assert.Equal(t, []signin.Notification{{Message: "anyError", Dismiss: signin.DismissOke, Duration: signin.NotifyDuration}}, s.Drain())
}

func TestRegistry_Expiry(t *testing.T) {
	hooks := &countingHooks{}
	r := NewRegistry(stubAuth{}, 50*time.Millisecond, hooks)
	s := r.Mount()

	time.Sleep(100 * time.Millisecond)
	_, ok := r.Get(s.ID)
	assert.False(t, ok)

	assert.Eventually(t, func() bool {
		return hooks.unmounted.Load() == 1
	}, 3*time.Second, 50*time.Millisecond)
}

func TestRegistry_UnknownID(t *testing.T) {
	r := NewRegistry(stubAuth{}, time.Minute, nil)
	_, ok := r.Get("missing")
	assert.False(t, ok)
}
