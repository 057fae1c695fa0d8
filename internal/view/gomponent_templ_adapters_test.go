package view_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/nfrund/signin/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func TestAdaptGomponentToTempl(t *testing.T) {
	component := view.AdaptGomponentToTempl(h.Span(h.ID("greeting"), g.Text("Hello")))

	var buf bytes.Buffer
	require.NoError(t, component.Render(context.Background(), &buf))
	assert.Equal(t, `<span id="greeting">Hello</span>`, buf.String())
}
