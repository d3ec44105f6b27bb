package view

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWrapsPageInLayout(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.html": {Data: []byte(`<main>{{block "content" .}}{{end}}</main>`)},
		"shop.html":   {Data: []byte(`{{define "content"}}{{.Name}} {{money .Price}}{{end}}`)},
		"about.html":  {Data: []byte(`{{define "content"}}about{{end}}`)},
	}
	eng, err := New(fsys)
	require.NoError(t, err)
	assert.True(t, eng.Has("shop"))
	assert.False(t, eng.Has("layout"))

	var buf bytes.Buffer
	require.NoError(t, eng.Render(&buf, "shop", map[string]interface{}{"Name": "<b>Mug</b>", "Price": int64(300)}))
	assert.Equal(t, "<main>&lt;b&gt;Mug&lt;/b&gt; ₹300</main>", buf.String())

	buf.Reset()
	require.NoError(t, eng.Render(&buf, "about", nil))
	assert.Equal(t, "<main>about</main>", buf.String())

	assert.Error(t, eng.Render(&buf, "missing", nil))
}
