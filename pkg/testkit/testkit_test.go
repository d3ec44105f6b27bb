package testkit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientKeepsCookies(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "s", Value: "v1"})
		case "/clear":
			http.SetCookie(w, &http.Cookie{Name: "s", MaxAge: -1})
		}
		if ck, err := r.Cookie("s"); err == nil {
			w.Write([]byte(ck.Value))
		}
	})

	c := NewClient(t, h)
	assert.Empty(t, c.Get("/").Body.String())
	c.Get("/set")
	assert.Equal(t, "v1", c.Get("/").Body.String())
	c.Get("/clear")
	assert.Empty(t, c.Get("/").Body.String())

	c.Get("/set")
	c.Forget()
	assert.Empty(t, c.Get("/").Body.String())
}

func TestDBIsMigrated(t *testing.T) {
	db := DB(t)
	for _, table := range []string{"users", "categories", "products", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
