// Package web embeds the page templates and builds the view engine.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	html "github.com/gofiber/template/html/v2"

	"keebshop/internal/domain"
)

//go:embed templates
var files embed.FS

// Templates is the template tree rooted at templates/.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

func Engine() *html.Engine {
	engine := html.NewFileSystem(http.FS(Templates()), ".html")
	engine.AddFuncMap(Funcs())
	return engine
}

func Funcs() map[string]any {
	return map[string]any{
		"price":       domain.FormatPrice,
		"layoutLabel": func(l domain.KeyboardLayout) string { return l.Label() },
		"comma":       func(n int64) string { return humanize.Comma(n) },
		"ago": func(o domain.Order) string {
			if t, ok := o.Created(); ok {
				return humanize.Time(t)
			}
			return o.CreatedAt
		},
		"date": func(o domain.Order) string {
			if t, ok := o.Created(); ok {
				return t.Format("Jan 2, 2006 15:04")
			}
			return o.CreatedAt
		},
		"conflict": func(it domain.CartItem) *domain.StockConflict {
			if sc, ok := domain.ConflictFor(it); ok {
				return &sc
			}
			return nil
		},
		"fval": func(p *float64) string {
			if p == nil {
				return ""
			}
			return humanize.Ftoa(*p)
		},
		"bset": func(p *bool) bool { return p != nil && *p },
		"pages": func(total int) []int {
			out := make([]int, 0, total)
			for i := 1; i <= total; i++ {
				out = append(out, i)
			}
			return out
		},
		"inc":  func(n int) int { return n + 1 },
		"year": func() int { return time.Now().Year() },
	}
}
