// Package web holds the server-rendered pages of the stand app.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Money formats an amount the Norwegian way: "1234,50 kr".
func Money(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1) + " kr"
}

// Templates parses every page. Each file is addressed by its base name.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"money": Money,
		"short": func(rfc3339 string) string {
			if len(rfc3339) >= 16 {
				return strings.Replace(rfc3339[:16], "T", " ", 1)
			}
			return rfc3339
		},
	}).ParseFS(files, "templates/*.html")
}
