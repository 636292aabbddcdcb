// Package view holds the storefront's HTML templates and the helpers they use.
package view

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Page templates by name, as passed to gin's c.HTML
const (
	PageHome        = "home.html"
	PageUserAuth    = "user_auth.html"
	PageAdminLogin  = "admin_login.html"
	PageCustomer    = "customer.html"
	PageOrderDetail = "order_detail.html"
	PageAdmin       = "admin.html"
	PageError       = "error.html"
)

// Load parses every embedded template into one set
func Load() (*template.Template, error) {
	return template.New("storefront").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

// MustLoad is Load for process start-up
func MustLoad() *template.Template {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}
