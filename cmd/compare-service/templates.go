package main

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type indexGroup struct {
	Name   string
	Label  string
	Images []imageRef
}

type indexPage struct {
	Groups []indexGroup
}
