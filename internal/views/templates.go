package views

import (
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// Pages lists every view the handlers render, keyed by the name passed to
// c.HTML. Paths are relative to the views directory.
var Pages = []string{
	"bookmark/list.html",
	"bookmark/create.html",
	"bookmark/edit.html",
	"auth/login.html",
	"auth/register.html",
	"user/profile.html",
	"error.html",
}

// FuncMap is shared by all pages.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": TimeAgo,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}
}

// TimeAgo renders a coarse relative time.
func TimeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// Load builds one template set per page: the layouts plus the page itself.
func Load(templatesDir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(templatesDir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts found in %s", templatesDir)
	}

	funcMap := FuncMap()
	for _, page := range Pages {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, filepath.Join(templatesDir, "views", filepath.FromSlash(page)))

		tmpl, err := template.New(filepath.Base(files[0])).Funcs(funcMap).ParseFiles(files...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.Add(page, tmpl)
	}

	return r, nil
}
