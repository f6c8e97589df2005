// Package view holds the HTML templates of the site and the functions they use.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*/*.html
var templateFS embed.FS

// Template names
const (
	PageIndex      = "posts/index.html"
	PageGroupList  = "posts/group_list.html"
	PageProfile    = "posts/profile.html"
	PagePostDetail = "posts/post_detail.html"
	PageCreatePost = "posts/create_post.html"
	PageAbout      = "about/author.html"
	PageTech       = "about/tech.html"
	PageLogin      = "users/login.html"
	PageNotFound   = "core/404.html"
	PageServerErr  = "core/500.html"
	PageError      = "core/error.html"
)

// Templates parses every embedded template with FuncMap installed
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// FuncMap returns the functions available to templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"truncate":       truncate,
		"linebreaksbr":   linebreaksbr,
		"add":            add,
		"sub":            sub,
		"dict":           dict,
		"now":            time.Now,
	}
}

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// formatDate renders a date as "02 января 2006"
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d %s %d", t.Day(), monthsGenitive[t.Month()-1], t.Year())
}

// formatDateTime renders "02 января 2006 15:04"
func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatDate(t) + " " + t.Format("15:04")
}

// truncate shortens s to max runes, ending with an ellipsis when cut
func truncate(s string, max int) string {
	const suffix = "…"
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + suffix
}

// linebreaksbr escapes s and turns its line breaks into <br>
func linebreaksbr(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func add(a, b int) int { return a + b }

func sub(a, b int) int { return a - b }

// dict builds a map from key/value pairs, for passing several values to a partial
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	result := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		result[key] = pairs[i+1]
	}
	return result, nil
}
