package handlers

import (
	"fmt"
	"html/template"
	"path/filepath"
	"strconv"
	"time"

	"familyregistry/internal/models"
)

// LoadTemplates parses the layout and every page template under templatesPath
func LoadTemplates(templatesPath string) (*template.Template, error) {
	patterns := []string{
		filepath.Join(templatesPath, "base.tmpl"),
		filepath.Join(templatesPath, "family/*.tmpl"),
		filepath.Join(templatesPath, "admin/*.tmpl"),
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found in %s", templatesPath)
	}

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDOB": func(t time.Time) string {
			return t.UTC().Format("2006-01-02")
		},
		"age": func(age *int) string {
			if age == nil {
				return "-"
			}
			return strconv.Itoa(*age)
		},
		"add": func(a, b int) int {
			return a + b
		},
		"canApprove": func(s models.Status) bool {
			return s.CanTransitionTo(models.StatusApproved)
		},
		"canReject": func(s models.Status) bool {
			return s.CanTransitionTo(models.StatusRejected)
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
