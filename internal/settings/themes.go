package settings

import (
	"context"
	"errors"
)

// ErrUnknownTheme is returned when a theme id is not in Themes.
var ErrUnknownTheme = errors.New("unknown theme")

// DefaultTheme is used when nothing valid is saved.
const DefaultTheme = "mint"

// Theme is a selectable colour scheme.
type Theme struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Preview string `json:"preview"`
}

// Themes lists the available themes in picker order.
var Themes = []Theme{
	{ID: "aurora", Label: "Aurora", Preview: "linear-gradient(135deg, #4fc3f7, #ab47bc)"},
	{ID: "sakura", Label: "Sakura", Preview: "linear-gradient(135deg, #f48fb1, #ec407a)"},
	{ID: "cyberpunk", Label: "Cyberpunk", Preview: "linear-gradient(135deg, #22d3ee, #f43f5e)"},
	{ID: "royal", Label: "Royal", Preview: "linear-gradient(135deg, #ffd700, #c59d5f)"},
	{ID: "mint", Label: "Mint (default)", Preview: "linear-gradient(135deg, #66bb6a, #26a69a)"},
}

// KnownTheme reports whether id names one of Themes.
func KnownTheme(id string) bool {
	for _, t := range Themes {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Theme returns the saved theme id, falling back to DefaultTheme.
func (s *Store) Theme(ctx context.Context) string {
	if id := s.GetString(ctx, KeyTheme); KnownTheme(id) {
		return id
	}
	return DefaultTheme
}

// SetTheme saves id as the active theme.
func (s *Store) SetTheme(ctx context.Context, id string) error {
	if !KnownTheme(id) {
		return ErrUnknownTheme
	}
	s.SetString(ctx, KeyTheme, id)
	return nil
}
