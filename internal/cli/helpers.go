package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
)

// ParseDueDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339. Empty yields nil.
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, Usagef("invalid due date %q (want YYYY-MM-DD or RFC 3339)", s)
}

// ParseContractValue accepts plain numbers with optional "$", thousands
// separators and a k/m/b suffix ("1,250,000", "$2.5M"). Empty yields nil.
func ParseContractValue(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	clean := strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
	if clean == "" {
		return nil, Usagef("invalid contract value %q", s)
	}
	mult := 1.0
	switch strings.ToLower(clean[len(clean)-1:]) {
	case "k":
		mult = 1e3
	case "m":
		mult = 1e6
	case "b":
		mult = 1e9
	}
	if mult != 1 {
		clean = clean[:len(clean)-1]
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, Usagef("invalid contract value %q", s)
	}
	v *= mult
	return &v, nil
}

// FormatContractValue renders a dollar amount with separators
func FormatContractValue(v *float64) string {
	if v == nil {
		return "not set"
	}
	return "$" + humanize.CommafWithDigits(*v, 2)
}

// FormatDue renders a due date with its distance from now
func FormatDue(due *time.Time, now time.Time) string {
	if due == nil {
		return "not set"
	}
	return fmt.Sprintf("%s (%s)", due.Format("2006-01-02"), humanize.RelTime(*due, now, "ago", "from now"))
}

// Cache glamour renderers by width to avoid expensive re-creation
var rendererCache sync.Map // map[int]*glamour.TermRenderer

func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	rendererCache.Store(width, renderer)
	return renderer, nil
}

// RenderMarkdown renders md for the terminal, returning md unchanged when
// rendering fails
func RenderMarkdown(md string, width int) string {
	renderer, err := getRenderer(width)
	if err != nil {
		return md
	}
	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
