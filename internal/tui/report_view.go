package tui

import (
	"github.com/charmbracelet/glamour"

	"schoolconnect/internal/core/school"
)

// ReportView renders the report card as glamour markdown, re-rendered
// when the width changes.
type ReportView struct {
	card     school.ReportCard
	width    int
	rendered string
}

// NewReportView creates a view over the given report card.
func NewReportView(card school.ReportCard) *ReportView {
	return &ReportView{card: card}
}

// SetSize sets the render width.
func (v *ReportView) SetSize(width, _ int) {
	if width == v.width {
		return
	}
	v.width = width
	v.rendered = ""
}

// View renders the report card.
func (v *ReportView) View() string {
	if v.rendered != "" {
		return v.rendered
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(v.width),
	)
	if err != nil {
		return v.card.Markdown()
	}

	out, err := renderer.Render(v.card.Markdown())
	if err != nil {
		return v.card.Markdown()
	}

	v.rendered = out
	return out
}
