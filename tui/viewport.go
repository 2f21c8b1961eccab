// viewport.go provides a vertically scrollable text area used by the
// views to show transcripts longer than the screen.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Viewport is a scrollable text area.
type Viewport struct {
	width   int
	height  int
	content []string // lines of content, may contain ANSI styling
	scrollY int      // vertical scroll offset (line index)
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{width: width, height: height}
}

// SetContentLines replaces the viewport content. Lines containing
// newlines are split.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = v.content[:0]
	for _, line := range lines {
		v.content = append(v.content, strings.Split(line, "\n")...)
	}
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

func (v *Viewport) PageUp()   { v.ScrollUp(v.height) }
func (v *Viewport) PageDown() { v.ScrollDown(v.height) }
func (v *Viewport) Home()     { v.scrollY = 0 }
func (v *Viewport) End()      { v.scrollY = v.maxScrollY() }

// Render returns the visible portion of the content, truncated to the
// viewport width without breaking styling.
func (v *Viewport) Render() string {
	if len(v.content) == 0 {
		return ""
	}
	end := min(v.scrollY+v.height, len(v.content))
	lines := make([]string, 0, v.height+1)
	for _, line := range v.content[v.scrollY:end] {
		if v.width > 0 && lipgloss.Width(line) > v.width {
			line = ansi.Truncate(line, v.width, "…")
		}
		lines = append(lines, line)
	}
	for len(lines) < v.height {
		lines = append(lines, "")
	}
	if indicator := v.scrollIndicator(); indicator != "" {
		lines = append(lines, indicator)
	}
	return strings.Join(lines, "\n")
}

func (v *Viewport) clampScroll() {
	v.scrollY = max(0, min(v.scrollY, v.maxScrollY()))
}

func (v *Viewport) maxScrollY() int {
	return max(0, len(v.content)-v.height)
}

func (v *Viewport) scrollIndicator() string {
	total := len(v.content)
	if total <= v.height {
		return ""
	}
	label := fmt.Sprintf(" %d%% (%d/%d)", (v.scrollY*100)/total, v.scrollY+1, total)
	rule := strings.Repeat("─", max(0, v.width-lipgloss.Width(label)))
	return StyleDimmed.Render(rule + label)
}
