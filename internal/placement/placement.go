// Package placement persists the widget position as a two-line text file:
// left on the first line, top on the second.
package placement

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFile is the file name used when no path is configured.
const DefaultFile = "window_position.txt"

// Position is the top-left corner of the widget.
type Position struct {
	Left float64
	Top  float64
}

// Bounds is the virtual screen the widget may be placed on.
type Bounds struct {
	Left, Top, Width, Height float64
}

// Contains reports whether p lies on the screen, edges included.
func (b Bounds) Contains(p Position) bool {
	return p.Left >= b.Left && p.Left <= b.Left+b.Width &&
		p.Top >= b.Top && p.Top <= b.Top+b.Height
}

// Save writes the position, creating the parent directory if needed.
func Save(path string, p Position) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	content := strconv.FormatFloat(p.Left, 'g', -1, 64) + "\n" +
		strconv.FormatFloat(p.Top, 'g', -1, 64) + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write position: %w", err)
	}
	return nil
}

// Load reads a saved position. ok is false when the file is missing,
// malformed, or the position is off screen.
func Load(path string, screen Bounds) (Position, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Position{}, false
	}
	lines := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return Position{}, false
	}
	left, err := strconv.ParseFloat(strings.TrimSpace(lines[0]), 64)
	if err != nil {
		return Position{}, false
	}
	top, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return Position{}, false
	}
	p := Position{Left: left, Top: top}
	if !screen.Contains(p) {
		return Position{}, false
	}
	return p, true
}

// DefaultPath places the file under the user config directory, or the
// working directory when that is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultFile
	}
	return filepath.Join(dir, "wattmeter", DefaultFile)
}
