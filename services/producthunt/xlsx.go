package producthunt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// sheet names are limited to 31 characters and may not contain []:*?/\
func sanitizeSheetName(name string) string {
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
}

// columnSizer tracks the widest cell per column so the sheet can be
// sized after all rows are written.
type columnSizer struct {
	widths []float64
	cap    float64
}

func newColumnSizer(cap float64) *columnSizer {
	return &columnSizer{cap: cap}
}

func (c *columnSizer) observe(row []any) {
	for i, cell := range row {
		for len(c.widths) <= i {
			c.widths = append(c.widths, 0)
		}
		width := float64(utf8.RuneCountInString(cellString(cell))) + 2
		if width > c.cap {
			width = c.cap
		}
		if width > c.widths[i] {
			c.widths[i] = width
		}
	}
}

func (c *columnSizer) apply(f *excelize.File, sheet string) error {
	for i, width := range c.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
