package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"

	"reelvault/internal/catalog"
	"reelvault/internal/storage"
	"reelvault/pkg/config"
	"reelvault/pkg/database"
	"reelvault/pkg/models"
)

// The grid engine works in pixels; the terminal works in character cells.
// A fixed cell-to-pixel scale bridges the two, so the browser exercises
// the same layout math the desktop front-end uses.
const (
	pxPerChar = 10.0 // horizontal pixels per terminal column
	pxPerLine = 22.0 // vertical pixels per terminal row
)

// Reserved terminal rows outside the grid.
const (
	headerLines = 1
	footerLines = 1
)

var categories = []catalog.Category{
	catalog.CategoryAll,
	catalog.CategoryUntagged,
	catalog.CategoryWatched,
	catalog.CategoryUnwatched,
	catalog.CategoryFavorites,
}

type browser struct {
	screen tcell.Screen
	store  *catalog.Store

	cursor   int     // index into the filtered list
	scrollPx float64 // grid scroll offset in engine pixels

	searching bool // typing into the query box
	catIdx    int
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("[browse] load config: %v", err)
	}

	db := database.MustOpen(database.Config{Path: cfg.DBPath})
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("[browse] db migrate failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := storage.NewEntryRepo(db).List(ctx)
	if err != nil {
		log.Fatalf("[browse] load entries: %v", err)
	}
	tags, err := storage.NewTagRepo(db).List(ctx)
	if err != nil {
		log.Fatalf("[browse] load tags: %v", err)
	}

	store := catalog.NewStore()
	store.Reload(entries, tags)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("[browse] screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("[browse] screen init: %v", err)
	}
	defer screen.Fini()

	b := &browser{screen: screen, store: store}
	b.run()
}

func (b *browser) run() {
	for {
		b.draw()
		ev := b.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			b.screen.Sync()
		case *tcell.EventKey:
			if b.searching {
				if !b.handleSearchKey(ev) {
					return
				}
				continue
			}
			if !b.handleKey(ev) {
				return
			}
		}
	}
}

func (b *browser) handleSearchKey(ev *tcell.EventKey) bool {
	q := b.store.FilterSpec().Query
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyEnter:
		b.searching = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(q); len(r) > 0 {
			b.store.SetQuery(string(r[:len(r)-1]))
			b.clampCursor()
		}
	case tcell.KeyCtrlU:
		b.store.SetQuery("")
		b.clampCursor()
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		b.store.SetQuery(q + string(ev.Rune()))
		b.clampCursor()
	}
	return true
}

func (b *browser) handleKey(ev *tcell.EventKey) bool {
	layout := b.layout()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		b.moveCursor(-1)
	case tcell.KeyRight:
		b.moveCursor(1)
	case tcell.KeyUp:
		b.moveCursor(-layout.Columns)
	case tcell.KeyDown:
		b.moveCursor(layout.Columns)
	case tcell.KeyPgUp:
		b.moveCursor(-layout.Columns * 3)
	case tcell.KeyPgDn:
		b.moveCursor(layout.Columns * 3)
	case tcell.KeyHome:
		b.cursor = 0
	case tcell.KeyEnd:
		b.cursor = len(b.store.Filtered()) - 1
	case tcell.KeyEnter:
		b.store.Click(b.cursor, catalog.ClickPlain)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'h':
			b.moveCursor(-1)
		case 'l':
			b.moveCursor(1)
		case 'k':
			b.moveCursor(-layout.Columns)
		case 'j':
			b.moveCursor(layout.Columns)
		case ' ':
			b.store.Click(b.cursor, catalog.ClickPlain)
		case 't':
			b.store.Click(b.cursor, catalog.ClickToggle)
		case 'v':
			b.store.Click(b.cursor, catalog.ClickRange)
		case 'c':
			b.catIdx = (b.catIdx + 1) % len(categories)
			b.store.SetCategory(categories[b.catIdx], 0)
			b.clampCursor()
		case '/':
			b.searching = true
		}
	}
	return true
}

func (b *browser) moveCursor(delta int) {
	b.cursor += delta
	b.clampCursor()
}

func (b *browser) clampCursor() {
	n := len(b.store.Filtered())
	if b.cursor >= n {
		b.cursor = n - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
}

func (b *browser) layout() catalog.GridLayout {
	w, _ := b.screen.Size()
	return catalog.ComputeGrid(float64(w)*pxPerChar, len(b.store.Filtered()), catalog.DefaultGridSpec)
}

func (b *browser) viewportPx() float64 {
	_, h := b.screen.Size()
	gridLines := h - headerLines - footerLines
	if gridLines < 1 {
		gridLines = 1
	}
	return float64(gridLines) * pxPerLine
}

// ensureCursorVisible scrolls just enough to keep the cursor's cell
// inside the viewport.
func (b *browser) ensureCursorVisible(layout catalog.GridLayout) {
	if layout.Count == 0 {
		b.scrollPx = 0
		return
	}
	_, top := layout.CellPos(b.cursor)
	bottom := top + layout.Spec.CellHeight

	vp := b.viewportPx()
	if top < b.scrollPx {
		b.scrollPx = top - layout.Spec.Padding
	}
	if bottom > b.scrollPx+vp {
		b.scrollPx = bottom - vp + layout.Spec.Padding
	}
	if b.scrollPx < 0 {
		b.scrollPx = 0
	}
	if max := layout.TotalHeight() - vp; b.scrollPx > max && max > 0 {
		b.scrollPx = max
	}
}

func (b *browser) draw() {
	b.screen.Clear()

	filtered := b.store.Filtered()
	layout := b.layout()
	b.clampCursor()
	b.ensureCursorVisible(layout)

	vp := b.viewportPx()
	b.store.Visibility().Observe(layout, filtered, b.scrollPx, vp)

	b.drawHeader(layout)
	b.drawGrid(layout)
	b.drawFooter()

	b.screen.Show()
}

func (b *browser) drawHeader(layout catalog.GridLayout) {
	spec := b.store.FilterSpec()
	mode := "materialized"
	if layout.Virtualized() {
		mode = "virtualized"
	}

	query := spec.Query
	if b.searching {
		query += "_"
	}
	line := fmt.Sprintf(" /%s  [%s]  %d/%d entries  %s",
		query, spec.String(), layout.Count, b.store.Len(), mode)

	style := tcell.StyleDefault.Reverse(true)
	if b.searching {
		style = style.Bold(true)
	}
	b.drawLine(0, line, style)
}

func (b *browser) drawFooter() {
	_, h := b.screen.Size()
	line := fmt.Sprintf(" %d selected  %d seen  |  arrows/hjkl move  space select  t toggle  v range  c category  / search  q quit",
		b.store.Selection().Len(), b.store.Visibility().Count())
	b.drawLine(h-1, line, tcell.StyleDefault.Reverse(true))
}

func (b *browser) drawGrid(layout catalog.GridLayout) {
	filtered := b.store.Filtered()
	if len(filtered) == 0 {
		b.drawLine(headerLines+1, "  nothing matches", tcell.StyleDefault.Dim(true))
		return
	}

	// Only rows intersecting the viewport are rendered; this is the same
	// row range a virtualized renderer would instantiate.
	firstRow, lastRow := layout.RowRange(b.scrollPx, b.viewportPx(), 0)
	first, last := layout.IndexRange(firstRow, lastRow)

	for i := first; i <= last && i < len(filtered); i++ {
		b.drawCell(layout, i, filtered[i])
	}
}

func (b *browser) drawCell(layout catalog.GridLayout, index int, e models.Entry) {
	px, py := layout.CellPos(index)
	x := int(px / pxPerChar)
	y := headerLines + int((py-b.scrollPx)/pxPerLine)

	cellW := int((layout.ColumnWidth-layout.Spec.Gap)/pxPerChar) + 1
	cellH := int(layout.Spec.CellHeight / pxPerLine)
	if cellW < 8 {
		cellW = 8
	}

	style := tcell.StyleDefault
	if b.store.Selected(e.ID) {
		style = style.Reverse(true)
	}
	if index == b.cursor {
		style = style.Bold(true)
	}

	// poster area: gated on the visibility tracker, like image loading
	poster := "·loading·"
	if b.store.Visibility().Seen(e.ID) {
		poster = posterArt(e.ID)
	}

	lines := []string{
		"┌" + strings.Repeat("─", cellW-2) + "┐",
		"│" + pad(poster, cellW-2) + "│",
		"│" + pad(e.DisplayTitle(), cellW-2) + "│",
		"│" + pad(cellMeta(e), cellW-2) + "│",
		"│" + pad(tagLine(e), cellW-2) + "│",
		"└" + strings.Repeat("─", cellW-2) + "┘",
	}
	for row, s := range lines {
		if row >= cellH {
			break
		}
		b.drawText(x, y+row, s, style)
	}
}

func cellMeta(e models.Entry) string {
	marks := ""
	if e.Watched {
		marks += " ✓"
	}
	if e.Favorite {
		marks += " ★"
	}
	stars := strings.Repeat("*", e.Rating)
	return fmt.Sprintf("%s %s%s", stars, humanize.Bytes(uint64(e.Size)), marks)
}

func tagLine(e models.Entry) string {
	if len(e.Tags) == 0 {
		return ""
	}
	names := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, " ")
}

func (b *browser) drawText(x, y int, s string, style tcell.Style) {
	w, h := b.screen.Size()
	if y < 0 || y >= h {
		return
	}
	col := x
	for _, r := range s {
		if col >= w {
			break
		}
		if col >= 0 {
			b.screen.SetContent(col, y, r, nil, style)
		}
		col++
	}
}

func (b *browser) drawLine(y int, s string, style tcell.Style) {
	w, _ := b.screen.Size()
	if len(s) < w {
		s += strings.Repeat(" ", w-len(s))
	}
	b.drawText(0, y, s, style)
}

func pad(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width > 1 {
			return string(r[:width-1]) + "…"
		}
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// posterArt stands in for a thumbnail.
func posterArt(id int64) string {
	glyphs := []string{"░░░░░░", "▒▒▒▒▒▒", "▓▓▓▓▓▓"}
	return glyphs[id%int64(len(glyphs))]
}
