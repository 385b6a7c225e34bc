package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
	"github.com/itohio/goscale/pkg/trend"
)

var (
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	limitColor = color.RGBA{R: 220, G: 40, B: 60, A: 255}
	alarmShade = color.RGBA{R: 120, G: 0, B: 30, A: 90}
)

// traceColor colours the weight line by controller state.
func traceColor(s scale.State) color.Color {
	switch s {
	case scale.StateMeasuring:
		return color.RGBA{R: 80, G: 220, B: 120, A: 255}
	case scale.StateAlarming:
		return color.RGBA{R: 255, G: 80, B: 80, A: 255}
	case scale.StateCalibrating:
		return color.RGBA{R: 255, G: 180, B: 0, A: 255}
	}
	return color.RGBA{R: 160, G: 160, B: 160, A: 255}
}

// plot maps data coordinates into the plot rectangle.
type plot struct {
	x, y, w, h float32
	yMin, yMax float64
	xMin, xMax time.Time
}

func (p plot) px(t time.Time) float32 {
	span := p.xMax.Sub(p.xMin).Seconds()
	if span <= 0 {
		return p.x
	}
	return p.x + float32(t.Sub(p.xMin).Seconds()/span)*p.w
}

func (p plot) py(v float64) float32 {
	return p.y + p.h - float32((v-p.yMin)/(p.yMax-p.yMin))*p.h
}

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope   *ScopeWidget
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 200)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.Refresh()
}

// Refresh rebuilds the canvas objects from the current data.
func (r *scopeRenderer) Refresh() {
	s := r.scope
	s.mu.RLock()
	statuses := s.statuses
	alarms := s.alarms
	p := plot{yMin: s.yMin, yMax: s.yMax, xMin: s.xMin, xMax: s.xMax}
	limit := s.limit
	s.mu.RUnlock()

	size := s.Size()
	r.objects = []fyne.CanvasObject{r.bg}
	if size.Width == 0 || size.Height == 0 {
		return
	}

	const (
		marginLeft   = 60
		marginRight  = 20
		marginTop    = 20
		marginBottom = 30
	)
	p.x, p.y = marginLeft, marginTop
	p.w = size.Width - marginLeft - marginRight
	p.h = size.Height - marginTop - marginBottom

	r.drawAlarms(p, alarms)
	r.drawGrid(p)
	r.drawLimit(p, limit)
	r.drawTrace(p, statuses)
	r.drawReadout(p, statuses)

	canvas.Refresh(r.bg)
}

func (r *scopeRenderer) line(c color.Color, width float32, from, to fyne.Position) {
	l := canvas.NewLine(c)
	l.StrokeWidth = width
	l.Position1 = from
	l.Position2 = to
	r.objects = append(r.objects, l)
}

func (r *scopeRenderer) text(s string, c color.Color, size float32, align fyne.TextAlign, pos fyne.Position) {
	t := canvas.NewText(s, c)
	t.TextSize = size
	t.Alignment = align
	t.Move(pos)
	r.objects = append(r.objects, t)
}

func (r *scopeRenderer) drawGrid(p plot) {
	const hLines, vLines = 6, 10

	for i := range hLines + 1 {
		y := p.y + float32(i)*p.h/hLines
		r.line(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))
		v := p.yMax - float64(i)*(p.yMax-p.yMin)/hLines
		r.text(fmt.Sprintf("%.1f g", v), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))
	}

	span := p.xMax.Sub(p.xMin)
	for i := range vLines + 1 {
		x := p.x + float32(i)*p.w/vLines
		r.line(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))
		offset := span * time.Duration(i) / vLines
		r.text(fmt.Sprintf("%.0fs", offset.Seconds()), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-10, p.y+p.h+5))
	}
}

func (r *scopeRenderer) drawLimit(p plot, limit float64) {
	y := p.py(limit)
	r.line(limitColor, 1.5, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))
	r.text(fmt.Sprintf("limit %.0f g", limit), limitColor, 10, fyne.TextAlignTrailing, fyne.NewPos(p.x+p.w, y-14))
}

func (r *scopeRenderer) drawAlarms(p plot, alarms []trend.Alarm) {
	for _, a := range alarms {
		x0 := max(p.px(a.Start), p.x)
		x1 := min(p.px(a.End), p.x+p.w)
		if x1 <= x0 {
			x1 = x0 + 2
		}
		shade := canvas.NewRectangle(alarmShade)
		shade.Move(fyne.NewPos(x0, p.y))
		shade.Resize(fyne.NewSize(x1-x0, p.h))
		r.objects = append(r.objects, shade)
		r.text(fmt.Sprintf("%.1f g", a.Peak), limitColor, 11, fyne.TextAlignLeading, fyne.NewPos(x0+2, p.y+2))
	}
}

func (r *scopeRenderer) drawTrace(p plot, statuses []link.Status) {
	for i := 1; i < len(statuses); i++ {
		prev, cur := statuses[i-1], statuses[i]
		r.line(traceColor(cur.State), 1.5,
			fyne.NewPos(p.px(prev.Timestamp), p.py(prev.Weight)),
			fyne.NewPos(p.px(cur.Timestamp), p.py(cur.Weight)))
	}
}

func (r *scopeRenderer) drawReadout(p plot, statuses []link.Status) {
	if len(statuses) == 0 {
		return
	}
	last := statuses[len(statuses)-1]
	r.text(fmt.Sprintf("%s  %.3f g", last.State, last.Weight), traceColor(last.State), 12,
		fyne.TextAlignLeading, fyne.NewPos(p.x+10, p.y+p.h-20))
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}
