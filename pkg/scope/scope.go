// Package scope is a fyne widget plotting scale weight over time against the
// overweight limit.
package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/trend"
)

// ScopeWidget draws the weight trend, the limit line and alarm spans.
type ScopeWidget struct {
	widget.BaseWidget

	limit     float64
	window    time.Duration
	maxPoints int

	// Data (protected by mu)
	mu       sync.RWMutex
	statuses []link.Status // downsampled for display
	alarms   []trend.Alarm

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		limit:     cfg.Thresholds.WeightLimit,
		window:    cfg.Plot.Window,
		maxPoints: cfg.Plot.MaxPoints,
		statuses:  make([]link.Status, 0, cfg.Plot.MaxPoints),
	}
	s.ExtendBaseWidget(s)
	s.mu.Lock()
	s.updateAutoScale()
	s.mu.Unlock()
	return s
}

// UpdateData replaces the plotted data. Call it on the fyne thread.
func (s *ScopeWidget) UpdateData(statuses []link.Status, alarms []trend.Alarm) {
	s.mu.Lock()
	s.statuses = trend.Downsample(s.statuses, statuses, s.maxPoints)
	s.alarms = alarms
	s.updateAutoScale()
	s.mu.Unlock()

	s.Refresh()
}

// SetLimit moves the limit line. Call it on the fyne thread.
func (s *ScopeWidget) SetLimit(limit float64) {
	s.mu.Lock()
	s.limit = limit
	s.updateAutoScale()
	s.mu.Unlock()

	s.Refresh()
}

// updateAutoScale fits the Y range to the data and the limit line, and the X
// range to at least one window.
func (s *ScopeWidget) updateAutoScale() {
	s.yMin, s.yMax = 0, s.limit
	for _, st := range s.statuses {
		s.yMin = min(s.yMin, st.Weight)
		s.yMax = max(s.yMax, st.Weight)
	}
	span := s.yMax - s.yMin
	if span == 0 {
		span = 1
	}
	s.yMin -= span * 0.1
	s.yMax += span * 0.1

	if len(s.statuses) == 0 {
		s.xMin = time.Now()
		s.xMax = s.xMin.Add(s.window)
		return
	}
	s.xMin = s.statuses[0].Timestamp
	s.xMax = s.statuses[len(s.statuses)-1].Timestamp
	if s.xMax.Sub(s.xMin) < s.window {
		s.xMax = s.xMin.Add(s.window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &scopeRenderer{
		scope:   s,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
