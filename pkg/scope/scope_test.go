package scope

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/itohio/goscale/pkg/config"
	"github.com/itohio/goscale/pkg/link"
	"github.com/itohio/goscale/pkg/scale"
	"github.com/itohio/goscale/pkg/trend"
)

func TestUpdateData_AutoScale(t *testing.T) {
	test.NewTempApp(t)
	cfg := config.Default()
	cfg.Plot.MaxPoints = 2
	s := New(cfg)

	t0 := time.Unix(100, 0)
	s.UpdateData([]link.Status{
		{Timestamp: t0, State: scale.StateMeasuring, Weight: 10},
		{Timestamp: t0.Add(time.Second), State: scale.StateMeasuring, Weight: 50},
		{Timestamp: t0.Add(2 * time.Second), State: scale.StateAlarming, Weight: 150},
	}, []trend.Alarm{{Start: t0.Add(2 * time.Second), End: t0.Add(2 * time.Second), Peak: 150}})

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.statuses, 2, "downsampled to max points")
	assert.Equal(t, t0, s.xMin)
	assert.Equal(t, t0.Add(cfg.Plot.Window), s.xMax, "at least one window wide")
	assert.InDelta(t, -12, s.yMin, 1e-9)
	assert.InDelta(t, 132, s.yMax, 1e-9)
}

func TestRenderer_Draws(t *testing.T) {
	test.NewTempApp(t)
	s := New(config.Default())
	w := test.NewWindow(s)
	defer w.Close()
	w.Resize(s.MinSize().AddWidthHeight(100, 100))

	t0 := time.Unix(100, 0)
	s.UpdateData([]link.Status{
		{Timestamp: t0, State: scale.StateMeasuring, Weight: 10},
		{Timestamp: t0.Add(time.Second), State: scale.StateMeasuring, Weight: 50},
	}, nil)

	r := test.WidgetRenderer(s)
	assert.Greater(t, len(r.Objects()), 10)
}

func TestTraceColor(t *testing.T) {
	assert.NotEqual(t, traceColor(scale.StateMeasuring), traceColor(scale.StateAlarming))
	assert.Equal(t, traceColor(scale.StateIdle), traceColor(scale.State("other")))
}
