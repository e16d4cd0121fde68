package dial

import "time"

// LineEdge is a debounced edge tagged with the line it occurred on.
type LineEdge struct {
	Line Line
	Edge Edge
}

// Conditioner runs one Debouncer per input line and remembers the most
// recent raw level seen on each. Edge-triggered hardware only reports level
// changes, so a change that lands inside the bounce window would otherwise
// be lost; Resample re-submits the last raw levels so the line settles once
// the window has elapsed.
type Conditioner struct {
	pulse   *Debouncer
	shunt   *Debouncer
	lastRaw [2]Level
}

// NewConditioner creates a conditioner with the given per-line windows.
func NewConditioner(pulseWindow, shuntWindow time.Duration) *Conditioner {
	return &Conditioner{
		pulse:   NewDebouncer(pulseWindow),
		shunt:   NewDebouncer(shuntWindow),
		lastRaw: [2]Level{High, High},
	}
}

// Seed sets the stable and raw levels of both lines without emitting edges.
// Called at startup with the hardware's initial readout.
func (c *Conditioner) Seed(pulse, shunt Level) {
	c.pulse.Seed(pulse)
	c.shunt.Seed(shunt)
	c.lastRaw[LinePulse] = pulse
	c.lastRaw[LineShunt] = shunt
}

// Submit feeds one raw sample and returns the committed edge, if any.
func (c *Conditioner) Submit(s Sample) (LineEdge, bool) {
	c.lastRaw[s.Line] = s.Level
	edge, ok := c.debouncer(s.Line).Submit(s.Level, s.Time)
	if !ok {
		return LineEdge{}, false
	}
	return LineEdge{Line: s.Line, Edge: edge}, true
}

// Resample re-submits the last raw level of each line at time t and returns
// any edges that commit now that their bounce windows have elapsed.
func (c *Conditioner) Resample(t time.Time) []LineEdge {
	var edges []LineEdge
	for _, line := range []Line{LinePulse, LineShunt} {
		edge, ok := c.debouncer(line).Submit(c.lastRaw[line], t)
		if ok {
			edges = append(edges, LineEdge{Line: line, Edge: edge})
		}
	}
	return edges
}

// Levels returns the current debounced levels of both lines.
func (c *Conditioner) Levels() (pulse, shunt Level) {
	return c.pulse.Stable(), c.shunt.Stable()
}

func (c *Conditioner) debouncer(line Line) *Debouncer {
	if line == LineShunt {
		return c.shunt
	}
	return c.pulse
}
