// Package viewer holds interactive chart sessions: the chart type and year
// range a user has selected, and the chart last rendered for them.
package viewer

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/climate-viewer/internal/climate"
	"github.com/i474232898/climate-viewer/internal/coordinator"
	"github.com/i474232898/climate-viewer/internal/pkg/logger"
	"github.com/i474232898/climate-viewer/internal/render"
)

var (
	// ErrUnknownBound is returned for a bound name other than "from" or "to".
	ErrUnknownBound = errors.New("unknown query bound")
	// ErrYearOutOfRange is returned for years outside the period borders.
	ErrYearOutOfRange = errors.New("year outside available period")
)

// State is the user-controlled part of a session.
type State struct {
	ChartType climate.Table
	Query     climate.Query
}

// Rendered describes the chart currently on the session canvas.
type Rendered struct {
	Table  climate.Table `json:"table"`
	Query  climate.Query `json:"query"`
	Points int           `json:"points"`
	At     time.Time     `json:"at"`
}

// Info is a point-in-time view of a session.
type Info struct {
	ID        uuid.UUID     `json:"id"`
	ChartType climate.Table `json:"chartType"`
	From      int           `json:"from"`
	To        int           `json:"to"`
	Pending   bool          `json:"pending"`
	Rendered  *Rendered     `json:"rendered,omitempty"`
	LastError string        `json:"lastError,omitempty"`
}

// Session is one viewer. UI events mutate State and issue a request; the
// coordinator delivers the outcome which is rendered onto the canvas.
type Session struct {
	ID uuid.UUID

	borders climate.Query
	charts  render.Config
	canvas  *render.Canvas
	coord   *coordinator.Coordinator
	logger  logger.Logger

	mu        sync.Mutex
	state     State
	prevQuery climate.Query
	lastSeen  time.Time

	// guarded by rmu; never held while calling the coordinator
	rmu      sync.Mutex
	rendered *Rendered
	lastErr  error
}

// NewSession creates a session showing the full period of the default
// chart type and issues its first request.
func NewSession(resolver coordinator.Resolver, charts render.Config, borders climate.Query, log logger.Logger) *Session {
	id := uuid.New()
	s := &Session{
		ID:       id,
		borders:  borders,
		charts:   charts,
		canvas:   render.NewCanvas(charts.Defaults.Width, charts.Defaults.Height),
		logger:   log.WithField("session", id.String()),
		state:    State{ChartType: climate.TableTemperature, Query: borders},
		lastSeen: time.Now(),
	}
	s.coord = coordinator.New(resolver, s.deliver, s.logger)

	s.mu.Lock()
	s.show()
	s.mu.Unlock()
	return s
}

// SelectChart switches the chart type. Selecting the type already shown
// with an unchanged query does nothing and returns false.
func (s *Session) SelectChart(t climate.Table) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	if t == s.state.ChartType && s.prevQuery.Equal(s.state.Query.Normalize(s.borders)) {
		return false
	}
	s.state.ChartType = t
	return s.show()
}

// SetBound sets the "from" or "to" year. Moving one bound past the other
// drags the other along.
func (s *Session) SetBound(name string, year int) error {
	if year < s.borders.From || year > s.borders.To {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrYearOutOfRange, year, s.borders.From, s.borders.To)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	q := &s.state.Query
	switch name {
	case "from":
		q.From = year
		if q.To != 0 && year > q.To {
			q.To = year
		}
	case "to":
		q.To = year
		if q.From != 0 && year < q.From {
			q.From = year
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBound, name)
	}

	s.show()
	return nil
}

// show issues a request for the current state. Callers hold s.mu.
func (s *Session) show() bool {
	q := s.state.Query.Normalize(s.borders)
	s.prevQuery = q
	return s.coord.Request(s.state.ChartType, q)
}

func (s *Session) deliver(res coordinator.Result) {
	s.rmu.Lock()
	defer s.rmu.Unlock()

	if res.Err != nil {
		// keep the previous chart
		s.lastErr = res.Err
		s.logger.Warnf("chart %s not updated: %v", res.Table, res.Err)
		return
	}

	s.charts.Render(s.canvas, res.Table, res.Series)
	s.lastErr = nil
	s.rendered = &Rendered{
		Table:  res.Table,
		Query:  res.Query,
		Points: len(res.Series),
		At:     time.Now(),
	}
	s.logger.Debugf("rendered %d points of %s", len(res.Series), res.Table)
}

// State returns the current selection.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Info summarizes the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	st := s.state
	s.lastSeen = time.Now()
	s.mu.Unlock()

	info := Info{
		ID:        s.ID,
		ChartType: st.ChartType,
		From:      st.Query.From,
		To:        st.Query.To,
		Pending:   s.coord.Pending(),
	}

	s.rmu.Lock()
	defer s.rmu.Unlock()
	if s.rendered != nil {
		r := *s.rendered
		info.Rendered = &r
	}
	if s.lastErr != nil {
		info.LastError = s.lastErr.Error()
	}
	return info
}

// WriteChart encodes the current canvas.
func (s *Session) WriteChart(w io.Writer, format render.Format) error {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()

	// deliver redraws under rmu; never encode a half-drawn chart
	s.rmu.Lock()
	defer s.rmu.Unlock()
	return s.canvas.Encode(w, format)
}

// Canvas exposes the drawing surface.
func (s *Session) Canvas() *render.Canvas {
	return s.canvas
}

// IdleSince returns the time of the last interaction.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close cancels outstanding work.
func (s *Session) Close() {
	s.coord.Close()
}

// YearOptions lists every selectable year within borders.
func YearOptions(borders climate.Query) []int {
	if borders.To < borders.From {
		return nil
	}
	years := make([]int, 0, borders.To-borders.From+1)
	for y := borders.From; y <= borders.To; y++ {
		years = append(years, y)
	}
	return years
}
