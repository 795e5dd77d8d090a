// Package dashboard orchestrates fetch, transform and render for one list
// dashboard instance.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/spdash/internal/aggregate"
	"github.com/tinytelemetry/spdash/internal/model"
)

var (
	ErrNotIdle = errors.New("dashboard: load already started")
	ErrClosed  = errors.New("dashboard: closed")
	ErrStale   = errors.New("dashboard: load superseded")
)

// MsgUnknown is shown when a failure carries no description.
const MsgUnknown = "unknown error"

// Snapshot is a consistent copy of the controller state for renderers.
type Snapshot struct {
	State     model.ViewState
	Schema    model.ListSchema
	Fields    []model.FieldDescriptor
	Rows      []model.Row
	LoadedAt  time.Time
	AttemptID string
}

// Aggregate derives the chart inputs of the snapshot rows.
func (s Snapshot) Aggregate() aggregate.Result {
	return aggregate.Aggregate(s.Rows, s.Schema)
}

// Option configures a Controller.
type Option func(*Controller)

// WithObserver registers fn to receive a snapshot after every successful load.
func WithObserver(fn func(Snapshot)) Option {
	return func(c *Controller) { c.observers = append(c.observers, fn) }
}

// Controller owns the view state of one dashboard instance.
// Idle -> Loading -> Loaded | Failed; Failed is left only via Remount or Close.
type Controller struct {
	mu sync.Mutex
	// notifyMu serializes observer delivery against Remount and Reconfigure.
	notifyMu  sync.Mutex
	reader    model.ListReader
	charts    ChartFactory
	schema    model.ListSchema
	observers []func(Snapshot)

	state    model.ViewState
	fields   []model.FieldDescriptor
	rows     []model.Row
	loadedAt time.Time
	bindings map[Surface]Chart

	attempt string
	cancel  context.CancelFunc
	closed  bool
}

// New returns an Idle controller on the Table tab. charts may be nil for
// headless use.
func New(reader model.ListReader, charts ChartFactory, schema model.ListSchema, opts ...Option) *Controller {
	if schema.MaxRows <= 0 || schema.MaxRows > model.MaxRows {
		schema.MaxRows = model.MaxRows
	}
	c := &Controller{
		reader:   reader,
		charts:   charts,
		schema:   schema,
		bindings: make(map[Surface]Chart),
		state:    model.ViewState{Phase: model.PhaseIdle, Tab: model.TabTable},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load runs the one fetch of this mount: field metadata and items are looked
// up concurrently and both must succeed. Results of an attempt superseded by
// Remount or Close are dropped.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state.Phase != model.PhaseIdle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	attempt := uuid.NewString()
	loadCtx, cancel := context.WithCancel(ctx)
	c.attempt = attempt
	c.cancel = cancel
	c.state.Phase = model.PhaseLoading
	c.state.Loading = true
	c.state.Error = ""
	reader, schema := c.reader, c.schema
	c.mu.Unlock()
	defer cancel()

	fields, rows, err := fetchList(loadCtx, reader, schema)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.attempt != attempt {
		c.mu.Unlock()
		return ErrStale
	}
	c.cancel = nil
	c.state.Loading = false

	if err != nil {
		c.state.Phase = model.PhaseFailed
		c.state.Error = UserMessage(err)
		c.mu.Unlock()
		log.Printf("dashboard: load %s failed: %v", attempt, err)
		return err
	}

	c.fields = fields
	c.rows = rows
	c.loadedAt = time.Now()
	c.state.Phase = model.PhaseLoaded
	c.state.Error = ""

	var bindErr error
	if c.state.Tab == model.TabCharts {
		bindErr = c.rebuildChartsLocked()
	}
	snap := c.snapshotLocked()
	observers := c.observers
	c.mu.Unlock()

	log.Printf("dashboard: load %s: %d fields, %d rows", attempt, len(fields), len(rows))

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	for _, fn := range observers {
		if err := c.checkAttempt(attempt); err != nil {
			log.Printf("dashboard: load %s superseded before notify", attempt)
			return err
		}
		fn(snap)
	}
	return bindErr
}

// checkAttempt reports whether attempt still owns the controller state.
func (c *Controller) checkAttempt(attempt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.attempt != attempt {
		return ErrStale
	}
	return nil
}

// waitNotify blocks until no observer of a superseded attempt is running.
func (c *Controller) waitNotify() {
	c.notifyMu.Lock()
	c.notifyMu.Unlock()
}

// fetchList joins the two lookups; the first failure cancels the other.
func fetchList(ctx context.Context, reader model.ListReader, schema model.ListSchema) ([]model.FieldDescriptor, []model.Row, error) {
	if reader == nil {
		return nil, nil, fmt.Errorf("dashboard: no list reader configured")
	}

	var (
		fields []model.FieldDescriptor
		rows   []model.Row
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := reader.Fields(gctx, schema.ListTitle, schema.Fields)
		if err != nil {
			return err
		}
		fields = f
		return nil
	})
	g.Go(func() error {
		r, err := reader.Items(gctx, schema.ListTitle, schema.Fields, schema.MaxRows)
		if err != nil {
			return err
		}
		if len(r) > schema.MaxRows {
			r = r[:schema.MaxRows]
		}
		rows = r
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return fields, rows, nil
}

// UserMessage maps a load failure to the text shown in the error banner.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, model.ErrListFetch) {
		return model.ErrListFetch.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnknown
}

// SelectTab switches tabs. Entering Charts on a loaded, non-empty row set
// binds fresh charts; leaving it releases them. Re-selecting the current tab
// is a no-op.
func (c *Controller) SelectTab(tab model.Tab) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.state.Tab == tab {
		return nil
	}
	c.state.Tab = tab
	if tab == model.TabCharts {
		return c.rebuildChartsLocked()
	}
	c.releaseChartsLocked()
	return nil
}

// Remount models a context change: any in-flight load is abandoned, chart
// bindings are released and the controller returns to Idle with no data.
// A nil reader keeps the current one. On return no observer is still
// receiving data of the abandoned load.
func (c *Controller) Remount(reader model.ListReader) error {
	c.mu.Lock()
	err := c.remountLocked(reader, nil)
	c.mu.Unlock()
	c.waitNotify()
	return err
}

// Reconfigure is Remount with a new list schema.
func (c *Controller) Reconfigure(reader model.ListReader, schema model.ListSchema) error {
	c.mu.Lock()
	err := c.remountLocked(reader, &schema)
	c.mu.Unlock()
	c.waitNotify()
	return err
}

func (c *Controller) remountLocked(reader model.ListReader, schema *model.ListSchema) error {
	if c.closed {
		return ErrClosed
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.attempt = ""
	c.releaseChartsLocked()
	if reader != nil {
		c.reader = reader
	}
	if schema != nil {
		c.schema = *schema
		if c.schema.MaxRows <= 0 || c.schema.MaxRows > model.MaxRows {
			c.schema.MaxRows = model.MaxRows
		}
	}
	c.fields = nil
	c.rows = nil
	c.loadedAt = time.Time{}
	c.state = model.ViewState{Phase: model.PhaseIdle, Tab: c.state.Tab}
	return nil
}

// Close tears the instance down. In-flight loads are cancelled and their
// results discarded; later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.releaseChartsLocked()
}

// State returns the current view state.
func (c *Controller) State() model.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current state and data.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:     c.state,
		Schema:    c.schema,
		Fields:    append([]model.FieldDescriptor(nil), c.fields...),
		Rows:      append([]model.Row(nil), c.rows...),
		LoadedAt:  c.loadedAt,
		AttemptID: c.attempt,
	}
}

// rebuildChartsLocked tears down existing bindings and binds new charts
// derived from the current rows.
func (c *Controller) rebuildChartsLocked() error {
	c.releaseChartsLocked()
	if c.charts == nil || c.state.Phase != model.PhaseLoaded || len(c.rows) == 0 {
		return nil
	}

	res := aggregate.Aggregate(c.rows, c.schema)
	for _, spec := range ChartSpecs(res) {
		chart, err := c.charts.Bind(spec)
		if err != nil {
			c.releaseChartsLocked()
			return fmt.Errorf("dashboard: bind %s chart: %w", spec.Surface, err)
		}
		c.bindings[spec.Surface] = chart
	}
	return nil
}

func (c *Controller) releaseChartsLocked() {
	for surface, chart := range c.bindings {
		chart.Destroy()
		delete(c.bindings, surface)
	}
}
