package session

import (
	"context"
	"fmt"
	"sync"

	"launchdash/domain/launch"
	"launchdash/internal/errors"
	"launchdash/internal/query"

	"golang.org/x/sync/errgroup"
)

// Channel names a state-change stream; each dashboard control owns one
type Channel string

const (
	ChannelSite    Channel = "site"
	ChannelPayload Channel = "payload"
)

// View names a derived view
type View string

const (
	ViewPie     View = "pie"
	ViewScatter View = "scatter"
)

// Dispatcher maps state-change channels to the views subscribed to them and
// recomputes those views when a channel fires.
type Dispatcher struct {
	engine *query.Engine

	mu            sync.RWMutex
	subscriptions map[Channel][]View
}

// NewDispatcher subscribes both views to both channels, so every change
// recomputes both charts under one generation.
func NewDispatcher(engine *query.Engine) *Dispatcher {
	d := &Dispatcher{
		engine:        engine,
		subscriptions: make(map[Channel][]View),
	}
	for _, ch := range []Channel{ChannelSite, ChannelPayload} {
		d.Subscribe(ch, ViewPie)
		d.Subscribe(ch, ViewScatter)
	}
	return d
}

// Subscribe adds view to the handlers run when ch fires
func (d *Dispatcher) Subscribe(ch Channel, view View) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range d.subscriptions[ch] {
		if v == view {
			return
		}
	}
	d.subscriptions[ch] = append(d.subscriptions[ch], view)
}

// Subscribers returns the views subscribed to ch
func (d *Dispatcher) Subscribers(ch Channel) []View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]View(nil), d.subscriptions[ch]...)
}

// Dispatch recomputes every view subscribed to ch for sel. Views not
// subscribed to ch are carried over from prev.
func (d *Dispatcher) Dispatch(ctx context.Context, ch Channel, sel launch.SelectionState, prev launch.Views) (launch.Views, error) {
	views := launch.Views{Selection: sel, Pie: prev.Pie, Scatter: prev.Scatter}

	g, ctx := errgroup.WithContext(ctx)
	for _, view := range d.Subscribers(ch) {
		switch view {
		case ViewPie:
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				views.Pie = query.ComputeSuccessAggregation(d.engine.Records(), sel.SelectedSite)
				return nil
			})
		case ViewScatter:
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				views.Scatter = query.ComputeScatterSelection(d.engine.Records(), sel.SelectedSite, sel.PayloadRange)
				return nil
			})
		default:
			return launch.Views{}, errors.InternalError(fmt.Sprintf("unknown view %q subscribed to %s", view, ch))
		}
	}
	if err := g.Wait(); err != nil {
		return launch.Views{}, err
	}
	return views, nil
}
