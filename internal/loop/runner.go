package loop

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Page is the host document the runner reconciles.
type Page interface {
	Document() *html.Node
	// Reload picks up a host re-render, reporting whether the document was replaced.
	Reload() (bool, error)
	// Flush publishes the current document.
	Flush() error
}

// Runner owns a page and a session and serialises ticks and interactions
// on a single goroutine, so passes never overlap.
type Runner struct {
	Page     Page
	Session  *Session
	Interval time.Duration
}

// Run reconciles immediately, then on every tick and after every
// interaction, until ctx is done.
func (r *Runner) Run(ctx context.Context, interactions <-chan Interaction) error {
	log.Info().Dur("interval", r.Interval).Msg("Starting reconciliation loop")

	r.tick()

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping reconciliation loop")
			return nil
		case <-ticker.C:
			r.tick()
		case ia, ok := <-interactions:
			if !ok {
				interactions = nil
				continue
			}
			r.interact(ctx, ia)
		}
	}
}

func (r *Runner) tick() {
	reloaded, err := r.Page.Reload()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to reload host page; keeping current document")
	}
	if reloaded {
		log.Debug().Msg("Host page re-rendered")
	}

	res := r.Session.Pass(r.Page.Document())
	if reloaded || res.Changed() {
		r.flush()
	}
}

func (r *Runner) interact(ctx context.Context, ia Interaction) {
	doc := r.Page.Document()
	target := ia.Target(doc)
	if target == nil {
		log.Warn().Interface("interaction", ia).Msg("Nothing to click for interaction")
		return
	}
	if _, handled := r.Session.Click(ctx, doc, target); handled {
		r.flush()
	}
}

func (r *Runner) flush() {
	if err := r.Page.Flush(); err != nil {
		log.Error().Err(err).Msg("Failed to write augmented page")
	}
}
