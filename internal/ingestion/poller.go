package ingestion

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Sink receives ingested entries
type Sink interface {
	AddScenarios(items []models.Scenario) []models.Scenario
	AddResources(items []models.TrainingResource) []models.TrainingResource
}

// Poller periodically fetches from every source and appends to the sink
type Poller struct {
	sources  []Source
	sink     Sink
	interval time.Duration
}

// NewPoller creates a new ingestion worker
func NewPoller(sink Sink, interval time.Duration, sources ...Source) *Poller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Poller{
		sources:  sources,
		sink:     sink,
		interval: interval,
	}
}

// Start begins the ingestion worker in a goroutine
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	slog.Info("ingestion worker started", "interval", p.interval, "sources", len(p.sources))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("ingestion worker stopped")
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one cycle. Sources are fetched concurrently; a failing source
// is logged and does not block the others.
func (p *Poller) Poll(ctx context.Context) (scenarios, resources int) {
	batches := make([]Batch, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			batch, err := src.Fetch(gctx)
			if err != nil {
				slog.Error("ingestion fetch failed", "source", src.Name(), "error", err)
				return nil
			}
			batches[i] = batch
			return nil
		})
	}
	_ = g.Wait()

	for i, batch := range batches {
		if batch.Empty() {
			continue
		}
		added := p.sink.AddScenarios(batch.Scenarios)
		addedResources := p.sink.AddResources(batch.Resources)
		scenarios += len(added)
		resources += len(addedResources)

		slog.Info("ingested batch",
			"source", p.sources[i].Name(),
			"scenarios", len(added),
			"resources", len(addedResources),
		)
	}
	return scenarios, resources
}
