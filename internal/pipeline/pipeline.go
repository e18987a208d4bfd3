// Package pipeline turns scraped candidates into canonical records.
//
// Processing is strictly sequential: a candidate's dates, address and record
// are fully resolved before the next candidate starts. A rejected candidate
// is logged, counted and skipped; it never stops the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/fresque-scraper/internal/event"
	"github.com/pfrederiksen/fresque-scraper/internal/location"
	"github.com/pfrederiksen/fresque-scraper/internal/logger"
	"github.com/pfrederiksen/fresque-scraper/internal/metrics"
	"github.com/pfrederiksen/fresque-scraper/internal/record"
	"github.com/pfrederiksen/fresque-scraper/internal/reject"
)

// DefaultMaxDuration is the longest accepted session; longer ones are
// data-entry errors on the source site.
const DefaultMaxDuration = 48 * time.Hour

// AddressResolver resolves free-text locations
type AddressResolver interface {
	Resolve(ctx context.Context, fullLocation string) (*location.Address, error)
}

// Processor processes candidates one at a time
type Processor struct {
	resolver    AddressResolver
	builder     *record.Builder
	maxDuration time.Duration
	metrics     *metrics.Metrics
	now         func() time.Time
}

// New creates a processor. maxDuration <= 0 selects DefaultMaxDuration and
// m may be nil.
func New(resolver AddressResolver, builder *record.Builder, maxDuration time.Duration, m *metrics.Metrics) *Processor {
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Processor{
		resolver:    resolver,
		builder:     builder,
		maxDuration: maxDuration,
		metrics:     m,
		now:         time.Now,
	}
}

// Process builds the record for c, or returns the *reject.Error explaining
// why c was dropped. Errors that are not rejections indicate a bug.
func (p *Processor) Process(ctx context.Context, c event.Candidate) (*record.Record, error) {
	rec, err := p.process(ctx, c)
	if err != nil {
		if kind, ok := reject.KindOf(err); ok {
			p.metrics.Rejected(kind.String())
			logger.Warn("Rejecting record", logger.Fields{
				"link": c.Link,
				"kind": kind.String(),
				"why":  err.Error(),
			})
		}
		return nil, err
	}

	p.metrics.RecordEmitted(record.WorkshopName(rec.WorkshopType))
	logger.Info("Successfully scraped event", logger.Fields{
		"link": c.Link,
		"id":   rec.ID,
	})
	return rec, nil
}

func (p *Processor) process(ctx context.Context, c event.Candidate) (*record.Record, error) {
	now := p.now().In(p.builder.Location())

	span, err := event.ParseDates(c.Family, c.DateText, now)
	if err != nil {
		return nil, err
	}

	if err := p.checkDuration(span, c.DateText); err != nil {
		return nil, err
	}

	var addr *location.Address
	if !c.Online {
		addr, err = p.resolver.Resolve(ctx, c.LocationText)
		if err != nil {
			return nil, err
		}
	}

	rec, err := p.builder.Build(c, span, addr)
	if err != nil {
		return nil, fmt.Errorf("building record %s: %w", c.RecordID(), err)
	}
	return rec, nil
}

// checkDuration enforces the duration cutoff; exactly maxDuration passes
func (p *Processor) checkDuration(span event.Span, dateText string) error {
	if d := span.Duration(); d > p.maxDuration {
		return reject.New(reject.EventTooLong, dateText).
			WithDetail(fmt.Sprintf("lasts %s, limit %s", d, p.maxDuration))
	}
	return nil
}

// Reject records a rejection decided upstream of Process, by a site
// extractor, so that every skipped candidate is counted the same way.
func (p *Processor) Reject(link string, err error) {
	kind, ok := reject.KindOf(err)
	if !ok {
		return
	}
	p.metrics.Rejected(kind.String())
	logger.Warn("Rejecting record", logger.Fields{
		"link": link,
		"kind": kind.String(),
		"why":  err.Error(),
	})
}
