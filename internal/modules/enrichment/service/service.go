package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/repository"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/outbound"
	"github.com/samber/oops"
)

// Notifier is the part of the transport the pipeline talks to.
type Notifier interface {
	SendText(ctx context.Context, chatID string, msg outbound.Text) (outbound.MessageRef, error)
	EditText(ctx context.Context, ref outbound.MessageRef, text string) error
}

const (
	outcomeReport  = "report"
	outcomeLite    = "lite"
	outcomeFailure = "failure"
	outcomeError   = "error"
)

// runTimeoutFactor bounds a whole run (placeholder, lookup and edits) to a
// multiple of the lookup timeout.
const runTimeoutFactor = 4

// Pipeline posts a placeholder in a destination, looks up market data for an
// identifier and edits the placeholder into a report. Runs are detached from
// the routing of the event that triggered them.
type Pipeline struct {
	notifier Notifier
	market   repository.MarketData
	timeout  time.Duration
	metrics  *metrics.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	errs   chan error
	done   chan struct{}
}

// New creates a pipeline and starts its error reporter.
func New(notifier Notifier, market repository.MarketData, timeout time.Duration, m *metrics.Metrics) *Pipeline {
	p := &Pipeline{
		notifier: notifier,
		market:   market,
		timeout:  timeout,
		metrics:  m,
		errs:     make(chan error, 16),
		done:     make(chan struct{}),
	}
	go p.report()
	return p
}

// Enqueue starts an enrichment run in the background. It never blocks on the
// run and never surfaces its failure to the caller.
func (p *Pipeline) Enqueue(identifier, destinationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		slog.Warn("Enrichment dropped, pipeline stopped", "identifier", identifier, "destination_id", destinationID)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), runTimeoutFactor*p.timeout)
		defer cancel()
		if err := p.Run(ctx, identifier, destinationID); err != nil {
			p.errs <- err
		}
	}()
}

// Run performs one enrichment synchronously.
func (p *Pipeline) Run(ctx context.Context, identifier, destinationID string) error {
	ref, err := p.notifier.SendText(ctx, destinationID, outbound.Text{
		Body:           formatPlaceholder(identifier),
		DisablePreview: true,
	})
	if err != nil {
		p.metrics.Enrichments.WithLabelValues(outcomeError).Inc()
		return oops.
			With("identifier", identifier, "destination_id", destinationID).
			Wrapf(err, "failed to send enrichment placeholder")
	}

	pending := domain.PendingEnrichment{Identifier: identifier, DestinationID: destinationID, Placeholder: ref}
	text, outcome := p.build(ctx, pending.Identifier)

	if err := p.notifier.EditText(ctx, pending.Placeholder, text); err != nil {
		slog.Warn("Failed to edit enrichment report, sending failure notice",
			"identifier", identifier,
			"destination_id", destinationID,
			"error", err,
		)
		if err := p.notifier.EditText(ctx, pending.Placeholder, FormatFailure("")); err != nil {
			p.metrics.Enrichments.WithLabelValues(outcomeError).Inc()
			return oops.
				With("identifier", identifier, "destination_id", destinationID, "message_id", ref.MessageID).
				Wrapf(err, "failed to edit enrichment placeholder")
		}
		outcome = outcomeFailure
	}

	p.metrics.Enrichments.WithLabelValues(outcome).Inc()
	return nil
}

// Stop refuses new runs and waits for in-flight ones to finish.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
	close(p.errs)
	<-p.done
}

func (p *Pipeline) build(ctx context.Context, identifier string) (string, string) {
	lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	quote, err := p.market.Lookup(lookupCtx, identifier)
	if err == nil {
		return FormatReport(quote, identifier), outcomeReport
	}

	var absence *domain.AbsenceError
	if errors.As(err, &absence) {
		if absence.Token != nil {
			return FormatLite(absence, identifier), outcomeLite
		}
		return FormatFailure(sentence(absence.Error())), outcomeFailure
	}

	slog.Warn("Market data lookup failed", "identifier", identifier, "error", err)
	return FormatFailure(""), outcomeFailure
}

// sentence upper-cases the first rune only.
func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func (p *Pipeline) report() {
	defer close(p.done)
	for err := range p.errs {
		slog.Error("Enrichment failed", "error", err)
	}
}
