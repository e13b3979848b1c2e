package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reshetovitsme/tg-watch-relay/internal/modules/enrichment/domain"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/metrics"
	"github.com/reshetovitsme/tg-watch-relay/internal/shared/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	sent     []outbound.Text
	edits    []string
	sendErr  error
	editErrs []error
	hang     bool
}

func (f *fakeNotifier) SendText(ctx context.Context, chatID string, msg outbound.Text) (outbound.MessageRef, error) {
	if f.hang {
		<-ctx.Done()
		return outbound.MessageRef{}, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return outbound.MessageRef{}, f.sendErr
	}
	f.sent = append(f.sent, msg)
	return outbound.MessageRef{ChatID: chatID, MessageID: len(f.sent)}, nil
}

func (f *fakeNotifier) EditText(_ context.Context, _ outbound.MessageRef, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if len(f.editErrs) > 0 {
		err, f.editErrs = f.editErrs[0], f.editErrs[1:]
	}
	if err == nil {
		f.edits = append(f.edits, text)
	}
	return err
}

type fakeMarket struct {
	quote *domain.Quote
	err   error
	delay time.Duration
}

func (f *fakeMarket) Lookup(ctx context.Context, _ string) (*domain.Quote, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.quote, f.err
}

func newTestPipeline(n Notifier, market *fakeMarket) (*Pipeline, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return New(n, market, 50*time.Millisecond, m), m
}

func TestRunFullReport(t *testing.T) {
	notifier := &fakeNotifier{}
	p, m := newTestPipeline(notifier, &fakeMarket{quote: &domain.Quote{
		Token:    domain.TokenInfo{Address: testAddress, Name: "dogwifhat", Symbol: "WIF"},
		PriceUSD: "1.75",
	}})
	defer p.Stop()

	require.NoError(t, p.Run(context.Background(), testAddress, "-100999"))

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Body, testAddress)
	assert.True(t, notifier.sent[0].DisablePreview)
	require.Len(t, notifier.edits, 1)
	assert.Contains(t, notifier.edits[0], "dogwifhat")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enrichments.WithLabelValues(outcomeReport)))
}

func TestRunLiteReportForKnownTokenWithoutMarket(t *testing.T) {
	notifier := &fakeNotifier{}
	p, _ := newTestPipeline(notifier, &fakeMarket{err: &domain.AbsenceError{
		Reason: domain.AbsenceReasonInsufficientLiquidity,
		Token:  &domain.TokenInfo{Address: testAddress, Name: "Tiny", Symbol: "TNY"},
	}})
	defer p.Stop()

	require.NoError(t, p.Run(context.Background(), testAddress, "-100999"))

	require.Len(t, notifier.edits, 1)
	assert.Contains(t, notifier.edits[0], "No Market Data Found")
	assert.Contains(t, notifier.edits[0], "TNY")
}

func TestRunFailureNotice(t *testing.T) {
	tests := []struct {
		name   string
		market *fakeMarket
		want   string
	}{
		{
			name:   "unknown token",
			market: &fakeMarket{err: &domain.AbsenceError{Reason: domain.AbsenceReasonNotFound}},
			want:   "Token not found",
		},
		{
			name:   "illiquid token without metadata",
			market: &fakeMarket{err: &domain.AbsenceError{Reason: domain.AbsenceReasonInsufficientLiquidity}},
			want:   "Token has pairs, but none have sufficient liquidity",
		},
		{
			name:   "upstream error",
			market: &fakeMarket{err: stderrors.New("boom")},
			want:   defaultFailure,
		},
		{
			name:   "lookup timeout",
			market: &fakeMarket{delay: time.Second, quote: &domain.Quote{}},
			want:   defaultFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			p, _ := newTestPipeline(notifier, tt.market)
			defer p.Stop()

			require.NoError(t, p.Run(context.Background(), testAddress, "-100999"))
			require.Len(t, notifier.edits, 1)
			assert.Contains(t, notifier.edits[0], "Analysis Failed")
			assert.Contains(t, notifier.edits[0], tt.want)
		})
	}
}

func TestSentence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "token not found", want: "Token not found"},
		{in: "token has pairs, but none have sufficient liquidity", want: "Token has pairs, but none have sufficient liquidity"},
		{in: "ёлка", want: "Ёлка"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sentence(tt.in))
	}
}

func TestRunFallsBackWhenReportEditFails(t *testing.T) {
	notifier := &fakeNotifier{editErrs: []error{stderrors.New("message is too long")}}
	p, m := newTestPipeline(notifier, &fakeMarket{quote: &domain.Quote{PriceUSD: "1"}})
	defer p.Stop()

	require.NoError(t, p.Run(context.Background(), testAddress, "-100999"))
	require.Len(t, notifier.edits, 1)
	assert.Contains(t, notifier.edits[0], "Analysis Failed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enrichments.WithLabelValues(outcomeFailure)))
}

func TestRunErrors(t *testing.T) {
	t.Run("placeholder send fails", func(t *testing.T) {
		p, _ := newTestPipeline(&fakeNotifier{sendErr: stderrors.New("chat not found")}, &fakeMarket{})
		defer p.Stop()
		assert.Error(t, p.Run(context.Background(), testAddress, "-100999"))
	})

	t.Run("both edits fail", func(t *testing.T) {
		notifier := &fakeNotifier{editErrs: []error{stderrors.New("a"), stderrors.New("b")}}
		p, _ := newTestPipeline(notifier, &fakeMarket{quote: &domain.Quote{}})
		defer p.Stop()
		assert.Error(t, p.Run(context.Background(), testAddress, "-100999"))
	})
}

func TestEnqueueRunsInBackground(t *testing.T) {
	notifier := &fakeNotifier{}
	p, _ := newTestPipeline(notifier, &fakeMarket{quote: &domain.Quote{Token: domain.TokenInfo{Name: "A"}}})

	p.Enqueue(testAddress, "-1001")
	p.Enqueue(testAddress, "-1002")
	p.Stop()

	assert.Len(t, notifier.sent, 2)
	assert.Len(t, notifier.edits, 2)

	p.Enqueue(testAddress, "-1003")
	assert.Len(t, notifier.sent, 2)
}

func TestStopReturnsWhenRunHangs(t *testing.T) {
	p, m := newTestPipeline(&fakeNotifier{hang: true}, &fakeMarket{})

	p.Enqueue(testAddress, "-1001")

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a hung run")
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Enrichments.WithLabelValues(outcomeError)))
}
