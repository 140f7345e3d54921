package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vestnikbot/vestnik/internal/cache"
	"github.com/vestnikbot/vestnik/internal/ratelimit"
)

type fakeStrategy struct {
	translateCalls int
	summarizeCalls int
	fail           bool
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) Translate(_ context.Context, text string) (string, error) {
	f.translateCalls++
	if f.fail {
		return "", errors.New("provider down")
	}
	return "ru(" + text + ")", nil
}

func (f *fakeStrategy) Summarize(_ context.Context, _ string) (string, error) {
	f.summarizeCalls++
	if f.fail {
		return "", errors.New("provider down")
	}
	return "сводка", nil
}

func newTestService(strategy Strategy, maxTotal int) *Service {
	return NewService(strategy, cache.New(time.Hour), ratelimit.New(nil, maxTotal))
}

func TestEnrichHappyPath(t *testing.T) {
	s := newTestService(&fakeStrategy{}, 0)

	title, desc := s.Enrich(context.Background(), "Title", "Body text.")

	assert.Equal(t, "ru(Title)", title)
	assert.Equal(t, "сводка", desc)
}

func TestEnrichDegradesToSentinels(t *testing.T) {
	strategy := &fakeStrategy{fail: true}
	s := newTestService(strategy, 0)

	title, desc := s.Enrich(context.Background(), "Title", "Body text.")

	assert.Equal(t, "Title", title)
	assert.Equal(t, SummaryUnavailable, desc)
}

func TestEnrichFailuresAreNotCached(t *testing.T) {
	strategy := &fakeStrategy{fail: true}
	s := newTestService(strategy, 0)

	s.Enrich(context.Background(), "Title", "Body text.")
	s.Enrich(context.Background(), "Title", "Body text.")

	// A degraded result must not poison the cache: both calls hit the
	// strategy so a recovered provider gets a second chance
	assert.Equal(t, 2, strategy.translateCalls)
	assert.Equal(t, 2, strategy.summarizeCalls)
}

func TestEnrichCachesSuccess(t *testing.T) {
	strategy := &fakeStrategy{}
	s := newTestService(strategy, 0)

	t1, d1 := s.Enrich(context.Background(), "Title", "Body text.")
	t2, d2 := s.Enrich(context.Background(), "Title", "Body text.")

	assert.Equal(t, t1, t2)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, strategy.translateCalls)
	assert.Equal(t, 1, strategy.summarizeCalls)
}

func TestEnrichEmptyBody(t *testing.T) {
	strategy := &fakeStrategy{}
	s := newTestService(strategy, 0)

	_, desc := s.Enrich(context.Background(), "Title", "   ")

	assert.Equal(t, SummaryUnavailable, desc)
	assert.Zero(t, strategy.summarizeCalls)
}

func TestEnrichRespectsRequestBudget(t *testing.T) {
	strategy := &fakeStrategy{}
	s := newTestService(strategy, 1)

	title, desc := s.Enrich(context.Background(), "Title", "Body text.")

	// The single budgeted request goes to the title; the description
	// degrades to its sentinel
	assert.Equal(t, "ru(Title)", title)
	assert.Equal(t, SummaryUnavailable, desc)
	assert.Equal(t, 1, strategy.translateCalls)
	assert.Zero(t, strategy.summarizeCalls)
}

func TestLangName(t *testing.T) {
	assert.Equal(t, "Russian", langName("ru"))
	assert.Equal(t, "English", langName("en"))
	assert.Equal(t, "xx", langName("xx"))
}
