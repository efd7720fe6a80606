package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/portfoliohub/internal/app/models"
	"github.com/yigit/portfoliohub/internal/app/repositories/inmem"
	"github.com/yigit/portfoliohub/internal/pkg/events"
	"github.com/yigit/portfoliohub/internal/pkg/filestorage"
)

// steppingClock advances one second on every call so set-once timestamps are distinguishable
type steppingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newSteppingClock() *steppingClock {
	return &steppingClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type stubRenderer struct {
	mu        sync.Mutex
	err       error
	templates []string
}

func (r *stubRenderer) RenderPortfolio(_ context.Context, sub *models.Submission, templateID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates = append(r.templates, templateID)
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.4 " + sub.StudentID), nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) observe(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Kind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type testEnv struct {
	sections    *inmem.SectionRepository
	submissions *inmem.SubmissionRepository
	store       *filestorage.LocalStorage
	renderer    *stubRenderer
	recorder    *recorder
	clock       *steppingClock

	sectionSvc    SectionService
	submissionSvc SubmissionService
	reviewSvc     ReviewService
	portfolioSvc  PortfolioService
}

func newTestEnv(t *testing.T, opts ReviewOptions) *testEnv {
	t.Helper()

	store, err := filestorage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	env := &testEnv{
		sections:    inmem.NewSectionRepository(),
		submissions: inmem.NewSubmissionRepository(),
		store:       store,
		renderer:    &stubRenderer{},
		recorder:    &recorder{},
		clock:       newSteppingClock(),
	}

	bus := events.NewBus(zerolog.Nop())
	bus.OnTransition(env.recorder.observe)

	lgr := zerolog.Nop()
	env.sectionSvc = NewSectionService(env.sections, store, env.clock.Now, lgr)
	env.submissionSvc = NewSubmissionService(env.sections, env.submissions, bus, true, env.clock.Now, lgr)
	env.reviewSvc = NewReviewService(env.submissions, bus, env.renderer, store, opts, env.clock.Now, lgr)
	env.portfolioSvc = NewPortfolioService(env.sections, env.submissions, store, env.renderer, bus, env.clock.Now, lgr)
	return env
}

func (e *testEnv) saveSections(t *testing.T, studentID string, ids ...models.SectionID) {
	t.Helper()
	for _, id := range ids {
		data, err := json.Marshal(map[string]string{"section": string(id)})
		require.NoError(t, err)
		_, err = e.sectionSvc.SaveSection(context.Background(), SaveSectionInput{
			StudentID: studentID,
			SectionID: string(id),
			Data:      data,
		})
		require.NoError(t, err)
	}
}

func (e *testEnv) submitComplete(t *testing.T, studentID string) *models.Submission {
	t.Helper()
	e.saveSections(t, studentID, models.RequiredSections...)
	sub, err := e.submissionSvc.Submit(context.Background(), studentID)
	require.NoError(t, err)
	return sub
}

var errRenderFailed = errors.New("chrome crashed")
