package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/detection"
	"honeytrap-lab/internal/domain/services/extraction"
	"honeytrap-lab/internal/domain/services/generation"
	"honeytrap-lab/internal/domain/services/reporting"
	"honeytrap-lab/internal/domain/services/strategy"
	"honeytrap-lab/pkg/logger"
)

// callbackSink records reports posted by finalization
type callbackSink struct {
	mu      sync.Mutex
	reports []models.FinalReport
	srv     *httptest.Server
}

func newCallbackSink(t *testing.T) *callbackSink {
	t.Helper()
	sink := &callbackSink{}
	sink.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var report models.FinalReport
		if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		sink.mu.Lock()
		sink.reports = append(sink.reports, report)
		sink.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(sink.srv.Close)
	return sink
}

func (s *callbackSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

func (s *callbackSink) last() models.FinalReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[len(s.reports)-1]
}

func newTestManager(t *testing.T, sink *callbackSink, cfg config.EngagementConfig) *Manager {
	t.Helper()
	log := logger.NewDefault()

	callbackURL := ""
	if sink != nil {
		callbackURL = sink.srv.URL
	}

	return NewManager(Dependencies{
		Config:     cfg,
		Detector:   detection.NewEngine(log),
		Extractor:  extraction.New(log),
		Strategist: strategy.New(log),
		Generator:  generation.New(config.GenerationConfig{Enabled: false}, log),
		Deliverer: reporting.New(config.CallbackConfig{
			URL:        callbackURL,
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		}, log),
		Logger: log,
	})
}

const scamWithIntel = "Your account is blocked! Pay the fee to rahul123@paytm or call 9876543210 immediately to avoid suspension"

func TestProcessMessageStartsSession(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{})

	resp := m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-1",
		Text:      "Hello, I am calling about an offer for you today",
	})

	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, models.StageEarly, resp.Stage)
	assert.NotEmpty(t, resp.Reply)
	require.NotNil(t, resp.Directive)
	assert.Equal(t, "phone_number", resp.Directive.TargetCategory)
	assert.False(t, resp.ShouldFinalize)
	assert.Equal(t, models.SessionActive, resp.State)

	view, ok := m.GetSession("sess-1")
	require.True(t, ok)
	assert.Equal(t, 1, view.TurnCount)

	stats := m.Stats()
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, int64(1), stats.SessionsStarted)
	assert.Equal(t, int64(1), stats.MessagesProcessed)
}

func TestProcessMessageGeneratesSessionID(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{})

	resp := m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		Text: "Hello there my friend",
	})

	assert.NotEmpty(t, resp.SessionID)
	_, ok := m.GetSession(resp.SessionID)
	assert.True(t, ok)
}

func TestMaxTurnsTermination(t *testing.T) {
	sink := newCallbackSink(t)
	m := newTestManager(t, sink, config.EngagementConfig{MaxTurns: 3})

	var resp *models.ProcessMessageResponse
	for i := 0; i < 3; i++ {
		resp = m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
			SessionID: "sess-turns",
			Text:      "Hello sir, how are you doing today then",
		})
	}

	assert.True(t, resp.ShouldFinalize)
	assert.Equal(t, models.SessionFinalizing, resp.State)

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	report := sink.last()
	assert.Equal(t, "sess-turns", report.SessionID)
	assert.Equal(t, 3, report.TotalMessagesExchanged)

	require.Eventually(t, func() bool {
		_, ok := m.GetSession("sess-turns")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.SessionsFinalized)
	assert.Equal(t, int64(1), stats.FinalizedByReason[models.ReasonMaxTurns])
	assert.Equal(t, int64(1), stats.ReportsDelivered)
}

func TestSufficientIntelligenceTermination(t *testing.T) {
	sink := newCallbackSink(t)
	m := newTestManager(t, sink, config.EngagementConfig{MinIntelligenceCategories: 2})

	resp := m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-intel",
		Text:      scamWithIntel,
	})

	assert.True(t, resp.Detection.IsScam)
	assert.GreaterOrEqual(t, resp.Intelligence.CategoryCount(), 2)
	assert.True(t, resp.ShouldFinalize)

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	report := sink.last()
	assert.True(t, report.ScamDetected)
	assert.Contains(t, report.ExtractedIntelligence.UPIIDs, "rahul123@paytm")
	assert.Contains(t, report.ExtractedIntelligence.PhoneNumbers, "+919876543210")
	assert.Contains(t, report.AgentNotes, "Observed tactics")

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.FinalizedByReason[models.ReasonSufficientIntel])
}

func TestIntelligenceAccumulatesAcrossTurns(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{MinIntelligenceCategories: 5})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-acc",
		Text:      "call me on 9876543210 about this offer",
	})
	resp := m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-acc",
		Text:      "and pay the amount to rahul123@paytm today",
	})

	assert.Contains(t, resp.Intelligence.PhoneNumbers, "+919876543210")
	assert.Contains(t, resp.Intelligence.UPIIDs, "rahul123@paytm")
	// The directive moves past already-collected categories
	assert.Equal(t, "bank_account", resp.Directive.TargetCategory)
}

func TestInactivityTimerFinalizes(t *testing.T) {
	sink := newCallbackSink(t)
	m := newTestManager(t, sink, config.EngagementConfig{
		InactivityTimeout: 30 * time.Millisecond,
		SweepInterval:     time.Hour,
	})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-idle",
		Text:      "Hello sir, I will message you again shortly",
	})

	require.Eventually(t, func() bool {
		_, ok := m.GetSession("sess-idle")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return sink.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.FinalizedByReason[models.ReasonInactivity])
}

func TestForceFinalize(t *testing.T) {
	sink := newCallbackSink(t)
	m := newTestManager(t, sink, config.EngagementConfig{})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-force",
		Text:      "Hello sir, good morning to you",
	})

	assert.False(t, m.ForceFinalize("no-such-session"))
	assert.True(t, m.ForceFinalize("sess-force"))

	require.Eventually(t, func() bool {
		_, ok := m.GetSession("sess-force")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.FinalizedByReason[models.ReasonForced])
}

func TestScamDetectionLatches(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{MinIntelligenceCategories: 99})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-latch",
		Text:      "URGENT your account is blocked, verify immediately or face arrest",
	})
	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-latch",
		Text:      "Hello again sir, are you still there please",
	})

	view, ok := m.GetSession("sess-latch")
	require.True(t, ok)
	assert.True(t, view.ScamDetected)
	assert.Positive(t, view.Confidence)
}

func TestListSessions(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{SessionID: "a", Text: "hello there my friend"})
	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{SessionID: "b", Text: "hello there my friend"})

	views := m.ListSessions()
	assert.Len(t, views, 2)
}

func TestSweepFinalizesStaleSessions(t *testing.T) {
	sink := newCallbackSink(t)
	m := newTestManager(t, sink, config.EngagementConfig{
		InactivityTimeout: time.Hour,
		SweepInterval:     20 * time.Millisecond,
	})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-sweep",
		Text:      "Hello sir, checking in with you now",
	})

	// Age the session past the duration limit by hand
	m.mu.RLock()
	sess := m.sessions["sess-sweep"]
	m.mu.RUnlock()
	sess.mu.Lock()
	sess.startTime = time.Now().Add(-31 * time.Minute)
	sess.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	defer m.Stop()

	require.Eventually(t, func() bool {
		_, ok := m.GetSession("sess-sweep")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.FinalizedByReason[models.ReasonMaxDuration])
}

func TestRedFlagsUnionAcrossTurns(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{MinIntelligenceCategories: 99})

	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-flags",
		Text:      "Your account will be blocked today, share OTP now",
	})
	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-flags",
		Text:      "Your account will be blocked today, share OTP now",
	})
	m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
		SessionID: "sess-flags",
		Text:      "also click http://bit.ly/verify999 to confirm your details",
	})

	view, ok := m.GetSession("sess-flags")
	require.True(t, ok)
	assert.Contains(t, view.RedFlags, models.FlagUrgency)
	assert.Contains(t, view.RedFlags, models.FlagSensitiveInfoRequest)
	assert.Contains(t, view.RedFlags, models.FlagLinkDetected)

	counts := make(map[models.RedFlag]int)
	for _, f := range view.RedFlags {
		counts[f]++
	}
	for f, n := range counts {
		assert.Equal(t, 1, n, string(f))
	}
}

func TestConcurrentMessagesSameSession(t *testing.T) {
	m := newTestManager(t, nil, config.EngagementConfig{
		MaxTurns:                  100,
		MinIntelligenceCategories: 99,
	})

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			m.ProcessMessage(context.Background(), models.ProcessMessageRequest{
				SessionID: "sess-conc",
				Text:      "hello sir, are you still there today",
			})
		}()
	}
	wg.Wait()

	view, ok := m.GetSession("sess-conc")
	require.True(t, ok)
	assert.Equal(t, n, view.TurnCount)

	stats := m.Stats()
	assert.Equal(t, int64(n), stats.MessagesProcessed)
	assert.Equal(t, int64(1), stats.SessionsStarted)
	assert.Equal(t, 1, stats.ActiveSessions)
}
