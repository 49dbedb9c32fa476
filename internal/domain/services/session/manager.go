package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/detection"
	"honeytrap-lab/internal/domain/services/extraction"
	"honeytrap-lab/internal/domain/services/generation"
	"honeytrap-lab/internal/domain/services/reporting"
	"honeytrap-lab/internal/domain/services/strategy"
	"honeytrap-lab/internal/infrastructure/cache"
	"honeytrap-lab/internal/infrastructure/database/repository"
	"honeytrap-lab/pkg/logger"
)

// deliveryTimeout bounds the report delivery chain for one session
const deliveryTimeout = 2 * time.Minute

// archiveTTL bounds how long completed sessions stay in the Redis archive
const archiveTTL = 7 * 24 * time.Hour

// Dependencies wires the manager's collaborators. Reports and Cache
// are optional; the manager is nil-safe around both.
type Dependencies struct {
	Config     config.EngagementConfig
	Detector   *detection.Engine
	Extractor  *extraction.Extractor
	Strategist *strategy.Strategist
	Generator  *generation.Generator
	Deliverer  *reporting.Deliverer
	Reports    *repository.ReportRepository
	Cache      *cache.RedisCache
	Logger     *logger.Logger
}

// Manager owns the per-session engagement lifecycle: turn processing,
// termination triggers, inactivity timers, finalization and report
// delivery. The registry lock covers only map insert/lookup/evict;
// everything else runs under the individual session's mutex.
type Manager struct {
	cfg config.EngagementConfig
	log *logger.Logger

	detector   *detection.Engine
	extractor  *extraction.Extractor
	strategist *strategy.Strategist
	generator  *generation.Generator
	deliverer  *reporting.Deliverer
	reports    *repository.ReportRepository
	cache      *cache.RedisCache

	mu       sync.RWMutex
	sessions map[string]*Session

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}

	statsMu sync.Mutex
	stats   models.EngineStats
}

// NewManager creates a session lifecycle manager
func NewManager(deps Dependencies) *Manager {
	cfg := deps.Config
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 20
	}
	if cfg.MaxSessionDuration <= 0 {
		cfg.MaxSessionDuration = 30 * time.Minute
	}
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = 5 * time.Minute
	}
	if cfg.MinIntelligenceCategories <= 0 {
		cfg.MinIntelligenceCategories = 2
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	return &Manager{
		cfg:        cfg,
		log:        deps.Logger.WithComponent("session-manager"),
		detector:   deps.Detector,
		extractor:  deps.Extractor,
		strategist: deps.Strategist,
		generator:  deps.Generator,
		deliverer:  deps.Deliverer,
		reports:    deps.Reports,
		cache:      deps.Cache,
		sessions:   make(map[string]*Session),
		stats:      models.EngineStats{FinalizedByReason: make(map[models.TerminationReason]int64)},
	}
}

// ProcessMessage runs one inbound scammer message through the full
// pipeline and returns the engagement decision for this turn. Internal
// failures degrade the response; they never surface as errors.
func (m *Manager) ProcessMessage(ctx context.Context, req models.ProcessMessageRequest) *models.ProcessMessageResponse {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.Timestamp != nil {
		now = req.Timestamp.UTC()
	}

	sess, created := m.getOrCreate(sessionID, now)
	if created {
		m.bumpStarted()
		m.log.Info().Str("session_id", sessionID).Str("persona", sess.persona.Name).Msg("session started")
	}

	sender := req.Meta.Sender
	if sender == "" {
		sender = "scammer"
	}

	sess.mu.Lock()
	if sess.state != models.SessionActive {
		resp := m.terminalResponse(sess)
		sess.mu.Unlock()
		return resp
	}
	prevMessageTime := sess.lastMessageTime
	sess.turnCount++
	turn := sess.turnCount
	sess.lastMessageTime = now
	sess.history = append(sess.history, models.HistoryEntry{Sender: sender, Text: req.Text, Timestamp: now})
	history := sess.historySnapshot()
	persona := sess.persona
	sess.mu.Unlock()

	// Scoring and extraction are pure CPU; run them without any lock
	result := m.detector.Analyze(ctx, req.Text, history)
	extracted := m.extractor.Extract(req.Text)

	m.bumpProcessed(result.IsScam)

	sess.mu.Lock()
	sess.recordDetection(result)
	sess.intel.Merge(&extracted)
	intelSnapshot := sess.intel
	reason := m.terminationReason(sess, now, prevMessageTime)
	if reason == "" {
		m.armInactivityTimer(sess)
	} else {
		sess.stopTimer()
	}
	sess.mu.Unlock()

	directive := m.strategist.NextDirective(sessionID, turn, &intelSnapshot)
	reply := m.generator.Reply(ctx, persona, directive, history, turn)

	sess.mu.Lock()
	if sess.state == models.SessionActive {
		sess.history = append(sess.history, models.HistoryEntry{Sender: "user", Text: reply, Timestamp: time.Now().UTC()})
	}
	state := sess.state
	sess.mu.Unlock()

	if reason != "" {
		state = models.SessionFinalizing
		go m.finalize(sess, reason)
	}

	return &models.ProcessMessageResponse{
		SessionID:      sessionID,
		Stage:          directive.Stage,
		Reply:          reply,
		Directive:      &directive,
		Detection:      result,
		Intelligence:   intelSnapshot,
		ShouldFinalize: reason != "",
		State:          state,
	}
}

// terminalResponse answers messages that arrive after finalization
// started. Caller holds sess.mu.
func (m *Manager) terminalResponse(sess *Session) *models.ProcessMessageResponse {
	return &models.ProcessMessageResponse{
		SessionID:    sess.id,
		Stage:        strategy.StageFor(sess.turnCount),
		Reply:        "Sorry, I have to go now. Goodbye.",
		Intelligence: sess.intel,
		State:        sess.state,
	}
}

// terminationReason evaluates the triggers in their fixed order.
// Caller holds sess.mu.
func (m *Manager) terminationReason(sess *Session, now, prevMessageTime time.Time) models.TerminationReason {
	if sess.turnCount >= m.cfg.MaxTurns {
		return models.ReasonMaxTurns
	}
	if now.Sub(sess.startTime) >= m.cfg.MaxSessionDuration {
		return models.ReasonMaxDuration
	}
	if now.Sub(prevMessageTime) >= m.cfg.InactivityTimeout {
		return models.ReasonInactivity
	}
	if sess.intel.CategoryCount() >= m.cfg.MinIntelligenceCategories &&
		sess.maxConfidence >= m.detector.Threshold() {
		return models.ReasonSufficientIntel
	}
	return ""
}

// armInactivityTimer re-arms the timer atomically: the previous timer
// is stopped before the replacement is scheduled. Caller holds sess.mu.
func (m *Manager) armInactivityTimer(sess *Session) {
	sess.stopTimer()
	id := sess.id
	sess.inactivityTimer = time.AfterFunc(m.cfg.InactivityTimeout, func() {
		m.onInactivityTimeout(id)
	})
}

// onInactivityTimeout fires from the timer goroutine. Completed or
// finalizing sessions make it a no-op; a timer that raced with a fresh
// message re-arms itself for the remainder.
func (m *Manager) onInactivityTimeout(sessionID string) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	sess.mu.Lock()
	if sess.state != models.SessionActive {
		sess.mu.Unlock()
		return
	}
	idle := time.Since(sess.lastMessageTime)
	if idle < m.cfg.InactivityTimeout {
		remaining := m.cfg.InactivityTimeout - idle
		id := sess.id
		sess.inactivityTimer = time.AfterFunc(remaining, func() {
			m.onInactivityTimeout(id)
		})
		sess.mu.Unlock()
		return
	}
	sess.mu.Unlock()

	m.log.Info().Str("session_id", sessionID).Msg("inactivity timeout reached")
	m.finalize(sess, models.ReasonInactivity)
}

// finalize transitions the session to Finalizing, builds the report
// under the session lock, then delivers and archives it lock-free.
// The state check makes finalization exactly-once under races between
// the message path, the timer and the sweep.
func (m *Manager) finalize(sess *Session, reason models.TerminationReason) {
	sess.mu.Lock()
	if sess.state != models.SessionActive {
		sess.mu.Unlock()
		return
	}
	sess.state = models.SessionFinalizing
	sess.terminationReason = reason
	sess.stopTimer()
	report := sess.buildReport()
	view := sess.view()
	sess.mu.Unlock()

	m.bumpFinalized(reason)
	log := m.log.WithSessionID(sess.id)
	log.Info().
		Str("reason", string(reason)).
		Int("turns", report.TotalMessagesExchanged).
		Bool("scam_detected", report.ScamDetected).
		Msg("finalizing session")

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	record := m.deliverer.Deliver(ctx, report)
	record.TerminationReason = reason
	m.bumpDelivery(record.Status)
	m.archive(ctx, log, &record, view)

	sess.mu.Lock()
	sess.state = models.SessionCompleted
	sess.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, sess.id)
	m.mu.Unlock()
}

// archive persists the delivery record best-effort
func (m *Manager) archive(ctx context.Context, log *logger.Logger, record *models.DeliveryRecord, view models.SessionView) {
	if m.reports != nil {
		if err := m.reports.Create(ctx, record); err != nil {
			log.Warn().Err(err).Msg("failed to persist report")
		}
	}
	if m.cache != nil {
		if err := m.cache.ArchiveSession(ctx, record.SessionID, view, archiveTTL); err != nil {
			log.Warn().Err(err).Msg("failed to archive session")
		}
	}
}

// ForceFinalize finalizes a session on operator request. Returns false
// when the session does not exist.
func (m *Manager) ForceFinalize(sessionID string) bool {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	go m.finalize(sess, models.ReasonForced)
	return true
}

// GetSession returns a snapshot of a live session
func (m *Manager) GetSession(sessionID string) (models.SessionView, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return models.SessionView{}, false
	}
	return sess.View(), true
}

// ListSessions snapshots every live session
func (m *Manager) ListSessions() []models.SessionView {
	m.mu.RLock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	views := make([]models.SessionView, 0, len(all))
	for _, s := range all {
		views = append(views, s.View())
	}
	return views
}

// Stats returns a snapshot of the lifecycle counters
func (m *Manager) Stats() models.EngineStats {
	m.mu.RLock()
	active := len(m.sessions)
	m.mu.RUnlock()

	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	snapshot := m.stats
	snapshot.ActiveSessions = active
	snapshot.FinalizedByReason = make(map[models.TerminationReason]int64, len(m.stats.FinalizedByReason))
	for k, v := range m.stats.FinalizedByReason {
		snapshot.FinalizedByReason[k] = v
	}
	return snapshot
}

// Start launches the stale-session sweep loop
func (m *Manager) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	go m.sweepLoop(ctx)
	m.log.Info().Dur("interval", m.cfg.SweepInterval).Msg("sweep loop started")
}

// Stop halts the sweep loop
func (m *Manager) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
	m.log.Info().Msg("sweep loop stopped")
}

func (m *Manager) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep finalizes sessions that breached the age or inactivity limits
// without triggering the per-session timer, and tolerates concurrent
// finalization through the state check in finalize.
func (m *Manager) sweep() {
	now := time.Now().UTC()

	m.mu.RLock()
	stale := make([]*Session, 0)
	for _, sess := range m.sessions {
		sess.mu.Lock()
		expired := sess.state == models.SessionActive &&
			(now.Sub(sess.startTime) >= m.cfg.MaxSessionDuration ||
				now.Sub(sess.lastMessageTime) >= m.cfg.InactivityTimeout)
		sess.mu.Unlock()
		if expired {
			stale = append(stale, sess)
		}
	}
	m.mu.RUnlock()

	for _, sess := range stale {
		reason := models.ReasonInactivity
		sess.mu.Lock()
		if now.Sub(sess.startTime) >= m.cfg.MaxSessionDuration {
			reason = models.ReasonMaxDuration
		}
		sess.mu.Unlock()
		m.log.Info().Str("session_id", sess.id).Str("reason", string(reason)).Msg("sweeping stale session")
		m.finalize(sess, reason)
	}
}

func (m *Manager) getOrCreate(sessionID string, now time.Time) (*Session, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return sess, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[sessionID]; ok {
		return sess, false
	}
	sess = newSession(sessionID, now)
	m.sessions[sessionID] = sess
	return sess, true
}

func (m *Manager) bumpStarted() {
	m.statsMu.Lock()
	m.stats.SessionsStarted++
	m.statsMu.Unlock()
}

func (m *Manager) bumpProcessed(isScam bool) {
	m.statsMu.Lock()
	m.stats.MessagesProcessed++
	if isScam {
		m.stats.ScamsDetected++
	}
	m.statsMu.Unlock()
}

func (m *Manager) bumpFinalized(reason models.TerminationReason) {
	m.statsMu.Lock()
	m.stats.SessionsFinalized++
	m.stats.FinalizedByReason[reason]++
	m.statsMu.Unlock()
}

func (m *Manager) bumpDelivery(status models.DeliveryStatus) {
	m.statsMu.Lock()
	switch status {
	case models.DeliveryDelivered:
		m.stats.ReportsDelivered++
	case models.DeliveryFailed:
		m.stats.ReportsFailed++
	}
	m.statsMu.Unlock()
}
