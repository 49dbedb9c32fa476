package handlers

import (
	"honeytrap-lab/internal/config"
	"honeytrap-lab/internal/domain/services/detection"
	"honeytrap-lab/internal/domain/services/extraction"
	"honeytrap-lab/internal/domain/services/session"
	"honeytrap-lab/internal/infrastructure/cache"
	"honeytrap-lab/internal/infrastructure/database"
	"honeytrap-lab/internal/infrastructure/database/repository"
	"honeytrap-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Messages *MessagesHandler
	Sessions *SessionsHandler
	Analysis *AnalysisHandler
	Stats    *StatsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Config    config.Config
	Manager   *session.Manager
	Detector  *detection.Engine
	Extractor *extraction.Extractor
	Cache     *cache.RedisCache
	DB        *database.PostgresDB
	Reports   *repository.ReportRepository
	Logger    *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.DB, deps.Logger),
		Messages: NewMessagesHandler(deps.Manager, deps.Logger),
		Sessions: NewSessionsHandler(deps.Manager, deps.Reports, deps.Cache, deps.Logger),
		Analysis: NewAnalysisHandler(deps.Detector, deps.Extractor, deps.Cache, deps.Config.Detection, deps.Logger),
		Stats:    NewStatsHandler(deps.Manager, deps.Reports, deps.Logger),
	}
}
