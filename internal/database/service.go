package database

import (
	"github.com/Suhaib3100/quasar-2.0/internal/database/service"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	progression *service.ProgressionService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	return &Service{
		progression: service.NewProgression(db, repository.Progression(), repository.Audit(), logger),
	}
}

// Progression returns the progression service.
func (s *Service) Progression() *service.ProgressionService {
	return s.progression
}
