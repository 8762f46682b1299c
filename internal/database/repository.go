package database

import (
	"github.com/Suhaib3100/quasar-2.0/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	progression *models.ProgressionModel
	roleReward  *models.RoleRewardModel
	audit       *models.AuditModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		progression: models.NewProgression(db, logger),
		roleReward:  models.NewRoleReward(db, logger),
		audit:       models.NewAudit(db, logger),
	}
}

// Progression returns the progression model repository.
func (r *Repository) Progression() *models.ProgressionModel {
	return r.progression
}

// RoleReward returns the role reward model repository.
func (r *Repository) RoleReward() *models.RoleRewardModel {
	return r.roleReward
}

// Audit returns the audit model repository.
func (r *Repository) Audit() *models.AuditModel {
	return r.audit
}
