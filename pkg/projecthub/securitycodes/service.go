// Package securitycodes issues and validates the project-scoped invitation
// codes that gate group creation.
package securitycodes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinLifetime is how far in the future a code's expiration must be when set.
const MinLifetime = 24 * time.Hour

const maxGenerateAttempts = 16

// CoordinatorChecker answers whether a coordinator is assigned to a project.
type CoordinatorChecker interface {
	IsAssigned(ctx context.Context, adminID, projectID uint) (bool, error)
	AssignedProjects(ctx context.Context, adminID uint) ([]uint, error)
}

// Service manages security codes.
type Service struct {
	db           *gorm.DB
	coordinators CoordinatorChecker
	log          *zap.Logger
	now          func() time.Time
	generate     func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGenerator overrides the code generator.
func WithGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.generate = gen }
}

func NewService(db *gorm.DB, coordinators CoordinatorChecker, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:           db,
		coordinators: coordinators,
		log:          log,
		now:          time.Now,
		generate:     GenerateCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateInput lists the optional changes to a code.
type UpdateInput struct {
	Regenerate bool
	Expiration *time.Time
}

// Issue creates a fresh code for projectID.
func (s *Service) Issue(ctx context.Context, p models.Principal, projectID uint, expiration time.Time) (*models.SecurityCode, error) {
	if projectID == 0 {
		return nil, apperrors.InvalidInput("Project id must be positive")
	}
	if err := s.checkExpiration(expiration); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, projectID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return nil, apperrors.Storage(err, "Project not found", "")
	}

	sc := models.SecurityCode{ProjectID: projectID, Expiration: expiration}
	for attempt := 0; ; attempt++ {
		code, err := s.uniqueCode(ctx, "")
		if err != nil {
			return nil, err
		}
		sc.Code = code
		err = db.Create(&sc).Error
		if err == nil {
			break
		}
		// Lost a race for the same code; try another one.
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxGenerateAttempts {
			sc.ID = 0
			continue
		}
		return nil, apperrors.Storage(err, "Failed to create security code", "Security code already exists")
	}

	metrics.SecurityCodesIssued.Inc()
	s.log.Info("security code issued",
		zap.Uint("project_id", projectID),
		zap.Uint("admin_id", p.ID),
		zap.Time("expiration", expiration),
	)
	return &sc, nil
}

// Validate resolves a code to its project id. Codes are matched case-insensitively
// and are never consumed.
func (s *Service) Validate(ctx context.Context, code string) (uint, error) {
	sc, err := s.lookup(ctx, code)
	if err != nil {
		return 0, err
	}
	return sc.ProjectID, nil
}

// ValidateProject is Validate returning the whole project.
func (s *Service) ValidateProject(ctx context.Context, code string) (*models.Project, error) {
	sc, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, sc.ProjectID).Error; err != nil {
		return nil, apperrors.Storage(err, "Project not found", "")
	}
	return &project, nil
}

func (s *Service) lookup(ctx context.Context, code string) (*models.SecurityCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperrors.InvalidInput("Security code is required")
	}

	var sc models.SecurityCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&sc).Error; err != nil {
		return nil, apperrors.Storage(err, "Security code not found", "")
	}
	if sc.Expired(s.now()) {
		return nil, apperrors.InvalidState("Security code has expired")
	}
	return &sc, nil
}

// Update regenerates the code and/or moves its expiration.
func (s *Service) Update(ctx context.Context, p models.Principal, id uint, in UpdateInput) (*models.SecurityCode, error) {
	sc, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, p, sc.ProjectID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Expiration != nil {
		if err := s.checkExpiration(*in.Expiration); err != nil {
			return nil, err
		}
		updates["expiration"] = *in.Expiration
	}
	if in.Regenerate {
		code, err := s.uniqueCode(ctx, sc.Code)
		if err != nil {
			return nil, err
		}
		updates["code"] = code
	}
	if len(updates) == 0 {
		return sc, nil
	}

	if err := s.db.WithContext(ctx).Model(sc).Updates(updates).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to update security code", "Security code already exists")
	}
	return s.get(ctx, id)
}

// Delete removes a code.
func (s *Service) Delete(ctx context.Context, p models.Principal, id uint) error {
	sc, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, p, sc.ProjectID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.SecurityCode{}, sc.ID).Error; err != nil {
		return apperrors.Storage(err, "Failed to delete security code", "")
	}
	return nil
}

// List returns the codes visible to p. Coordinators only see codes of the
// projects they are assigned to.
func (s *Service) List(ctx context.Context, p models.Principal, projectID uint) ([]models.SecurityCode, error) {
	query := s.db.WithContext(ctx).Order("id")
	if projectID != 0 {
		query = query.Where("project_id = ?", projectID)
	}

	switch {
	case p.IsSuperior():
	case p.IsCoordinator():
		projects, err := s.coordinators.AssignedProjects(ctx, p.ID)
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to check coordinator assignment")
		}
		if len(projects) == 0 {
			return []models.SecurityCode{}, nil
		}
		query = query.Where("project_id IN ?", projects)
	default:
		return nil, apperrors.Forbidden("Admin access required")
	}

	codes := []models.SecurityCode{}
	if err := query.Find(&codes).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to list security codes", "")
	}
	return codes, nil
}

func (s *Service) get(ctx context.Context, id uint) (*models.SecurityCode, error) {
	var sc models.SecurityCode
	if err := s.db.WithContext(ctx).First(&sc, id).Error; err != nil {
		return nil, apperrors.Storage(err, "Security code not found", "")
	}
	return &sc, nil
}

// authorize lets Root and Professor act on any project and Coordinators only on
// the projects they are assigned to.
func (s *Service) authorize(ctx context.Context, p models.Principal, projectID uint) error {
	if p.IsSuperior() {
		return nil
	}
	if !p.IsCoordinator() {
		return apperrors.Forbidden("Admin access required")
	}
	ok, err := s.coordinators.IsAssigned(ctx, p.ID, projectID)
	if err != nil {
		return apperrors.Internal(err, "Failed to check coordinator assignment")
	}
	if !ok {
		return apperrors.Forbidden("Access denied - you are not assigned to this project")
	}
	return nil
}

func (s *Service) checkExpiration(expiration time.Time) error {
	if expiration.Before(s.now().Add(MinLifetime)) {
		return apperrors.InvalidInput("Expiration must be at least one day in the future")
	}
	return nil
}

// uniqueCode generates codes until one is not in use. current is accepted as
// available since it belongs to the code being regenerated.
func (s *Service) uniqueCode(ctx context.Context, current string) (string, error) {
	db := s.db.WithContext(ctx)
	for i := 0; i < maxGenerateAttempts; i++ {
		code, err := s.generate()
		if err != nil {
			return "", apperrors.Internal(err, "Failed to generate security code")
		}
		if code == current {
			return code, nil
		}
		var count int64
		if err := db.Model(&models.SecurityCode{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", apperrors.Storage(err, "Failed to generate security code", "")
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", apperrors.Internal(errors.New("code space exhausted"), "Failed to generate security code")
}
