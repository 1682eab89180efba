// Package implementations tracks how a group implements each component of its
// selected deliverable. Only the group leader may write; reads are open.
package implementations

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Leadership resolves a group and checks that a student leads it.
type Leadership interface {
	RequireLeader(ctx context.Context, groupID, studentID uint) (*models.Group, error)
}

// Detail is a stored detail with its component name resolved.
type Detail struct {
	models.ComponentImplementationDetail
	ComponentName string
}

// UpdateInput carries the fields to change. Nil fields are left alone.
type UpdateInput struct {
	MarkdownDescription *string
	RepositoryLink      *string
}

type Service struct {
	db     *gorm.DB
	groups Leadership
	log    *zap.Logger
}

func NewService(db *gorm.DB, groups Leadership, log *zap.Logger) *Service {
	return &Service{db: db, groups: groups, log: log}
}

// Create adds the detail for one component of the group's selected deliverable.
func (s *Service) Create(ctx context.Context, p models.Principal, groupID, componentID uint, description, repositoryLink string) (*Detail, error) {
	sel, err := s.leaderSelection(ctx, p, groupID)
	if err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	repositoryLink = strings.TrimSpace(repositoryLink)
	if description == "" || repositoryLink == "" {
		return nil, apperrors.InvalidInput("Markdown description and repository link are mandatory")
	}
	component, err := s.component(ctx, sel, componentID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.ComponentImplementationDetail{}).
		Where("group_deliverable_selection_id = ? AND group_deliverable_component_id = ?", sel.ID, componentID).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to check existing detail", "")
	}
	if existing > 0 {
		return nil, apperrors.Conflict("Implementation detail for this component already exists")
	}

	detail := models.ComponentImplementationDetail{
		GroupDeliverableSelectionID: sel.ID,
		GroupDeliverableComponentID: componentID,
		MarkdownDescription:         description,
		RepositoryLink:              repositoryLink,
	}
	if err := db.Create(&detail).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to create implementation detail", "Implementation detail for this component already exists")
	}

	metrics.ComponentDetails.WithLabelValues("create").Inc()
	s.log.Info("component detail created",
		zap.Uint("group_id", groupID),
		zap.Uint("component_id", componentID),
	)
	return &Detail{ComponentImplementationDetail: detail, ComponentName: component.Name}, nil
}

// Update changes the description and/or repository link of an existing detail.
func (s *Service) Update(ctx context.Context, p models.Principal, groupID, componentID uint, in UpdateInput) (*Detail, error) {
	sel, err := s.leaderSelection(ctx, p, groupID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.MarkdownDescription != nil {
		v := strings.TrimSpace(*in.MarkdownDescription)
		if v == "" {
			return nil, apperrors.InvalidInput("Markdown description cannot be blank")
		}
		changes["markdown_description"] = v
	}
	if in.RepositoryLink != nil {
		v := strings.TrimSpace(*in.RepositoryLink)
		if v == "" {
			return nil, apperrors.InvalidInput("Repository link cannot be blank")
		}
		changes["repository_link"] = v
	}

	db := s.db.WithContext(ctx)
	var detail models.ComponentImplementationDetail
	if err := db.Where("group_deliverable_selection_id = ? AND group_deliverable_component_id = ?", sel.ID, componentID).
		First(&detail).Error; err != nil {
		return nil, apperrors.Storage(err, "Implementation detail not found", "")
	}

	if len(changes) > 0 {
		if err := db.Model(&detail).Updates(changes).Error; err != nil {
			return nil, apperrors.Storage(err, "Failed to update implementation detail", "")
		}
		if v, ok := changes["markdown_description"]; ok {
			detail.MarkdownDescription = v.(string)
		}
		if v, ok := changes["repository_link"]; ok {
			detail.RepositoryLink = v.(string)
		}
		metrics.ComponentDetails.WithLabelValues("update").Inc()
	}

	names, err := s.componentNames(ctx, []uint{componentID})
	if err != nil {
		return nil, err
	}
	return &Detail{ComponentImplementationDetail: detail, ComponentName: names.name(componentID)}, nil
}

// Delete removes the detail for a component.
func (s *Service) Delete(ctx context.Context, p models.Principal, groupID, componentID uint) error {
	sel, err := s.leaderSelection(ctx, p, groupID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("group_deliverable_selection_id = ? AND group_deliverable_component_id = ?", sel.ID, componentID).
		Delete(&models.ComponentImplementationDetail{})
	if res.Error != nil {
		return apperrors.Storage(res.Error, "Failed to delete implementation detail", "")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Implementation detail not found")
	}

	metrics.ComponentDetails.WithLabelValues("delete").Inc()
	s.log.Info("component detail deleted",
		zap.Uint("group_id", groupID),
		zap.Uint("component_id", componentID),
	)
	return nil
}

// ListByGroup returns the details of the group's selection. A group that has
// not selected a deliverable yet has none.
func (s *Service) ListByGroup(ctx context.Context, groupID uint) ([]Detail, error) {
	db := s.db.WithContext(ctx)
	var group models.Group
	if err := db.First(&group, groupID).Error; err != nil {
		return nil, apperrors.Storage(err, "Group not found", "")
	}

	var sel models.GroupDeliverableSelection
	err := db.Where("group_id = ?", groupID).Limit(1).Find(&sel).Error
	if err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch deliverable selection", "")
	}
	if sel.ID == 0 {
		return []Detail{}, nil
	}
	return s.list(ctx, sel.ID)
}

// ListBySelection returns the details of a selection.
func (s *Service) ListBySelection(ctx context.Context, selectionID uint) ([]Detail, error) {
	var sel models.GroupDeliverableSelection
	if err := s.db.WithContext(ctx).First(&sel, selectionID).Error; err != nil {
		return nil, apperrors.Storage(err, "Deliverable selection not found", "")
	}
	return s.list(ctx, sel.ID)
}

func (s *Service) list(ctx context.Context, selectionID uint) ([]Detail, error) {
	var rows []models.ComponentImplementationDetail
	if err := s.db.WithContext(ctx).
		Where("group_deliverable_selection_id = ?", selectionID).
		Order("group_deliverable_component_id").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch implementation details", "")
	}

	ids := make([]uint, len(rows))
	for i, r := range rows {
		ids[i] = r.GroupDeliverableComponentID
	}
	names, err := s.componentNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Detail, len(rows))
	for i, r := range rows {
		out[i] = Detail{ComponentImplementationDetail: r, ComponentName: names.name(r.GroupDeliverableComponentID)}
	}
	return out, nil
}

// leaderSelection checks leadership and returns the group's selection,
// NotFound when the group has not selected a deliverable yet.
func (s *Service) leaderSelection(ctx context.Context, p models.Principal, groupID uint) (*models.GroupDeliverableSelection, error) {
	if !p.IsStudent() {
		return nil, apperrors.Forbidden("Only the group leader can manage implementation details")
	}
	if _, err := s.groups.RequireLeader(ctx, groupID, p.ID); err != nil {
		return nil, err
	}

	var sel models.GroupDeliverableSelection
	if err := s.db.WithContext(ctx).Where("group_id = ?", groupID).First(&sel).Error; err != nil {
		return nil, apperrors.Storage(err, "Group has no deliverable selection yet", "")
	}
	return &sel, nil
}

// component loads componentID if it is part of the selected deliverable.
func (s *Service) component(ctx context.Context, sel *models.GroupDeliverableSelection, componentID uint) (*models.GroupDeliverableComponent, error) {
	var link models.GroupDeliverableComponentLink
	err := s.db.WithContext(ctx).Preload("Component").
		Where("group_deliverable_id = ? AND group_deliverable_component_id = ?", sel.GroupDeliverableID, componentID).
		First(&link).Error
	if err != nil {
		return nil, apperrors.Storage(err, "Component is not part of the selected deliverable", "")
	}
	return &link.Component, nil
}

type componentNames map[uint]string

func (n componentNames) name(id uint) string {
	if v, ok := n[id]; ok {
		return v
	}
	return fmt.Sprintf("Unknown Component %d", id)
}

func (s *Service) componentNames(ctx context.Context, ids []uint) (componentNames, error) {
	names := componentNames{}
	if len(ids) == 0 {
		return names, nil
	}
	var components []models.GroupDeliverableComponent
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&components).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch components", "")
	}
	for _, c := range components {
		names[c.ID] = c.Name
	}
	return names, nil
}
