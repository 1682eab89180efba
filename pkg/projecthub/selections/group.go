package selections

import (
	"context"
	"strings"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

// CreateGroupSelection records the group's deliverable. It can only happen once
// per group and only before the deadline.
func (s *Service) CreateGroupSelection(ctx context.Context, p models.Principal, groupID, deliverableID uint) (*models.GroupDeliverableSelection, error) {
	g, err := s.requireLeader(ctx, p, groupID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.GroupDeliverableSelection{}).Where("group_id = ?", groupID).Count(&existing).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to check existing selection", "")
	}
	if existing > 0 {
		return nil, apperrors.Conflict("Group already has a deliverable selection")
	}

	var deliverable models.GroupDeliverable
	if err := db.Where("id = ? AND project_id = ?", deliverableID, g.ProjectID).First(&deliverable).Error; err != nil {
		return nil, apperrors.Storage(err, "Deliverable not found in this project", "")
	}

	project, err := s.project(ctx, g.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOpen(project); err != nil {
		return nil, err
	}

	sel := models.GroupDeliverableSelection{GroupID: groupID, GroupDeliverableID: deliverableID}
	if err := db.Create(&sel).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to create selection", "Group already has a deliverable selection")
	}
	sel.Deliverable = deliverable

	metrics.DeliverableSelections.WithLabelValues("group", "create").Inc()
	s.log.Info("group deliverable selected",
		zap.Uint("group_id", groupID),
		zap.Uint("deliverable_id", deliverableID),
		zap.Uint("leader_id", p.ID),
	)
	return &sel, nil
}

// UpdateGroupSelection changes the link and notes. The deliverable never changes.
func (s *Service) UpdateGroupSelection(ctx context.Context, p models.Principal, groupID uint, link, markdown string) (*models.GroupDeliverableSelection, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, apperrors.InvalidInput("Link field is mandatory")
	}
	if strings.TrimSpace(markdown) == "" {
		return nil, apperrors.InvalidInput("Markdown text field is mandatory")
	}
	if _, err := s.requireLeader(ctx, p, groupID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var sel models.GroupDeliverableSelection
	if err := db.Where("group_id = ?", groupID).First(&sel).Error; err != nil {
		return nil, apperrors.Storage(err, "No deliverable selection found to update", "")
	}

	var taken int64
	if err := db.Model(&models.GroupDeliverableSelection{}).
		Where("link = ? AND group_id <> ?", link, groupID).
		Count(&taken).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to check link", "")
	}
	if taken > 0 {
		return nil, apperrors.Conflict("This link is already in use by another group")
	}

	if err := db.Model(&sel).Updates(map[string]interface{}{
		"link":          link,
		"markdown_text": markdown,
	}).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to update deliverable selection", "This link is already in use by another group")
	}
	sel.Link = link
	sel.MarkdownText = markdown
	if err := db.First(&sel.Deliverable, sel.GroupDeliverableID).Error; err != nil {
		return nil, apperrors.Storage(err, "Deliverable not found", "")
	}

	metrics.DeliverableSelections.WithLabelValues("group", "update").Inc()
	return &sel, nil
}

// GetGroupSelection returns the group's selection for its members and for
// admins managing the project.
func (s *Service) GetGroupSelection(ctx context.Context, p models.Principal, groupID uint) (*models.GroupDeliverableSelection, error) {
	g, err := s.members.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if p.IsStudent() {
		m, err := s.members.MembershipInProject(ctx, p.ID, g.ProjectID)
		if err != nil {
			return nil, apperrors.Internal(err, "Failed to check membership")
		}
		if m == nil || m.GroupID != groupID {
			return nil, apperrors.Forbidden("You are not a member of this group")
		}
	} else if err := s.requireManage(ctx, p, g.ProjectID); err != nil {
		return nil, err
	}

	var sel models.GroupDeliverableSelection
	if err := s.db.WithContext(ctx).Preload("Deliverable").Where("group_id = ?", groupID).First(&sel).Error; err != nil {
		return nil, apperrors.Storage(err, "No deliverable selection found for this group", "")
	}
	return &sel, nil
}

// ListGroupSelections returns every group selection of a project.
func (s *Service) ListGroupSelections(ctx context.Context, p models.Principal, projectID uint) ([]models.GroupDeliverableSelection, error) {
	if _, err := s.project(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, p, projectID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	groupIDs := db.Model(&models.Group{}).Select("id").Where("project_id = ?", projectID)
	selections := []models.GroupDeliverableSelection{}
	err := db.Preload("Group").Preload("Deliverable").
		Where("group_id IN (?)", groupIDs).
		Order("id").
		Find(&selections).Error
	if err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch selections", "")
	}
	return selections, nil
}
