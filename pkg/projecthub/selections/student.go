package selections

import (
	"context"

	"github.com/mikepea/projecthub/pkg/projecthub/apperrors"
	"github.com/mikepea/projecthub/pkg/projecthub/metrics"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
)

// CreateStudentSelection records the caller's individual deliverable for a
// project. The caller must belong to a group of that project.
func (s *Service) CreateStudentSelection(ctx context.Context, p models.Principal, deliverableID, projectID uint) (*models.StudentDeliverableSelection, error) {
	project, deliverable, err := s.prepareStudentSelection(ctx, p, deliverableID, projectID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var existing int64
	if err := db.Model(&models.StudentDeliverableSelection{}).
		Where("student_id = ? AND project_id = ?", p.ID, project.ID).
		Count(&existing).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to check existing selection", "")
	}
	if existing > 0 {
		return nil, apperrors.Conflict("You already selected a deliverable for this project, update it instead")
	}

	sel := models.StudentDeliverableSelection{StudentID: p.ID, ProjectID: project.ID, StudentDeliverableID: deliverable.ID}
	if err := db.Create(&sel).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to create selection", "You already selected a deliverable for this project, update it instead")
	}
	sel.Deliverable = *deliverable

	metrics.DeliverableSelections.WithLabelValues("student", "create").Inc()
	s.log.Info("student deliverable selected",
		zap.Uint("student_id", p.ID),
		zap.Uint("project_id", project.ID),
		zap.Uint("deliverable_id", deliverable.ID),
	)
	return &sel, nil
}

// UpdateStudentSelection switches the caller's individual deliverable.
func (s *Service) UpdateStudentSelection(ctx context.Context, p models.Principal, deliverableID, projectID uint) (*models.StudentDeliverableSelection, error) {
	project, deliverable, err := s.prepareStudentSelection(ctx, p, deliverableID, projectID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var sel models.StudentDeliverableSelection
	if err := db.Where("student_id = ? AND project_id = ?", p.ID, project.ID).First(&sel).Error; err != nil {
		return nil, apperrors.Storage(err, "No deliverable selection found to update", "")
	}

	if err := db.Model(&sel).Update("student_deliverable_id", deliverable.ID).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to update selection", "")
	}
	sel.StudentDeliverableID = deliverable.ID
	sel.Deliverable = *deliverable

	metrics.DeliverableSelections.WithLabelValues("student", "update").Inc()
	return &sel, nil
}

// prepareStudentSelection runs the checks shared by create and update.
func (s *Service) prepareStudentSelection(ctx context.Context, p models.Principal, deliverableID, projectID uint) (*models.Project, *models.StudentDeliverable, error) {
	if !p.IsStudent() {
		return nil, nil, apperrors.Forbidden("Only students can select individual deliverables")
	}
	if projectID == 0 || deliverableID == 0 {
		return nil, nil, apperrors.InvalidInput("Project and deliverable ids must be positive")
	}

	project, err := s.project(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	in, err := s.members.IsStudentInProject(ctx, p.ID, projectID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "Failed to check project membership")
	}
	if !in {
		return nil, nil, apperrors.Forbidden("You must belong to a group in this project")
	}

	var deliverable models.StudentDeliverable
	if err := s.db.WithContext(ctx).Where("id = ? AND project_id = ?", deliverableID, projectID).First(&deliverable).Error; err != nil {
		return nil, nil, apperrors.Storage(err, "Deliverable not found in this project", "")
	}

	if err := s.requireOpen(project); err != nil {
		return nil, nil, err
	}
	return project, &deliverable, nil
}

// GetStudentSelection returns the caller's selection for a project.
func (s *Service) GetStudentSelection(ctx context.Context, p models.Principal, projectID uint) (*models.StudentDeliverableSelection, error) {
	var sel models.StudentDeliverableSelection
	err := s.db.WithContext(ctx).Preload("Deliverable").
		Where("student_id = ? AND project_id = ?", p.ID, projectID).
		First(&sel).Error
	if err != nil {
		return nil, apperrors.Storage(err, "No deliverable selection found for this project", "")
	}
	return &sel, nil
}

// DeleteStudentSelection removes the caller's selection. Deletion is allowed
// after the deadline.
func (s *Service) DeleteStudentSelection(ctx context.Context, p models.Principal, projectID uint) error {
	res := s.db.WithContext(ctx).
		Where("student_id = ? AND project_id = ?", p.ID, projectID).
		Delete(&models.StudentDeliverableSelection{})
	if res.Error != nil {
		return apperrors.Storage(res.Error, "Failed to delete selection", "")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("No deliverable selection found for this project")
	}
	metrics.DeliverableSelections.WithLabelValues("student", "delete").Inc()
	return nil
}

// DeleteForStudent removes a student's selection, if any. It is the cascade run
// when a student leaves or is removed from a group.
func (s *Service) DeleteForStudent(ctx context.Context, studentID, projectID uint) error {
	res := s.db.WithContext(ctx).
		Where("student_id = ? AND project_id = ?", studentID, projectID).
		Delete(&models.StudentDeliverableSelection{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		metrics.DeliverableSelections.WithLabelValues("student", "cascade_delete").Inc()
	}
	return nil
}

// StudentSelectionRow is a student selection with the student it belongs to.
type StudentSelectionRow struct {
	models.StudentDeliverableSelection
	Student models.Student
}

// ListStudentSelections returns every student selection of a project.
func (s *Service) ListStudentSelections(ctx context.Context, p models.Principal, projectID uint) ([]StudentSelectionRow, error) {
	if _, err := s.project(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, p, projectID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var selections []models.StudentDeliverableSelection
	if err := db.Preload("Deliverable").Where("project_id = ?", projectID).Order("id").Find(&selections).Error; err != nil {
		return nil, apperrors.Storage(err, "Failed to fetch selections", "")
	}

	ids := make([]uint, len(selections))
	for i, sel := range selections {
		ids[i] = sel.StudentID
	}
	students := map[uint]models.Student{}
	if len(ids) > 0 {
		var rows []models.Student
		if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, apperrors.Storage(err, "Failed to fetch students", "")
		}
		for _, st := range rows {
			students[st.ID] = st
		}
	}

	out := make([]StudentSelectionRow, len(selections))
	for i, sel := range selections {
		out[i] = StudentSelectionRow{StudentDeliverableSelection: sel, Student: students[sel.StudentID]}
	}
	return out, nil
}
