package server

import (
	"context"

	"github.com/mikepea/projecthub/pkg/projecthub/auth"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnsureRootAdmin creates the root admin if no root admin exists yet.
func EnsureRootAdmin(ctx context.Context, db *gorm.DB, email, password string, log *zap.Logger) error {
	db = db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Admin{}).Where("role = ?", models.AdminRoleRoot).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	root := models.Admin{
		Email:        email,
		FirstName:    "Root",
		LastName:     "Admin",
		PasswordHash: hash,
		Role:         models.AdminRoleRoot,
	}
	if err := db.Create(&root).Error; err != nil {
		return err
	}

	log.Info("created root admin", zap.String("email", email))
	return nil
}
