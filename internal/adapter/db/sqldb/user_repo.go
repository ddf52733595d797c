package sqldb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-form-service/internal/domain/user"
)

// UserRepo stores form submissions in the users table through GORM.
// It works against any dialect GORM was opened with (MySQL, PostgreSQL, SQLite).
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"type:varchar(255);not null"`
	Email string `gorm:"type:varchar(255);not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates the users table, or adds missing columns to an existing one.
func (r *UserRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Insert stores one user record. Both values are bound as statement parameters.
func (r *UserRepo) Insert(ctx context.Context, u *user.User) (*user.InsertResult, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
	}

	// INSERT INTO users (name, email) VALUES (?, ?)
	result := r.db.WithContext(ctx).Select("Name", "Email").Create(&model)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert user: %w", result.Error)
	}

	r.log.Debug("user inserted in db", zap.Int64("id", model.ID), zap.Int64("rows_affected", result.RowsAffected))
	return &user.InsertResult{
		ID:           model.ID,
		RowsAffected: result.RowsAffected,
	}, nil
}
