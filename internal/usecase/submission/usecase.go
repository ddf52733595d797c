package submission

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	domain "user-form-service/internal/domain/user"
	apperrors "user-form-service/pkg/errors"
	"user-form-service/pkg/logger"
)

// Repository defines the storage operation a submission needs.
type Repository interface {
	Insert(ctx context.Context, u *domain.User) (*domain.InsertResult, error)
}

// Options tunes the use case.
type Options struct {
	// RequireFields rejects submissions with an empty name or email.
	RequireFields bool
	// QueryTimeout bounds each insert; zero disables the bound.
	QueryTimeout time.Duration
}

// Service implements Usecase on top of a Repository.
type Service struct {
	repo     Repository
	log      *zap.Logger
	opts     Options
	validate *validator.Validate
}

// New creates a new submission service.
func New(r Repository, log *zap.Logger, opts Options) *Service {
	return &Service{repo: r, log: log, opts: opts, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return apperrors.NewValidationError("", strings.Join(messages, ", "))
}

// Submit stores one form submission.
func (s *Service) Submit(ctx context.Context, in SubmitRequest) (*SubmitResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if s.opts.RequireFields {
		if err := s.validate.Struct(requiredFields(in)); err != nil {
			log.Warn("submission rejected", zap.Error(err))
			return nil, formatValidationError(err)
		}
	}

	if s.opts.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.QueryTimeout)
		defer cancel()
	}

	res, err := s.repo.Insert(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		log.Error("failed to store submission", zap.Error(err))
		return nil, classifyStoreError(err)
	}

	log.Info("submission stored", zap.Int64("id", res.ID), zap.Int64("rows_affected", res.RowsAffected))
	return &SubmitResponse{
		ID:           res.ID,
		RowsAffected: res.RowsAffected,
	}, nil
}

// classifyStoreError separates failures to reach the database from failures of the statement itself.
func classifyStoreError(err error) error {
	if isConnectionError(err) {
		return apperrors.NewUnavailableError("database unavailable", err)
	}
	return apperrors.NewInternalError("failed to store submission", err)
}

// isConnectionError reports whether err means the database could not be reached,
// including a MySQL connection dropped mid-query and failed (re)dials.
func isConnectionError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
