package submission

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-form-service/internal/domain/user"
	apperrors "user-form-service/pkg/errors"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Insert(ctx context.Context, u *domain.User) (*domain.InsertResult, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InsertResult), args.Error(1)
}

func setupTestService(t *testing.T, opts Options) (*Service, *MockRepository) {
	mockRepo := new(MockRepository)
	return New(mockRepo, zaptest.NewLogger(t), opts), mockRepo
}

func TestSubmit_Success(t *testing.T) {
	svc, mockRepo := setupTestService(t, Options{})
	ctx := context.Background()

	mockRepo.On("Insert", mock.Anything, &domain.User{Name: "Alice", Email: "alice@example.com"}).
		Return(&domain.InsertResult{ID: 42, RowsAffected: 1}, nil)

	resp, err := svc.Submit(ctx, SubmitRequest{Name: "Alice", Email: "alice@example.com"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, int64(1), resp.RowsAffected)
	mockRepo.AssertExpectations(t)
}

func TestSubmit_EmptyFieldsStoredByDefault(t *testing.T) {
	svc, mockRepo := setupTestService(t, Options{})

	mockRepo.On("Insert", mock.Anything, &domain.User{Name: "", Email: ""}).
		Return(&domain.InsertResult{ID: 1, RowsAffected: 1}, nil)

	resp, err := svc.Submit(context.Background(), SubmitRequest{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	mockRepo.AssertExpectations(t)
}

func TestSubmit_RequireFields(t *testing.T) {
	tests := []struct {
		name     string
		req      SubmitRequest
		contains []string
	}{
		{
			name:     "missing name",
			req:      SubmitRequest{Email: "alice@example.com"},
			contains: []string{"Name is required"},
		},
		{
			name:     "missing email",
			req:      SubmitRequest{Name: "Alice"},
			contains: []string{"Email is required"},
		},
		{
			name:     "missing both",
			req:      SubmitRequest{},
			contains: []string{"Name is required", "Email is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := setupTestService(t, Options{RequireFields: true})

			resp, err := svc.Submit(context.Background(), tt.req)

			assert.Nil(t, resp)
			var validationErr *apperrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			for _, msg := range tt.contains {
				assert.Contains(t, err.Error(), msg)
			}
			mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_RequireFields_Accepts(t *testing.T) {
	svc, mockRepo := setupTestService(t, Options{RequireFields: true})

	mockRepo.On("Insert", mock.Anything, mock.Anything).Return(&domain.InsertResult{ID: 3, RowsAffected: 1}, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Name: "Alice", Email: "not-an-email"})

	// Presence only; the format is not checked.
	require.NoError(t, err)
}

func TestSubmit_AppliesQueryTimeout(t *testing.T) {
	svc, mockRepo := setupTestService(t, Options{QueryTimeout: 2 * time.Second})

	mockRepo.On("Insert", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 2*time.Second
	}), mock.Anything).Return(&domain.InsertResult{ID: 1, RowsAffected: 1}, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{Name: "Alice", Email: "alice@example.com"})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

// timeoutError is a net.Error reported by a driver whose socket read timed out.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestSubmit_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{
			name:       "statement failure",
			repoErr:    errors.New("failed to insert user: Error 1146: Table 'userdb.users' doesn't exist"),
			wantStatus: 500,
		},
		{
			name:       "deadline exceeded",
			repoErr:    fmt.Errorf("failed to insert user: %w", context.DeadlineExceeded),
			wantStatus: 503,
		},
		{
			name:       "bad connection",
			repoErr:    fmt.Errorf("failed to insert user: %w", driver.ErrBadConn),
			wantStatus: 503,
		},
		{
			name:       "connection done",
			repoErr:    fmt.Errorf("failed to insert user: %w", sql.ErrConnDone),
			wantStatus: 503,
		},
		{
			name:       "mysql connection dropped mid-query",
			repoErr:    fmt.Errorf("failed to insert user: %w", mysql.ErrInvalidConn),
			wantStatus: 503,
		},
		{
			name: "dial refused",
			repoErr: fmt.Errorf("failed to insert user: %w", &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: errors.New("connect: connection refused"),
			}),
			wantStatus: 503,
		},
		{
			name:       "network timeout",
			repoErr:    fmt.Errorf("failed to insert user: %w", timeoutError{}),
			wantStatus: 503,
		},
		{
			name:       "duplicate entry",
			repoErr:    fmt.Errorf("failed to insert user: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}),
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo := setupTestService(t, Options{})
			mockRepo.On("Insert", mock.Anything, mock.Anything).Return(nil, tt.repoErr)

			resp, err := svc.Submit(context.Background(), SubmitRequest{Name: "Alice", Email: "alice@example.com"})

			assert.Nil(t, resp)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.repoErr)
			assert.Equal(t, tt.wantStatus, apperrors.AsHTTPError(err).HTTPStatus())
		})
	}
}
