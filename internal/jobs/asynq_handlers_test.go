package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockNotificationDeliverer struct {
	mock.Mock
}

func (m *MockNotificationDeliverer) Deliver(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func TestNewNotificationTask(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()

	task, err := NewNotificationTask(tenantID, id)
	require.NoError(t, err)
	assert.Equal(t, TypeNotificationSend, task.Type())

	var payload NotificationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, tenantID, payload.TenantID)
	assert.Equal(t, id, payload.NotificationID)
}

func TestNotificationHandler_ProcessTask(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	task, err := NewNotificationTask(tenantID, id)
	require.NoError(t, err)

	tests := []struct {
		name      string
		deliver   error
		wantErr   bool
		skipRetry bool
	}{
		{name: "delivered", deliver: nil},
		{name: "gateway failure is recorded, not retried by asynq", deliver: errors.New("smtp: 550")},
		{name: "missing log is skipped", deliver: pgx.ErrNoRows, wantErr: true, skipRetry: true},
		{name: "cancelled context is returned", deliver: context.Canceled, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deliverer := new(MockNotificationDeliverer)
			deliverer.On("Deliver", mock.Anything, tenantID, id).Return(tt.deliver)
			handler := NewNotificationHandler(deliverer, zap.NewNop())

			err := handler.ProcessTask(context.Background(), task)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
			deliverer.AssertExpectations(t)
		})
	}
}

func TestNotificationHandler_BadPayload(t *testing.T) {
	handler := NewNotificationHandler(new(MockNotificationDeliverer), zap.NewNop())

	err := handler.ProcessTask(context.Background(), asynq.NewTask(TypeNotificationSend, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}
