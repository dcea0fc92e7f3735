package job

import (
	"context"
	"errors"
	"testing"

	mock_service "pvedeploy/internal/mocks/service"
	"pvedeploy/pkg/log"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestDeploymentJob_PurgeProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mock_service.NewMockDeploymentService(ctrl)
	svc.EXPECT().PurgeProgress(gomock.Any()).Return(3)

	j := NewDeploymentJob(NewJob(log.NewNop()), svc)
	assert.NoError(t, j.PurgeProgress(context.Background()))
}

func TestDeploymentJob_AuditTemplatesPropagatesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mock_service.NewMockDeploymentService(ctrl)
	boom := errors.New("audit lab: connection refused")
	svc.EXPECT().AuditTemplates(gomock.Any()).Return(boom)

	j := NewDeploymentJob(NewJob(log.NewNop()), svc)
	assert.Same(t, boom, j.AuditTemplates(context.Background()))
}

func TestDeploymentJob_RecoverInterrupted(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mock_service.NewMockDeploymentService(ctrl)
	svc.EXPECT().RecoverInterrupted(gomock.Any()).Return(2, nil)
	svc.EXPECT().RecoverInterrupted(gomock.Any()).Return(0, errors.New("database is locked"))

	j := NewDeploymentJob(NewJob(log.NewNop()), svc)
	assert.NoError(t, j.RecoverInterrupted(context.Background()))
	assert.EqualError(t, j.RecoverInterrupted(context.Background()), "database is locked")
}
