package repository

import (
	"context"
	"testing"

	"pvedeploy/internal/model"
	"pvedeploy/pkg/log"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewRepository(log.NewNop(), db, nil, nil), mock
}

func TestDeploymentRepository_Create(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewDeploymentRepository(r)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `deployment`").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	dep := &model.Deployment{VmName: "web-01", Status: model.DeploymentStatusCreating}
	require.NoError(t, repo.Create(context.Background(), dep))
	assert.Equal(t, int64(7), dep.Id)
	assert.False(t, dep.CreateTime.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentRepository_GetByID(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewDeploymentRepository(r)

	rows := sqlmock.NewRows([]string{"id", "vm_name", "vmid", "status"}).
		AddRow(1, "web-01", 120, "running")
	mock.ExpectQuery("SELECT \\* FROM `deployment` WHERE id = \\?").WillReturnRows(rows)

	dep, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, dep)
	assert.Equal(t, "web-01", dep.VmName)
	assert.Equal(t, uint32(120), dep.VMID)
	assert.Equal(t, model.DeploymentStatusRunning, dep.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentRepository_GetByID_NotFound(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewDeploymentRepository(r)

	mock.ExpectQuery("SELECT \\* FROM `deployment` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	dep, err := repo.GetByID(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, dep)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentRepository_UpdateProgress(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewDeploymentRepository(r)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `deployment` SET .*`status_message`=\\?.*WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	vmid := uint32(120)
	err := repo.UpdateProgress(context.Background(), 1, ProgressUpdate{
		StatusMessage: "Allocating VM ID...",
		VMID:          &vmid,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentRepository_Delete(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewDeploymentRepository(r)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `deployment` WHERE id = \\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPveNodeRepository_Upsert_SameHashOnlyTouches(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewPveNodeRepository(r)

	mock.ExpectQuery("SELECT id, resource_hash FROM `pve_node`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource_hash"}).AddRow(3, "abc"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `pve_node` SET `last_sync_time`=\\?").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	node := &model.PveNode{NodeName: "pve1", ClusterID: 1, ResourceHash: "abc"}
	require.NoError(t, repo.Upsert(context.Background(), node))
	assert.Equal(t, int64(3), node.Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPveNodeRepository_Upsert_NewNodeCreates(t *testing.T) {
	r, mock := setupRepository(t)
	repo := NewPveNodeRepository(r)

	mock.ExpectQuery("SELECT id, resource_hash FROM `pve_node`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource_hash"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `pve_node`").WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	node := &model.PveNode{NodeName: "pve2", ClusterID: 1, ResourceHash: "def"}
	require.NoError(t, repo.Upsert(context.Background(), node))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeploymentEventRepository_NoopWithoutMongo(t *testing.T) {
	r, _ := setupRepository(t)
	repo := NewDeploymentEventRepository(r)

	assert.NoError(t, repo.Append(context.Background(), &model.DeploymentEvent{DeploymentID: 1}))
	events, err := repo.ListByDeployment(context.Background(), 1, "")
	assert.NoError(t, err)
	assert.Empty(t, events)
}
