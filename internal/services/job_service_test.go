package services

import (
	"testing"
	"time"

	"github.com/sjperalta/modular-erp-api/internal/jobs"
	"github.com/sjperalta/modular-erp-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taskRuns(svc *JobService, name string) int64 {
	for _, t := range svc.Tasks() {
		if t.Name == name {
			return t.Runs
		}
	}
	return -1
}

func TestJobService_ScheduleMaintenance(t *testing.T) {
	ledger := newLedgerFixture(t, FlipReversal{})
	auth := newAuthFixture(t, "active")
	invites := newInvitationFixture(t)
	defer invites.worker.Shutdown()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exportSvc := NewExportService(ledger.accounts, ledger.journal)

	worker := jobs.NewWorker(2)
	jobSvc := NewJobService(worker)
	svcs := &Services{
		Auth:       auth.svc,
		Recovery:   NewRecoveryService(auth.svc, newMockPasswordResetRepo(), invites.mailer, worker, time.Hour),
		Invitation: invites.svc,
		Journal:    ledger.journal,
		Export:     exportSvc,
		Report:     NewReportService(ledger.accounts, exportSvc, store, ""),
		Job:        jobSvc,
	}

	jobSvc.ScheduleMaintenance(svcs, 30*24*time.Hour)

	tasks := jobSvc.Tasks()
	require.Len(t, tasks, 4)
	assert.Equal(t, TaskExpireInvitations, tasks[0].Name)
	assert.Equal(t, "1h0m0s", tasks[0].Interval)

	require.NoError(t, jobSvc.Trigger(TaskTrialBalanceSnapshot))
	require.NoError(t, jobSvc.Trigger(TaskLedgerIntegrity))
	require.NoError(t, jobSvc.Trigger(TaskPruneSessions))

	assert.Eventually(t, func() bool {
		return taskRuns(jobSvc, TaskTrialBalanceSnapshot) == 1 &&
			taskRuns(jobSvc, TaskLedgerIntegrity) == 1 &&
			taskRuns(jobSvc, TaskPruneSessions) == 1
	}, 5*time.Second, 10*time.Millisecond)
	worker.Shutdown()

	for _, task := range jobSvc.Tasks() {
		assert.Zero(t, task.Failures, task.Name)
	}
	snapshots, err := store.List(SnapshotCategory)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)

	status := jobSvc.GetStatus()
	assert.Contains(t, status, "tasks")
}

func TestJobService_TriggerUnknownTask(t *testing.T) {
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()

	err := NewJobService(worker).Trigger("nope")

	assert.ErrorIs(t, err, ErrNotFound)
}
