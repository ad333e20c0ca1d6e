package loans_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Gin_postgres_redis_loan_inventory/loans"
	"Gin_postgres_redis_loan_inventory/loans/loanstest"
	"Gin_postgres_redis_loan_inventory/models"
)

func Test_Dispatcher_DeliversEffects(t *testing.T) {
	recorder := &loanstest.Recorder{}
	files := &loanstest.Signatures{}
	url, err := files.Save(t.Context(), pngImage)
	require.NoError(t, err)

	d := loans.NewDispatcher(recorder, files, slog.New(slog.NewTextHandler(io.Discard, nil)), 16)
	d.Start(2)
	d.Audit(loans.AuditEntry{Action: models.AuditCreate, Table: models.LoanTable, RecordID: "l-1"})
	d.DeleteSignature(url)
	d.Close()

	entries := recorder.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "l-1", entries[0].RecordID)
	assert.False(t, files.Has(url))
}

func Test_Dispatcher_FailuresAreLoggedNotRaised(t *testing.T) {
	var logs bytes.Buffer
	recorder := &loanstest.Recorder{Err: errors.New("audit db down")}
	files := &loanstest.Signatures{DeleteErr: errors.New("permission denied")}

	d := loans.NewDispatcher(recorder, files, slog.New(slog.NewTextHandler(&logs, nil)), 16)
	d.Start(1)
	d.Audit(loans.AuditEntry{Action: models.AuditDelete, Table: models.LoanTable, RecordID: "l-9"})
	d.DeleteSignature("mem://signatures/1.png")
	d.Close()

	assert.Contains(t, logs.String(), "audit record failed")
	assert.Contains(t, logs.String(), "audit db down")
	assert.Contains(t, logs.String(), "signature delete failed")
}

func Test_Dispatcher_NeverBlocks(t *testing.T) {
	var logs bytes.Buffer
	d := loans.NewDispatcher(&loanstest.Recorder{}, &loanstest.Signatures{}, slog.New(slog.NewTextHandler(&logs, nil)), 1)

	// no workers: the second effect finds the queue full
	d.Audit(loans.AuditEntry{RecordID: "a"})
	d.Audit(loans.AuditEntry{RecordID: "b"})
	d.Close()
	d.Audit(loans.AuditEntry{RecordID: "c"})

	assert.Contains(t, logs.String(), "effect queue full")
	assert.Contains(t, logs.String(), "effect dropped after shutdown")
}

func Test_Service_WithDispatcher_AuditFailureDoesNotFailOperation(t *testing.T) {
	store := loanstest.NewStore()
	store.AddEmployee(models.Employee{ID: employeeID})
	store.AddAssetItem(models.AssetItem{ID: laptopID, Tag: "LAP-001"})
	d := loans.NewDispatcher(&loanstest.Recorder{Err: errors.New("boom")}, &loanstest.Signatures{},
		slog.New(slog.NewTextHandler(io.Discard, nil)), 64)
	d.Start(1)
	defer d.Close()
	svc := loans.NewService(store, &loanstest.Signatures{}, d)

	loan, err := svc.Open(t.Context(), employeeID, actorID)
	require.NoError(t, err)
	_, err = svc.AddLine(t.Context(), loan.ID, loans.LineSelector{AssetItemID: laptopID}, actorID)

	assert.NoError(t, err)
	it, _ := store.AssetItem(laptopID)
	assert.Equal(t, models.AssetLoaned, it.Status)
}
