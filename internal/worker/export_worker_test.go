package worker

import (
	"context"
	"testing"
	"time"

	"despesas/internal/amqp"
	"despesas/internal/core"
	"despesas/internal/report"
	"despesas/internal/session"
	"despesas/internal/sheets/memory"
	"despesas/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkerFixture(t *testing.T) (*ExportWorker, *storage.Repository, *memory.Writer) {
	t.Helper()
	repo, err := storage.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	writer := memory.NewWriter()
	w := NewExportWorker(repo, writer, "Relatorio", report.DefaultLocale())
	return w, repo, writer
}

func seed(t *testing.T, repo *storage.Repository, userID, property, date string, fields map[string]int64, status core.Status) int64 {
	t.Helper()
	d, err := core.ParseDate(date)
	require.NoError(t, err)
	rec := core.Record{
		UserID:   userID,
		Property: property,
		Date:     d,
		Status:   status,
		Fields:   make(map[string]core.Money),
	}
	for k, cents := range fields {
		rec.Fields[k] = core.Money{Cents: cents}
	}
	id, err := repo.CreateRecord(context.Background(), rec)
	require.NoError(t, err)
	return id
}

func TestHandleExportRequest(t *testing.T) {
	w, repo, writer := newWorkerFixture(t)
	ctx := context.Background()

	seed(t, repo, "user-1", "Colina B1", "2025-03-10", map[string]int64{"luz": 15000}, core.StatusPaid)
	seed(t, repo, "user-1", "Colina B1", "2025-04-10", map[string]int64{"luz": 5000}, "")

	err := w.HandleExportRequest(ctx, &amqp.ExportRequestMessage{
		UserID:   "user-1",
		Property: "Colina B1",
	})
	require.NoError(t, err)

	rows := writer.Rows("Relatorio")
	require.Len(t, rows, 4) // header, two records, totals
	assert.Equal(t, "Data", rows[0][0])
	assert.Equal(t, "10/03/2025", rows[1][0])
	assert.Equal(t, "TOTAL GERAL", rows[3][0])
}

func TestHandleExportRequestWithRange(t *testing.T) {
	w, repo, writer := newWorkerFixture(t)
	ctx := context.Background()

	seed(t, repo, "user-1", "Colina B1", "2025-03-10", map[string]int64{"luz": 15000}, "")
	seed(t, repo, "user-1", "Colina B1", "2025-05-10", map[string]int64{"luz": 5000}, "")

	err := w.HandleExportRequest(ctx, &amqp.ExportRequestMessage{
		UserID:    "user-1",
		Property:  "Colina B1",
		StartDate: "2025-03-01",
		EndDate:   "2025-03-31",
	})
	require.NoError(t, err)

	rows := writer.Rows("Relatorio")
	require.Len(t, rows, 3) // header, one record, totals
}

func TestHandleExportRequestBadDateDropped(t *testing.T) {
	w, _, writer := newWorkerFixture(t)

	err := w.HandleExportRequest(context.Background(), &amqp.ExportRequestMessage{
		UserID:    "user-1",
		StartDate: "10/03/2025",
		EndDate:   "2025-03-31",
	})
	// Malformed requests must not be requeued.
	require.NoError(t, err)
	assert.Empty(t, writer.Rows("Relatorio"))
}

func TestHandleRecordCreated(t *testing.T) {
	w, repo, writer := newWorkerFixture(t)
	ctx := context.Background()

	id := seed(t, repo, "user-1", "Colina B1", "2025-03-10", map[string]int64{"luz": 15000, "agua": 2050}, core.StatusPaid)

	err := w.HandleRecordCreated(ctx, &amqp.RecordCreatedMessage{ID: id, UserID: "user-1"})
	require.NoError(t, err)

	rows := writer.Rows("Relatorio")
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"10/03/2025", "Colina B1", "Pago", "170,50"}, rows[0])
}

func TestHandleRecordCreatedMissingRecord(t *testing.T) {
	w, _, _ := newWorkerFixture(t)

	err := w.HandleRecordCreated(context.Background(), &amqp.RecordCreatedMessage{ID: 999, UserID: "user-1"})
	assert.Error(t, err)
}

func TestRunSessionSweeper(t *testing.T) {
	repo, err := storage.NewRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	guard := session.NewGuard(repo, time.Minute)
	ctx := context.Background()

	_, err = repo.CreateSession(ctx, "user-1", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		RunSessionSweeper(runCtx, guard, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		s, err := repo.ActiveSession(ctx, "user-1")
		return err == nil && s == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
