package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahse-server/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)
	return store, mock
}

func recordColumns() []string {
	return []string{
		"id", "astronaut_id", "astronaut_name", "mission_type", "duration_days",
		"simulation_accuracy", "success_probability", "request_key", "result", "created_at",
	}
}

func TestNewPostgresStoreRequiresConnection(t *testing.T) {
	_, err := NewPostgresStore(nil)
	assert.Error(t, err)
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock := newMockStore(t)

	record := testRecord("sim-001")
	mock.ExpectExec("INSERT INTO simulations").
		WithArgs(
			record.ID, record.AstronautID, record.AstronautName, record.MissionType,
			record.DurationDays, record.SimulationAccuracy, record.SuccessProbability,
			record.RequestKey, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Save(context.Background(), record)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRequiresID(t *testing.T) {
	store, _ := newMockStore(t)

	err := store.Save(context.Background(), testRecord(""))

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newMockStore(t)

	want := testRecord("sim-001")
	payload, err := json.Marshal(want.Result)
	require.NoError(t, err)

	rows := sqlmock.NewRows(recordColumns()).AddRow(
		want.ID, want.AstronautID, want.AstronautName, want.MissionType,
		want.DurationDays, want.SimulationAccuracy, want.SuccessProbability,
		want.RequestKey, string(payload), time.Now().UTC(),
	)
	mock.ExpectQuery("SELECT (.+) FROM simulations").
		WithArgs("sim-001").
		WillReturnRows(rows)

	got, err := store.Get(context.Background(), "sim-001")

	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Result.RiskAssessment, got.Result.RiskAssessment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM simulations").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordColumns()))

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)

	payload, err := json.Marshal(testRecord("x").Result)
	require.NoError(t, err)

	rows := sqlmock.NewRows(recordColumns())
	for _, id := range []string{"sim-002", "sim-001"} {
		rows.AddRow(id, "a-001", "Test Astronaut", string(domain.MarsTransit),
			210, 0.82, 0.87, "", string(payload), time.Now().UTC())
	}
	mock.ExpectQuery("SELECT (.+) FROM simulations").
		WithArgs(10, 0).
		WillReturnRows(rows)

	records, err := store.List(context.Background(), 10, 0)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "sim-002", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountAndDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec("DELETE FROM simulations").
		WithArgs("sim-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	require.NoError(t, store.Delete(context.Background(), "sim-001"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM simulations").
		WithArgs("no-such-id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "no-such-id")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
