package router

import (
	"math/big"
	"testing"

	"unipool-ledger/config"
	"unipool-ledger/ledger"
	"unipool-ledger/metrics"
	"unipool-ledger/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*PoolRouter, *storage.DBClient) {
	t.Helper()
	dir := t.TempDir()
	dbc := storage.NewSqliteClient(config.SqliteConfig{Database: dir + "/pool.db"})
	require.NoError(t, dbc.AutoMigrate())
	level := storage.NewLevelDB(config.LevelDBConfig{Path: dir + "/level"})
	t.Cleanup(func() { _ = level.Close() })

	engine, err := ledger.NewEngine(ledger.Options{
		OwnerAddress:          "DOwner",
		TreasuryAddress:       "DTreasury",
		ReservesAddress:       "DReserves",
		SlotLengthHours:       720,
		AdminClaimPeriodHours: 8760,
		Token:                 storage.NewTokenBook(dbc, "UNIT"),
	})
	require.NoError(t, err)
	return NewPoolRouter(engine, dbc, level), dbc
}

func TestCommitCountsPersistenceFailures(t *testing.T) {
	r, dbc := newTestRouter(t)

	ev := &ledger.Event{
		Id:            "test-event",
		Op:            "deposit",
		HolderAddress: "DAlice",
		Amount:        big.NewInt(1),
		Fee:           big.NewInt(0),
		SlotIndex:     -1,
	}

	journalErrs := metrics.PoolPersistenceErrors.WithLabelValues("journal")
	before := testutil.ToFloat64(journalErrs)

	r.commit(ev)
	require.Equal(t, before, testutil.ToFloat64(journalErrs))

	events, total, err := r.dbc.FindEvents("", "", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "test-event", events[0].EventId)

	// A dead journal must show up on the persistence counter.
	sqlDB, err := dbc.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	r.commit(ev)
	require.Equal(t, before+1, testutil.ToFloat64(journalErrs))
}
