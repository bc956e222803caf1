package storage

import (
	"math/big"
	"testing"

	"unipool-ledger/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testTick = "UNIT"

func newTestBook(t *testing.T) (*DBClient, *TokenBook) {
	t.Helper()
	dbc := NewSqliteClient(config.SqliteConfig{Database: t.TempDir() + "/pool.db"})
	require.NoError(t, dbc.AutoMigrate())
	return dbc, NewTokenBook(dbc, testTick)
}

func mintT(t *testing.T, dbc *DBClient, holder string, amt int64) {
	t.Helper()
	tx := dbc.DB.Begin()
	require.NoError(t, dbc.TokenMint(tx, testTick, holder, big.NewInt(amt), uuid.NewString()))
	require.NoError(t, tx.Commit().Error)
}

func TestTokenMintAndBalance(t *testing.T) {
	dbc, book := newTestBook(t)

	bal, err := book.BalanceOf("DAlice")
	require.NoError(t, err)
	require.Equal(t, "0", bal.String())

	mintT(t, dbc, "DAlice", 100)
	mintT(t, dbc, "DAlice", 50)

	bal, err = book.BalanceOf("DAlice")
	require.NoError(t, err)
	require.Equal(t, "150", bal.String())
}

func TestTokenTransfer(t *testing.T) {
	dbc, book := newTestBook(t)
	mintT(t, dbc, "DAlice", 100)

	require.NoError(t, book.Transfer("DAlice", "DBob", big.NewInt(60), uuid.NewString()))

	aliceBal, err := book.BalanceOf("DAlice")
	require.NoError(t, err)
	require.Equal(t, "40", aliceBal.String())
	bobBal, err := book.BalanceOf("DBob")
	require.NoError(t, err)
	require.Equal(t, "60", bobBal.String())

	// Overdraft rolls back without touching either balance.
	err = book.Transfer("DAlice", "DBob", big.NewInt(41), uuid.NewString())
	require.Error(t, err)
	aliceBal, err = book.BalanceOf("DAlice")
	require.NoError(t, err)
	require.Equal(t, "40", aliceBal.String())
}

func TestTokenTransferWithFeeIsAtomic(t *testing.T) {
	dbc, book := newTestBook(t)
	mintT(t, dbc, "DAlice", 100)

	require.NoError(t, book.TransferWithFee("DAlice", "DBob", big.NewInt(60), "DTreasury", big.NewInt(40), uuid.NewString()))
	for holder, want := range map[string]string{"DAlice": "0", "DBob": "60", "DTreasury": "40"} {
		bal, err := book.BalanceOf(holder)
		require.NoError(t, err)
		require.Equal(t, want, bal.String())
	}

	// The fee leg overdraws, so the already-applied net leg must roll back
	// with it.
	mintT(t, dbc, "DCarol", 100)
	err := book.TransferWithFee("DCarol", "DBob", big.NewInt(90), "DTreasury", big.NewInt(20), uuid.NewString())
	require.Error(t, err)
	for holder, want := range map[string]string{"DCarol": "100", "DBob": "60", "DTreasury": "40"} {
		bal, err := book.BalanceOf(holder)
		require.NoError(t, err)
		require.Equal(t, want, bal.String())
	}
}

func TestTokenTransferFromConsumesAllowance(t *testing.T) {
	dbc, book := newTestBook(t)
	mintT(t, dbc, "DAlice", 100)

	// No allowance granted yet.
	err := book.TransferFrom("DAlice", "DPool", big.NewInt(10), uuid.NewString())
	require.Error(t, err)

	tx := dbc.DB.Begin()
	require.NoError(t, dbc.TokenApprove(tx, testTick, "DAlice", "DPool", big.NewInt(70), uuid.NewString()))
	require.NoError(t, tx.Commit().Error)

	require.NoError(t, book.TransferFrom("DAlice", "DPool", big.NewInt(50), uuid.NewString()))

	al, err := book.Allowance("DAlice", "DPool")
	require.NoError(t, err)
	require.Equal(t, "20", al.String())
	poolBal, err := book.BalanceOf("DPool")
	require.NoError(t, err)
	require.Equal(t, "50", poolBal.String())

	// The remaining allowance caps further pulls.
	err = book.TransferFrom("DAlice", "DPool", big.NewInt(21), uuid.NewString())
	require.Error(t, err)
	al, err = book.Allowance("DAlice", "DPool")
	require.NoError(t, err)
	require.Equal(t, "20", al.String())
}

func TestTokenApproveOverwrites(t *testing.T) {
	dbc, book := newTestBook(t)

	tx := dbc.DB.Begin()
	require.NoError(t, dbc.TokenApprove(tx, testTick, "DAlice", "DPool", big.NewInt(30), uuid.NewString()))
	require.NoError(t, dbc.TokenApprove(tx, testTick, "DAlice", "DPool", big.NewInt(5), uuid.NewString()))
	require.NoError(t, tx.Commit().Error)

	al, err := book.Allowance("DAlice", "DPool")
	require.NoError(t, err)
	require.Equal(t, "5", al.String())
}
