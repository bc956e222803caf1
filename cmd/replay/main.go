package main

import (
	"errors"
	"flag"
	"fmt"
	"math/big"
	"time"

	"unipool-ledger/config"
	"unipool-ledger/ledger"
	"unipool-ledger/models"
	"unipool-ledger/storage"

	"github.com/dogecoinw/doged/btcutil"
	"github.com/dogecoinw/doged/chaincfg"
	"github.com/jonboulle/clockwork"
)

// replayBook satisfies the engine's token collaborator during replay. The
// journal is the source of truth for amounts; the real balances already sit
// in the database, so the book only mirrors enough state for the engine's
// measured-delta and allowance checks to pass.
type replayBook struct {
	balances map[string]*big.Int
}

func newReplayBook() *replayBook {
	return &replayBook{balances: make(map[string]*big.Int)}
}

func (b *replayBook) get(addr string) *big.Int {
	if v, ok := b.balances[addr]; ok {
		return v
	}
	return big.NewInt(0)
}

func (b *replayBook) Transfer(from, to string, amt *big.Int, _ string) error {
	b.balances[from] = big.NewInt(0).Sub(b.get(from), amt)
	b.balances[to] = big.NewInt(0).Add(b.get(to), amt)
	return nil
}

func (b *replayBook) TransferWithFee(from, to string, net *big.Int, feeTo string, fee *big.Int, eventId string) error {
	if err := b.Transfer(from, to, net, eventId); err != nil {
		return err
	}
	return b.Transfer(from, feeTo, fee, eventId)
}

func (b *replayBook) TransferFrom(from, to string, amt *big.Int, eventId string) error {
	return b.Transfer(from, to, amt, eventId)
}

func (b *replayBook) Allowance(string, string) (*big.Int, error) {
	max := big.NewInt(0).Lsh(big.NewInt(1), 128)
	return max, nil
}

func (b *replayBook) BalanceOf(account string) (*big.Int, error) {
	return big.NewInt(0).Set(b.get(account)), nil
}

func main() {
	var (
		cfgFile   string
		batchSize int
	)
	flag.StringVar(&cfgFile, "config", "config.json", "config file path")
	flag.IntVar(&batchSize, "batch", 1000, "journal batch size")
	flag.Parse()

	var cfg config.Config
	config.LoadConfig(&cfg, cfgFile)

	var db *storage.DBClient
	if cfg.Sqlite.Switch {
		db = storage.NewSqliteClient(cfg.Sqlite)
	} else {
		db = storage.NewMysqlClient(cfg.Mysql)
	}
	_ = db.AutoMigrate()

	reserves, err := btcutil.NewAddressScriptHash([]byte(cfg.Pool.PoolId+"--POOL"), &chaincfg.MainNetParams)
	if err != nil {
		panic(err)
	}

	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	engine, err := ledger.NewEngine(ledger.Options{
		OwnerAddress:          cfg.Pool.OwnerAddress,
		TreasuryAddress:       cfg.Pool.TreasuryAddress,
		ReservesAddress:       reserves.String(),
		SlotLengthHours:       cfg.Pool.SlotLengthHours,
		WithdrawalFeeBps:      cfg.Pool.WithdrawalFeeBps,
		AdminClaimPeriodHours: cfg.Pool.AdminClaimPeriodHours,
		Token:                 newReplayBook(),
		Clock:                 clock,
	})
	if err != nil {
		panic(err)
	}

	currentHour := int64(0)
	replayed, skipped := 0, 0

	err = db.EventsInOrder(batchSize, func(ev *models.PoolEvent) error {
		if ev.HourStamp > currentHour {
			clock.Advance(time.Duration(ev.HourStamp-currentHour) * time.Hour)
			currentHour = ev.HourStamp
		}

		var opErr error
		switch ev.Op {
		case "deposit":
			_, opErr = engine.Deposit(ev.HolderAddress, ev.Amt.Int())
		case "withdraw":
			_, opErr = engine.Withdraw(ev.HolderAddress, ev.Amt.Int())
		case "distribute":
			_, opErr = engine.Distribute(cfg.Pool.OwnerAddress, ev.Amt.Int())
		case "claim":
			maxSlots := 0
			if view, err := engine.UserView(ev.HolderAddress); err == nil {
				maxSlots = ev.SlotIndex - view.LastClaimedSlot
			}
			if maxSlots > 0 {
				_, opErr = engine.Claim(ev.HolderAddress, maxSlots)
			} else {
				_, opErr = engine.ClaimAll(ev.HolderAddress)
			}
		case "admin_claim":
			_, opErr = engine.AdminClaimAll(cfg.Pool.OwnerAddress)
		case "set_treasury":
			_, opErr = engine.SetTreasuryWallet(cfg.Pool.OwnerAddress, ev.HolderAddress)
		case "update_slot_length":
			_, opErr = engine.UpdateSlotLength(cfg.Pool.OwnerAddress, ev.Amt.Int().Int64())
		case "propose_claim_period":
			_, opErr = engine.ProposeAdminClaimPeriod(cfg.Pool.OwnerAddress, ev.Amt.Int().Int64())
		case "set_withdrawal_fee":
			_, opErr = engine.SetWithdrawalFeeBps(cfg.Pool.OwnerAddress, ev.Amt.Int().Int64())
		default:
			skipped++
			return nil
		}

		if opErr != nil {
			if errors.Is(opErr, ledger.ErrNothingToClaim) {
				skipped++
				return nil
			}
			return fmt.Errorf("event %s (%s): %w", ev.EventId, ev.Op, opErr)
		}
		replayed++
		return nil
	})
	if err != nil {
		fmt.Println("replay error:", err)
		return
	}

	level := storage.NewLevelDB(cfg.LevelDB)
	defer level.Close()
	if err := level.SaveSnapshot(engine.Snapshot()); err != nil {
		fmt.Println("snapshot error:", err)
		return
	}

	fmt.Printf("replay done: %d events replayed, %d skipped\n", replayed, skipped)
}
