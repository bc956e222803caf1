package storage

import (
	"errors"
	"fmt"
	"math/big"

	"unipool-ledger/models"

	"github.com/dogecoinw/go-dogecoin/log"
	"gorm.io/gorm"
)

// TokenTransfer moves amt between holders inside the given transaction.
func (db *DBClient) TokenTransfer(tx *gorm.DB, tick, from, to string, amt *big.Int, eventId string) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	log.Info("storage", "Transfer", "start", "tick", tick, "from", from, "to", to, "amt", amt.String())

	if amt.Cmp(big.NewInt(0)) < 1 {
		return fmt.Errorf("transfer amt < 0")
	}

	if from == to {
		return fmt.Errorf("transfer from and to addresses are the same")
	}

	addFrom := &models.TokenCollectAddress{}
	err := tx.Where("tick = ? and holder_address = ?", tick, from).First(addFrom).Error
	if err != nil {
		return fmt.Errorf("transfer err: %s tick: %s from : %s", err.Error(), tick, from)
	}

	if amt.Cmp(addFrom.AmtSum.Int()) > 0 {
		return fmt.Errorf("insufficient balance : %s tick: %s from : %s  transfer : %s", addFrom.AmtSum.String(), tick, from, amt.String())
	}

	addTo := &models.TokenCollectAddress{}
	err = tx.Where("tick = ? and holder_address = ?", tick, to).First(addTo).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("transfer err: %s tick: %s to : %s", err.Error(), tick, to)
		}

		addTo.AmtSum = (*models.Number)(big.NewInt(0))
		addTo.Tick = tick
		addTo.HolderAddress = to
		err := tx.Create(addTo).Error
		if err != nil {
			return fmt.Errorf("transfer err: %s tick: %s to : %s", err.Error(), tick, to)
		}
	}

	sub := big.NewInt(0).Sub(addFrom.AmtSum.Int(), amt)
	add := big.NewInt(0).Add(addTo.AmtSum.Int(), amt)

	err = tx.Model(addFrom).Where("tick = ? and holder_address = ?", tick, from).Update("amt_sum", sub.String()).Error
	if err != nil {
		return fmt.Errorf("transfer err: %s tick: %s from : %s", err.Error(), tick, from)
	}

	err = tx.Model(addTo).Where("tick = ? and holder_address = ?", tick, to).Update("amt_sum", add.String()).Error
	if err != nil {
		return fmt.Errorf("transfer err: %s tick: %s to : %s", err.Error(), tick, to)
	}

	revert := &models.TokenRevert{
		Op:          "transfer",
		Tick:        tick,
		FromAddress: from,
		ToAddress:   to,
		Amt:         (*models.Number)(amt),
		EventId:     eventId,
	}
	return tx.Create(revert).Error
}

// TokenMint credits freshly issued tokens to a holder.
func (db *DBClient) TokenMint(tx *gorm.DB, tick, holder string, amt *big.Int, eventId string) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	log.Info("storage", "Mint", "start", "tick", tick, "holder", holder, "amt", amt.String())

	if amt.Cmp(big.NewInt(0)) < 1 {
		return fmt.Errorf("mint amt < 0")
	}

	add := &models.TokenCollectAddress{}
	err := tx.Where("tick = ? and holder_address = ?", tick, holder).First(add).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("mint err: %s tick: %s holder : %s", err.Error(), tick, holder)
		}
		add.AmtSum = (*models.Number)(amt)
		add.Tick = tick
		add.HolderAddress = holder
		if err := tx.Create(add).Error; err != nil {
			return fmt.Errorf("mint err: %s tick: %s holder : %s", err.Error(), tick, holder)
		}
	} else {
		sum := big.NewInt(0).Add(add.AmtSum.Int(), amt)
		err = tx.Model(add).Where("tick = ? and holder_address = ?", tick, holder).Update("amt_sum", sum.String()).Error
		if err != nil {
			return fmt.Errorf("mint err: %s tick: %s holder : %s", err.Error(), tick, holder)
		}
	}

	revert := &models.TokenRevert{
		Op:        "mint",
		Tick:      tick,
		ToAddress: holder,
		Amt:       (*models.Number)(amt),
		EventId:   eventId,
	}
	return tx.Create(revert).Error
}

// TokenApprove sets the spender allowance to exactly amt.
func (db *DBClient) TokenApprove(tx *gorm.DB, tick, holder, spender string, amt *big.Int, eventId string) error {
	db.lock.Lock()
	defer db.lock.Unlock()

	if amt.Sign() < 0 {
		return fmt.Errorf("approve amt < 0")
	}

	al := &models.TokenAllowance{}
	err := tx.Where("tick = ? and holder_address = ? and spender_address = ?", tick, holder, spender).First(al).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("approve err: %s tick: %s holder : %s", err.Error(), tick, holder)
		}
		al.Tick = tick
		al.HolderAddress = holder
		al.SpenderAddress = spender
		al.AmtSum = (*models.Number)(amt)
		if err := tx.Create(al).Error; err != nil {
			return fmt.Errorf("approve err: %s tick: %s holder : %s", err.Error(), tick, holder)
		}
	} else {
		err = tx.Model(al).
			Where("tick = ? and holder_address = ? and spender_address = ?", tick, holder, spender).
			Update("amt_sum", amt.String()).Error
		if err != nil {
			return fmt.Errorf("approve err: %s tick: %s holder : %s", err.Error(), tick, holder)
		}
	}

	revert := &models.TokenRevert{
		Op:          "approve",
		Tick:        tick,
		FromAddress: holder,
		ToAddress:   spender,
		Amt:         (*models.Number)(amt),
		EventId:     eventId,
	}
	return tx.Create(revert).Error
}

func (db *DBClient) TokenAllowance(tick, holder, spender string) (*big.Int, error) {
	al := &models.TokenAllowance{}
	err := db.DB.Where("tick = ? and holder_address = ? and spender_address = ?", tick, holder, spender).First(al).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return al.AmtSum.Int(), nil
}

func (db *DBClient) TokenBalance(tick, holder string) (*big.Int, error) {
	add := &models.TokenCollectAddress{}
	err := db.DB.Where("tick = ? and holder_address = ?", tick, holder).First(add).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return add.AmtSum.Int(), nil
}

// TokenBook binds the balance tables to one pool asset and satisfies the
// engine's token collaborator interface. Each call runs in its own
// transaction and commits or rolls back as a whole.
type TokenBook struct {
	dbc  *DBClient
	tick string
}

func NewTokenBook(dbc *DBClient, tick string) *TokenBook {
	return &TokenBook{dbc: dbc, tick: tick}
}

func (b *TokenBook) Transfer(from, to string, amt *big.Int, eventId string) error {
	tx := b.dbc.DB.Begin()
	if err := b.dbc.TokenTransfer(tx, b.tick, from, to, amt, eventId); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// TransferWithFee runs both payout legs in one transaction so a failed fee
// leg rolls the net leg back with it.
func (b *TokenBook) TransferWithFee(from, to string, net *big.Int, feeTo string, fee *big.Int, eventId string) error {
	tx := b.dbc.DB.Begin()
	if err := b.dbc.TokenTransfer(tx, b.tick, from, to, net, eventId); err != nil {
		tx.Rollback()
		return err
	}
	if fee.Sign() > 0 {
		if err := b.dbc.TokenTransfer(tx, b.tick, from, feeTo, fee, eventId); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

// TransferFrom moves amt from `from` to `to`, consuming the allowance
// `from` granted `to`.
func (b *TokenBook) TransferFrom(from, to string, amt *big.Int, eventId string) error {
	tx := b.dbc.DB.Begin()

	al := &models.TokenAllowance{}
	err := tx.Where("tick = ? and holder_address = ? and spender_address = ?", b.tick, from, to).First(al).Error
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("allowance err: tick: %s holder: %s spender: %s", b.tick, from, to)
	}
	if amt.Cmp(al.AmtSum.Int()) > 0 {
		tx.Rollback()
		return fmt.Errorf("insufficient allowance : %s tick: %s holder : %s  transfer : %s", al.AmtSum.String(), b.tick, from, amt.String())
	}

	remaining := big.NewInt(0).Sub(al.AmtSum.Int(), amt)
	err = tx.Model(al).
		Where("tick = ? and holder_address = ? and spender_address = ?", b.tick, from, to).
		Update("amt_sum", remaining.String()).Error
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := b.dbc.TokenTransfer(tx, b.tick, from, to, amt, eventId); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (b *TokenBook) Allowance(owner, spender string) (*big.Int, error) {
	return b.dbc.TokenAllowance(b.tick, owner, spender)
}

func (b *TokenBook) BalanceOf(account string) (*big.Int, error) {
	return b.dbc.TokenBalance(b.tick, account)
}
