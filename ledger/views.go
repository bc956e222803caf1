package ledger

import (
	"math/big"

	"unipool-ledger/models"
)

// SlotBounds returns the open slot's hour window.
func (e *Engine) SlotBounds() (start, end int64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentSlotStart, e.currentSlotEnd
}

func (e *Engine) TotalStaked() *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return big.NewInt(0).Set(e.totalStaked)
}

func (e *Engine) TotalCredits() *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return big.NewInt(0).Set(e.totalCredits)
}

func (e *Engine) HistoryList() []*models.SlotSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*models.SlotSnapshot, 0, e.history.Len())
	for i := 0; i < e.history.Len(); i++ {
		s, _ := e.history.Get(i)
		out = append(out, &models.SlotSnapshot{
			StartTime:              s.StartTime,
			EndTime:                s.EndTime,
			MonthlyProfit:          (*models.Number)(big.NewInt(0).Set(s.MonthlyProfit)),
			TotalCredits:           (*models.Number)(big.NewInt(0).Set(s.TotalCredits)),
			RemainingTokensToClaim: (*models.Number)(big.NewInt(0).Set(s.RemainingTokensToClaim)),
		})
	}
	return out
}

func (e *Engine) UserView(addr string) (*models.UserSnapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.users.Has(addr) {
		return nil, ErrNotRegistered
	}
	u := e.users.Get(addr)
	return &models.UserSnapshot{
		HolderAddress:        addr,
		Balance:              (*models.Number)(big.NewInt(0).Set(u.Balance)),
		ForecastedCredits:    (*models.Number)(big.NewInt(0).Set(u.ForecastedCredits)),
		LastUpdatedTimestamp: u.LastUpdatedTimestamp,
		LastClaimedTimestamp: u.LastClaimedTimestamp,
		LastClaimedSlot:      u.LastClaimedSlot,
	}, nil
}

// Members returns one page of the registered holder list plus the total
// count.
func (e *Engine) Members(offset, limit int) ([]string, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	all := e.users.Members()
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []string{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total
}

// PendingReward previews what a claim over the whole history would pay
// right now, without mutating anything. Zero means a claim would fail.
func (e *Engine) PendingReward(addr string) *big.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := big.NewInt(0)
	if !e.users.Has(addr) || e.history.Len() == 0 {
		return total
	}
	u := e.users.Get(addr)
	if e.currentSlotStart <= u.LastClaimedTimestamp {
		return total
	}
	claims, _ := e.planClaims(u, e.history.Len())
	for _, c := range claims {
		total = total.Add(total, c.amount)
	}
	return total
}

// Config returns the live configuration, including a still-pending claim
// period proposal and the hour it becomes committable.
func (e *Engine) Config() *models.PoolConfigView {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v := &models.PoolConfigView{
		TreasuryAddress:       e.treasury,
		ReservesAddress:       e.reserves,
		SlotLengthHours:       e.slotLengthHours,
		WithdrawalFeeBps:      e.withdrawalFeeBps,
		AdminClaimPeriodHours: e.adminClaimPeriodHours,
	}
	if e.proposedClaimPeriod != 0 {
		v.PendingClaimPeriod = e.proposedClaimPeriod
		v.EffectiveHour = e.proposedAtHour + claimPeriodTimelockHours
	}
	return v
}

// Snapshot captures the whole engine state for the durable store.
func (e *Engine) Snapshot() *models.PoolSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := &models.PoolSnapshot{
		OwnerAddress:          e.owner,
		TreasuryAddress:       e.treasury,
		ReservesAddress:       e.reserves,
		SlotLengthHours:       e.slotLengthHours,
		CurrentSlotStart:      e.currentSlotStart,
		CurrentSlotEnd:        e.currentSlotEnd,
		TotalStaked:           (*models.Number)(big.NewInt(0).Set(e.totalStaked)),
		TotalCredits:          (*models.Number)(big.NewInt(0).Set(e.totalCredits)),
		WithdrawalFeeBps:      e.withdrawalFeeBps,
		AdminClaimPeriodHours: e.adminClaimPeriodHours,
		ProposedClaimPeriod:   e.proposedClaimPeriod,
		ProposedAtHour:        e.proposedAtHour,
		AdminLastClaimedSlot:  e.adminLastClaimedSlot,
	}

	for _, addr := range e.users.Members() {
		u := e.users.Get(addr)
		snap.Users = append(snap.Users, &models.UserSnapshot{
			HolderAddress:        addr,
			Balance:              (*models.Number)(big.NewInt(0).Set(u.Balance)),
			ForecastedCredits:    (*models.Number)(big.NewInt(0).Set(u.ForecastedCredits)),
			LastUpdatedTimestamp: u.LastUpdatedTimestamp,
			LastClaimedTimestamp: u.LastClaimedTimestamp,
			LastClaimedSlot:      u.LastClaimedSlot,
		})
	}
	for i := 0; i < e.history.Len(); i++ {
		s, _ := e.history.Get(i)
		snap.History = append(snap.History, &models.SlotSnapshot{
			StartTime:              s.StartTime,
			EndTime:                s.EndTime,
			MonthlyProfit:          (*models.Number)(big.NewInt(0).Set(s.MonthlyProfit)),
			TotalCredits:           (*models.Number)(big.NewInt(0).Set(s.TotalCredits)),
			RemainingTokensToClaim: (*models.Number)(big.NewInt(0).Set(s.RemainingTokensToClaim)),
		})
	}
	return snap
}

// Restore replaces the engine state with a snapshot loaded from the durable
// store. Called at boot before the HTTP surface is up.
func (e *Engine) Restore(snap *models.PoolSnapshot) error {
	if err := e.begin(); err != nil {
		return err
	}
	defer e.end()

	e.owner = snap.OwnerAddress
	e.treasury = snap.TreasuryAddress
	e.reserves = snap.ReservesAddress
	e.slotLengthHours = snap.SlotLengthHours
	e.currentSlotStart = snap.CurrentSlotStart
	e.currentSlotEnd = snap.CurrentSlotEnd
	e.totalStaked = big.NewInt(0).Set(snap.TotalStaked.Int())
	e.totalCredits = big.NewInt(0).Set(snap.TotalCredits.Int())
	e.withdrawalFeeBps = snap.WithdrawalFeeBps
	e.adminClaimPeriodHours = snap.AdminClaimPeriodHours
	e.proposedClaimPeriod = snap.ProposedClaimPeriod
	e.proposedAtHour = snap.ProposedAtHour
	e.adminLastClaimedSlot = snap.AdminLastClaimedSlot

	e.users = NewRegistry()
	for _, us := range snap.Users {
		u := &User{
			Balance:              big.NewInt(0).Set(us.Balance.Int()),
			ForecastedCredits:    big.NewInt(0).Set(us.ForecastedCredits.Int()),
			LastUpdatedTimestamp: us.LastUpdatedTimestamp,
			LastClaimedTimestamp: us.LastClaimedTimestamp,
			LastClaimedSlot:      us.LastClaimedSlot,
		}
		e.users.Register(us.HolderAddress, u)
	}

	e.history = NewHistory()
	for _, ss := range snap.History {
		e.history.Append(&Slot{
			StartTime:              ss.StartTime,
			EndTime:                ss.EndTime,
			MonthlyProfit:          big.NewInt(0).Set(ss.MonthlyProfit.Int()),
			TotalCredits:           big.NewInt(0).Set(ss.TotalCredits.Int()),
			RemainingTokensToClaim: big.NewInt(0).Set(ss.RemainingTokensToClaim.Int()),
		})
	}
	return nil
}
