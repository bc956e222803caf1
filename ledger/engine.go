package ledger

import (
	"bytes"
	"fmt"
	"math/big"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dogecoinw/go-dogecoin/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	// Withdrawal fee ceiling, in basis points of the gross amount.
	MaxWithdrawalFeeBps = 500

	// Delay before a proposed admin claim period may be committed. The
	// commit itself is folded into the next admin reclaim call.
	claimPeriodTimelockHours = 168
)

// Event describes one successful mutating call, ready to be journaled.
type Event struct {
	Id            string
	Op            string
	HolderAddress string
	Amount        *big.Int
	Fee           *big.Int
	SlotIndex     int
	Hour          int64
}

// Options configures a fresh pool engine.
type Options struct {
	OwnerAddress          string
	TreasuryAddress       string
	ReservesAddress       string
	SlotLengthHours       int64
	WithdrawalFeeBps      int64
	AdminClaimPeriodHours int64
	Token                 TokenBook
	Clock                 clockwork.Clock
}

// Engine orchestrates deposits, withdrawals, slot-closing distributions,
// claims and admin reclamation over the user registry and slot history.
// Nothing else mutates either. Every mutating call is all-or-nothing:
// validation and claim computation happen before any state change, and the
// token collaborator is invoked before totals are committed.
type Engine struct {
	mu     sync.RWMutex
	holder atomic.Uint64

	clock clockwork.Clock
	token TokenBook

	owner    string
	treasury string
	reserves string

	slotLengthHours  int64
	currentSlotStart int64
	currentSlotEnd   int64
	totalStaked      *big.Int
	totalCredits     *big.Int

	withdrawalFeeBps      int64
	adminClaimPeriodHours int64
	proposedClaimPeriod   int64
	proposedAtHour        int64
	adminLastClaimedSlot  int

	users   *Registry
	history *History
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.OwnerAddress == "" || opts.TreasuryAddress == "" || opts.ReservesAddress == "" {
		return nil, ErrZeroAddress
	}
	if opts.SlotLengthHours <= 0 {
		return nil, ErrInvalidSlotLength
	}
	if opts.AdminClaimPeriodHours <= 0 {
		return nil, ErrInvalidClaimPeriod
	}
	if opts.WithdrawalFeeBps < 0 || opts.WithdrawalFeeBps > MaxWithdrawalFeeBps {
		return nil, ErrFeeTooHigh
	}
	if opts.Token == nil {
		return nil, fmt.Errorf("token book is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	e := &Engine{
		clock:                 opts.Clock,
		token:                 opts.Token,
		owner:                 opts.OwnerAddress,
		treasury:              opts.TreasuryAddress,
		reserves:              opts.ReservesAddress,
		slotLengthHours:       opts.SlotLengthHours,
		withdrawalFeeBps:      opts.WithdrawalFeeBps,
		adminClaimPeriodHours: opts.AdminClaimPeriodHours,
		adminLastClaimedSlot:  -1,
		totalStaked:           big.NewInt(0),
		totalCredits:          big.NewInt(0),
		users:                 NewRegistry(),
		history:               NewHistory(),
	}
	e.currentSlotStart = e.nowHours()
	e.currentSlotEnd = e.currentSlotStart + e.slotLengthHours
	return e, nil
}

func (e *Engine) nowHours() int64 {
	return e.clock.Now().Unix() / 3600
}

// goroutineID parses the current goroutine id out of the runtime stack
// header ("goroutine N [...").
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}
	id, _ := strconv.ParseUint(string(b[:i]), 10, 64)
	return id
}

// begin takes the engine write lock. A mutating call arriving from a token
// callback runs on the goroutine that already holds the lock; it fails
// closed with ErrReentrantCall instead of deadlocking, while calls from
// other goroutines queue on the lock as usual.
func (e *Engine) begin() error {
	id := goroutineID()
	if e.holder.Load() == id {
		return ErrReentrantCall
	}
	e.mu.Lock()
	e.holder.Store(id)
	return nil
}

func (e *Engine) end() {
	e.holder.Store(0)
	e.mu.Unlock()
}

func (e *Engine) requireActive(now int64) error {
	if now < e.currentSlotStart || now > e.currentSlotEnd {
		return ErrSlotNotActive
	}
	return nil
}

func (e *Engine) requireHold(now int64) error {
	if now <= e.currentSlotEnd {
		return ErrSlotNotEnded
	}
	return nil
}

func (e *Engine) requireOwner(caller string) error {
	if caller != e.owner {
		return ErrNotOwner
	}
	return nil
}

// hasPendingClaim reports whether the holder still owes themselves a claim
// for an already-closed slot. Positions may not change across a slot
// boundary that has not been settled.
func (e *Engine) hasPendingClaim(u *User) bool {
	if e.history.Len() == 0 {
		return false
	}
	if u.Balance.Sign() == 0 && u.ForecastedCredits.Sign() == 0 {
		return false
	}
	last := e.history.Last()
	return u.LastClaimedTimestamp <= last.EndTime || u.LastClaimedSlot != e.history.Len()-1
}

// Deposit pulls amount from the participant into the pool reserves and
// accrues credits for the remainder of the open slot. The credited amount is
// the measured reserve balance delta, so fee-on-transfer tokens stay
// consistent with the ledger.
func (e *Engine) Deposit(participant string, amount *big.Int) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if participant == "" {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	now := e.nowHours()
	if err := e.requireActive(now); err != nil {
		return nil, err
	}

	u := e.users.Get(participant)
	if e.hasPendingClaim(u) {
		return nil, ErrPendingClaim
	}

	allowance, err := e.token.Allowance(participant, e.reserves)
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	if allowance.Cmp(amount) < 0 {
		return nil, ErrInsufficientAllowance
	}

	eventId := uuid.New().String()

	before, err := e.token.BalanceOf(e.reserves)
	if err != nil {
		return nil, fmt.Errorf("balance of reserves: %w", err)
	}
	if err := e.token.TransferFrom(participant, e.reserves, amount, eventId); err != nil {
		return nil, fmt.Errorf("deposit transfer: %w", err)
	}
	after, err := e.token.BalanceOf(e.reserves)
	if err != nil {
		return nil, fmt.Errorf("balance of reserves: %w", err)
	}

	received := big.NewInt(0).Sub(after, before)
	if received.Sign() <= 0 {
		return nil, fmt.Errorf("deposit transfer: no tokens received")
	}

	if !e.users.Has(participant) {
		u.LastClaimedSlot = e.history.Len() - 1
		u.LastClaimedTimestamp = now
		e.users.Register(participant, u)
	}

	added := Accrue(received, e.currentSlotEnd-now)
	u.ForecastedCredits = big.NewInt(0).Add(u.ForecastedCredits, added)
	u.Balance = big.NewInt(0).Add(u.Balance, received)
	u.LastUpdatedTimestamp = now
	e.totalCredits = big.NewInt(0).Add(e.totalCredits, added)
	e.totalStaked = big.NewInt(0).Add(e.totalStaked, received)
	e.users.Upsert(participant, u)

	log.Info("ledger", "op", "deposit", "holder", participant, "amt", received.String(), "credits", added.String())
	return &Event{Id: eventId, Op: "deposit", HolderAddress: participant, Amount: received, Fee: big.NewInt(0), SlotIndex: -1, Hour: now}, nil
}

// Withdraw releases amount back to the participant minus the treasury fee.
// A position drained to zero balance and zero credits leaves the registry.
func (e *Engine) Withdraw(participant string, amount *big.Int) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if participant == "" {
		return nil, ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	now := e.nowHours()
	if err := e.requireActive(now); err != nil {
		return nil, err
	}
	if !e.users.Has(participant) {
		return nil, ErrNotRegistered
	}

	u := e.users.Get(participant)
	if amount.Cmp(u.Balance) > 0 {
		return nil, ErrInsufficientBalance
	}
	if e.hasPendingClaim(u) {
		return nil, ErrPendingClaim
	}

	lost := Accrue(amount, e.currentSlotEnd-now)
	newCredits, err := CheckedSub(u.ForecastedCredits, lost)
	if err != nil {
		return nil, fmt.Errorf("forecasted credits: %w", err)
	}
	newTotalCredits, err := CheckedSub(e.totalCredits, lost)
	if err != nil {
		return nil, fmt.Errorf("total credits: %w", err)
	}
	newBalance, err := CheckedSub(u.Balance, amount)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}
	newTotalStaked, err := CheckedSub(e.totalStaked, amount)
	if err != nil {
		return nil, fmt.Errorf("total staked: %w", err)
	}

	fee := big.NewInt(0).Div(big.NewInt(0).Mul(amount, big.NewInt(e.withdrawalFeeBps)), big.NewInt(10000))
	net := big.NewInt(0).Sub(amount, fee)

	reserve, err := e.token.BalanceOf(e.reserves)
	if err != nil {
		return nil, fmt.Errorf("balance of reserves: %w", err)
	}
	if reserve.Cmp(amount) < 0 {
		return nil, fmt.Errorf("reserves below withdrawal: %w", ErrInsufficientBalance)
	}

	eventId := uuid.New().String()
	if fee.Sign() > 0 {
		if err := e.token.TransferWithFee(e.reserves, participant, net, e.treasury, fee, eventId); err != nil {
			return nil, fmt.Errorf("withdraw transfer: %w", err)
		}
	} else {
		if err := e.token.Transfer(e.reserves, participant, net, eventId); err != nil {
			return nil, fmt.Errorf("withdraw transfer: %w", err)
		}
	}

	u.ForecastedCredits = newCredits
	u.Balance = newBalance
	u.LastUpdatedTimestamp = now
	e.totalCredits = newTotalCredits
	e.totalStaked = newTotalStaked

	if u.Balance.Sign() == 0 && u.ForecastedCredits.Sign() == 0 {
		e.users.Remove(participant)
	} else {
		e.users.Upsert(participant, u)
	}

	log.Info("ledger", "op", "withdraw", "holder", participant, "amt", amount.String(), "fee", fee.String())
	return &Event{Id: eventId, Op: "withdraw", HolderAddress: participant, Amount: amount, Fee: fee, SlotIndex: -1, Hour: now}, nil
}

// Distribute closes the expired slot with poolAmount of profit pulled from
// the owner, then opens the next slot. It is the only transition out of the
// Hold state. Every staked balance restarts the new slot with full-duration
// credit, so the global total is recomputed from totalStaked.
func (e *Engine) Distribute(caller string, poolAmount *big.Int) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	if poolAmount == nil || poolAmount.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	now := e.nowHours()
	if err := e.requireHold(now); err != nil {
		return nil, err
	}

	allowance, err := e.token.Allowance(e.owner, e.reserves)
	if err != nil {
		return nil, fmt.Errorf("allowance: %w", err)
	}
	if allowance.Cmp(poolAmount) < 0 {
		return nil, ErrInsufficientAllowance
	}

	eventId := uuid.New().String()
	if err := e.token.TransferFrom(e.owner, e.reserves, poolAmount, eventId); err != nil {
		return nil, fmt.Errorf("pool transfer: %w", err)
	}

	idx := e.history.Append(&Slot{
		StartTime:              e.currentSlotStart,
		EndTime:                e.currentSlotEnd,
		MonthlyProfit:          big.NewInt(0).Set(poolAmount),
		TotalCredits:           big.NewInt(0).Set(e.totalCredits),
		RemainingTokensToClaim: big.NewInt(0).Set(poolAmount),
	})

	e.currentSlotStart = e.currentSlotEnd
	e.currentSlotEnd = e.currentSlotStart + e.slotLengthHours
	e.totalCredits = Accrue(e.totalStaked, e.slotLengthHours)

	log.Info("ledger", "op", "distribute", "slot", idx, "profit", poolAmount.String(), "credits", e.totalCredits.String())
	return &Event{Id: eventId, Op: "distribute", HolderAddress: caller, Amount: poolAmount, Fee: big.NewInt(0), SlotIndex: idx, Hour: now}, nil
}

type slotClaim struct {
	index  int
	amount *big.Int
}

// Claim pays the participant their pro-rata share of up to maxSlots closed
// slots they have not settled yet. ClaimAll covers the whole history.
func (e *Engine) Claim(participant string, maxSlots int) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()
	return e.claim(participant, maxSlots)
}

func (e *Engine) ClaimAll(participant string) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()
	return e.claim(participant, e.history.Len())
}

func (e *Engine) claim(participant string, maxSlots int) (*Event, error) {
	if participant == "" {
		return nil, ErrZeroAddress
	}
	if maxSlots <= 0 {
		return nil, ErrZeroAmount
	}

	now := e.nowHours()
	if err := e.requireActive(now); err != nil {
		return nil, err
	}
	if !e.users.Has(participant) {
		return nil, ErrNotRegistered
	}
	if e.history.Len() == 0 {
		return nil, ErrNothingToClaim
	}

	u := e.users.Get(participant)
	if e.currentSlotStart <= u.LastClaimedTimestamp {
		return nil, ErrAlreadyClaimed
	}

	claims, lastScanned := e.planClaims(u, maxSlots)

	totalClaim := big.NewInt(0)
	for _, c := range claims {
		totalClaim = totalClaim.Add(totalClaim, c.amount)
	}
	if totalClaim.Sign() == 0 {
		return nil, ErrNothingToClaim
	}

	eventId := uuid.New().String()
	if err := e.token.Transfer(e.reserves, participant, totalClaim, eventId); err != nil {
		return nil, fmt.Errorf("claim transfer: %w", err)
	}

	for _, c := range claims {
		if err := e.history.DecrementRemaining(c.index, c.amount); err != nil {
			return nil, err
		}
	}

	u.LastClaimedSlot = lastScanned
	u.LastClaimedTimestamp = now
	u.ForecastedCredits = Accrue(u.Balance, e.currentSlotEnd-e.currentSlotStart)
	e.users.Upsert(participant, u)

	log.Info("ledger", "op", "claim", "holder", participant, "amt", totalClaim.String(), "slot", lastScanned)
	return &Event{Id: eventId, Op: "claim", HolderAddress: participant, Amount: totalClaim, Fee: big.NewInt(0), SlotIndex: lastScanned, Hour: now}, nil
}

// planClaims computes per-slot payouts without mutating anything. The fast
// path settles just the newest closed slot using the live forecasted
// credits, which still reflect that slot's full window. The multi-slot path
// reconstructs per-entry credits: the live forecast when the entry opened at
// or before the last claim, otherwise balance held for the entry's full
// window.
func (e *Engine) planClaims(u *User, maxSlots int) ([]slotClaim, int) {
	last := e.history.Last()
	lastIdx := e.history.Len() - 1

	if e.history.Len() == 1 || u.LastClaimedTimestamp >= last.StartTime {
		amt := ProRataClaim(u.ForecastedCredits, last.TotalCredits, last.MonthlyProfit)
		if amt.Cmp(last.RemainingTokensToClaim) > 0 {
			amt = big.NewInt(0).Set(last.RemainingTokensToClaim)
		}
		if amt.Sign() == 0 {
			return nil, lastIdx
		}
		return []slotClaim{{index: lastIdx, amount: amt}}, lastIdx
	}

	from := u.LastClaimedSlot + 1
	to := from + maxSlots
	if to > e.history.Len() {
		to = e.history.Len()
	}

	var claims []slotClaim
	for i := from; i < to; i++ {
		entry, err := e.history.Get(i)
		if err != nil {
			break
		}
		if entry.EndTime < u.LastClaimedTimestamp {
			continue
		}
		if entry.TotalCredits.Sign() == 0 || entry.RemainingTokensToClaim.Sign() == 0 {
			continue
		}

		credits := u.ForecastedCredits
		if entry.StartTime > u.LastClaimedTimestamp {
			credits = Accrue(u.Balance, entry.EndTime-entry.StartTime)
		}

		amt := ProRataClaim(credits, entry.TotalCredits, entry.MonthlyProfit)
		if amt.Cmp(entry.RemainingTokensToClaim) > 0 {
			amt = big.NewInt(0).Set(entry.RemainingTokensToClaim)
		}
		if amt.Sign() > 0 {
			claims = append(claims, slotClaim{index: i, amount: amt})
		}
	}
	return claims, to - 1
}

// AdminClaim sweeps the remaining tokens of closed slots whose claim window
// has fully elapsed. A matured claim-period proposal is committed first, so
// the timelock needs no scheduler. AdminClaimAll covers the whole history.
func (e *Engine) AdminClaim(caller string, maxSlots int) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()
	return e.adminClaim(caller, maxSlots)
}

func (e *Engine) AdminClaimAll(caller string) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()
	return e.adminClaim(caller, e.history.Len())
}

func (e *Engine) adminClaim(caller string, maxSlots int) (*Event, error) {
	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	if maxSlots <= 0 {
		return nil, ErrZeroAmount
	}

	now := e.nowHours()
	period, commitPeriod := e.effectiveClaimPeriod(now)

	from := e.adminLastClaimedSlot + 1
	to := from + maxSlots
	if to > e.history.Len() {
		to = e.history.Len()
	}

	totalClaim := big.NewInt(0)
	var swept []int
	lastSwept := e.adminLastClaimedSlot
	for i := from; i < to; i++ {
		entry, err := e.history.Get(i)
		if err != nil {
			break
		}
		// Slots close in time order, so the first unexpired entry ends the
		// scan; skipping past it would strand its remainder forever.
		if now-entry.EndTime < period {
			break
		}
		if entry.RemainingTokensToClaim.Sign() > 0 {
			totalClaim = totalClaim.Add(totalClaim, entry.RemainingTokensToClaim)
			swept = append(swept, i)
		}
		lastSwept = i
	}

	if totalClaim.Sign() == 0 {
		return nil, ErrNothingToClaim
	}

	eventId := uuid.New().String()
	if err := e.token.Transfer(e.reserves, e.owner, totalClaim, eventId); err != nil {
		return nil, fmt.Errorf("admin claim transfer: %w", err)
	}

	for _, i := range swept {
		entry, _ := e.history.Get(i)
		if err := e.history.DecrementRemaining(i, entry.RemainingTokensToClaim); err != nil {
			return nil, err
		}
	}
	if commitPeriod {
		e.adminClaimPeriodHours = period
		e.proposedClaimPeriod = 0
		e.proposedAtHour = 0
		log.Info("ledger", "op", "claim_period_commit", "hours", period)
	}
	e.adminLastClaimedSlot = lastSwept

	log.Info("ledger", "op", "admin_claim", "amt", totalClaim.String(), "slot", lastSwept)
	return &Event{Id: eventId, Op: "admin_claim", HolderAddress: caller, Amount: totalClaim, Fee: big.NewInt(0), SlotIndex: lastSwept, Hour: now}, nil
}

// effectiveClaimPeriod resolves the period an admin reclaim scans under. A
// matured proposal takes effect for the scan, but it is only committed once
// the reclaim itself succeeds.
func (e *Engine) effectiveClaimPeriod(now int64) (period int64, commit bool) {
	if e.proposedClaimPeriod != 0 && now >= e.proposedAtHour+claimPeriodTimelockHours {
		return e.proposedClaimPeriod, true
	}
	return e.adminClaimPeriodHours, false
}

// SetTreasuryWallet changes the fee destination.
func (e *Engine) SetTreasuryWallet(caller, treasury string) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	if treasury == "" {
		return nil, ErrZeroAddress
	}
	e.treasury = treasury
	log.Info("ledger", "op", "set_treasury", "treasury", treasury)
	return &Event{Id: uuid.New().String(), Op: "set_treasury", HolderAddress: treasury, Amount: big.NewInt(0), Fee: big.NewInt(0), SlotIndex: -1, Hour: e.nowHours()}, nil
}

// UpdateSlotLength changes the duration of slots opened from the next
// distribution onward. The open slot keeps its bounds.
func (e *Engine) UpdateSlotLength(caller string, hours int64) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	if hours <= 0 {
		return nil, ErrInvalidSlotLength
	}
	e.slotLengthHours = hours
	log.Info("ledger", "op", "update_slot_length", "hours", hours)
	return &Event{Id: uuid.New().String(), Op: "update_slot_length", Amount: big.NewInt(hours), Fee: big.NewInt(0), SlotIndex: -1, Hour: e.nowHours()}, nil
}

// ProposeAdminClaimPeriod stages a new claim period behind the timelock. A
// sudden shortening would let the owner sweep rewards users still expect to
// claim, so the value only commits after the delay, on the next admin
// reclaim call.
func (e *Engine) ProposeAdminClaimPeriod(caller string, hours int64) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	if hours <= 0 {
		return nil, ErrInvalidClaimPeriod
	}
	now := e.nowHours()
	e.proposedClaimPeriod = hours
	e.proposedAtHour = now
	log.Info("ledger", "op", "propose_claim_period", "hours", hours, "effective", now+claimPeriodTimelockHours)
	return &Event{Id: uuid.New().String(), Op: "propose_claim_period", Amount: big.NewInt(hours), Fee: big.NewInt(0), SlotIndex: -1, Hour: now}, nil
}

// SetWithdrawalFeeBps changes the withdrawal fee, capped at 5%.
func (e *Engine) SetWithdrawalFeeBps(caller string, bps int64) (*Event, error) {
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if err := e.requireOwner(caller); err != nil {
		return nil, err
	}
	if bps < 0 || bps > MaxWithdrawalFeeBps {
		return nil, ErrFeeTooHigh
	}
	e.withdrawalFeeBps = bps
	log.Info("ledger", "op", "set_withdrawal_fee", "bps", bps)
	return &Event{Id: uuid.New().String(), Op: "set_withdrawal_fee", Amount: big.NewInt(bps), Fee: big.NewInt(0), SlotIndex: -1, Hour: e.nowHours()}, nil
}
