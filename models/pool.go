package models

// PoolEvent is the append-only journal row written after every successful
// mutating engine call. Replay of these rows in id order rebuilds the full
// pool state (see cmd/replay).
type PoolEvent struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	EventId       string    `json:"event_id"`
	Op            string    `json:"op"`
	HolderAddress string    `json:"holder_address"`
	Amt           *Number   `gorm:"default:'0'" json:"amt"`
	Fee           *Number   `gorm:"default:'0'" json:"fee"`
	SlotIndex     int       `gorm:"default:-1" json:"slot_index"`
	HourStamp     int64     `json:"hour_stamp"`
	ErrInfo       string    `json:"err_info"`
	UpdateDate    LocalTime `json:"update_date"`
	CreateDate    LocalTime `json:"create_date"`
}

func (PoolEvent) TableName() string {
	return "pool_event"
}

// UserSnapshot is the JSON/LevelDB form of a ledger user record.
type UserSnapshot struct {
	HolderAddress        string  `json:"holder_address"`
	Balance              *Number `json:"balance"`
	ForecastedCredits    *Number `json:"forecasted_credits"`
	LastUpdatedTimestamp int64   `json:"last_updated_timestamp"`
	LastClaimedTimestamp int64   `json:"last_claimed_timestamp"`
	LastClaimedSlot      int     `json:"last_claimed_slot"`
}

// SlotSnapshot is the JSON/LevelDB form of a closed distribution slot.
type SlotSnapshot struct {
	StartTime              int64   `json:"start_time"`
	EndTime                int64   `json:"end_time"`
	MonthlyProfit          *Number `json:"monthly_profit"`
	TotalCredits           *Number `json:"total_credits"`
	RemainingTokensToClaim *Number `json:"remaining_tokens_to_claim"`
}

// PoolSnapshot is the whole engine state, written to LevelDB after every
// successful mutating call and loaded at boot.
type PoolSnapshot struct {
	OwnerAddress          string          `json:"owner_address"`
	TreasuryAddress       string          `json:"treasury_address"`
	ReservesAddress       string          `json:"reserves_address"`
	SlotLengthHours       int64           `json:"slot_length_hours"`
	CurrentSlotStart      int64           `json:"current_slot_start"`
	CurrentSlotEnd        int64           `json:"current_slot_end"`
	TotalStaked           *Number         `json:"total_staked"`
	TotalCredits          *Number         `json:"total_credits"`
	WithdrawalFeeBps      int64           `json:"withdrawal_fee_bps"`
	AdminClaimPeriodHours int64           `json:"admin_claim_period_hours"`
	ProposedClaimPeriod   int64           `json:"proposed_claim_period"`
	ProposedAtHour        int64           `json:"proposed_at_hour"`
	AdminLastClaimedSlot  int             `json:"admin_last_claimed_slot"`
	Users                 []*UserSnapshot `json:"users"`
	History               []*SlotSnapshot `json:"history"`
}

// PoolConfigView is the read model for the configuration endpoint. Pending
// reflects a proposed claim period that has not yet passed its timelock;
// EffectiveHour is the hour at which it becomes committable.
type PoolConfigView struct {
	TreasuryAddress       string `json:"treasury_address"`
	ReservesAddress       string `json:"reserves_address"`
	SlotLengthHours       int64  `json:"slot_length_hours"`
	WithdrawalFeeBps      int64  `json:"withdrawal_fee_bps"`
	AdminClaimPeriodHours int64  `json:"admin_claim_period_hours"`
	PendingClaimPeriod    int64  `json:"pending_claim_period,omitempty"`
	EffectiveHour         int64  `json:"effective_hour,omitempty"`
}

// TokenCollectAddress is a per-holder token balance row.
type TokenCollectAddress struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Tick          string    `json:"tick"`
	HolderAddress string    `json:"holder_address"`
	AmtSum        *Number   `gorm:"default:'0'" json:"amt_sum"`
	UpdateDate    LocalTime `json:"update_date"`
	CreateDate    LocalTime `json:"create_date"`
}

func (TokenCollectAddress) TableName() string {
	return "token_collect_address"
}

// TokenAllowance is a spender allowance row.
type TokenAllowance struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Tick           string    `json:"tick"`
	HolderAddress  string    `json:"holder_address"`
	SpenderAddress string    `json:"spender_address"`
	AmtSum         *Number   `gorm:"default:'0'" json:"amt_sum"`
	UpdateDate     LocalTime `json:"update_date"`
	CreateDate     LocalTime `json:"create_date"`
}

func (TokenAllowance) TableName() string {
	return "token_allowance"
}

// TokenRevert mirrors every balance/allowance mutation so the journal can be
// audited alongside pool events.
type TokenRevert struct {
	ID          uint      `gorm:"primarykey"`
	Op          string    `json:"op"`
	Tick        string    `json:"tick"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Amt         *Number   `json:"amt"`
	EventId     string    `json:"event_id"`
	HourStamp   int64     `json:"hour_stamp"`
	UpdateDate  LocalTime `json:"update_date"`
	CreateDate  LocalTime `json:"create_date"`
}

func (TokenRevert) TableName() string {
	return "token_revert"
}
