package ledger

import "errors"

var (
	ErrZeroAmount            = errors.New("amount must be greater than zero")
	ErrZeroAddress           = errors.New("address is empty")
	ErrSlotNotActive         = errors.New("current slot is not active")
	ErrSlotNotEnded          = errors.New("current slot has not ended")
	ErrNotOwner              = errors.New("caller is not the owner")
	ErrNotRegistered         = errors.New("holder is not registered")
	ErrPendingClaim          = errors.New("unclaimed rewards outstanding, claim first")
	ErrNothingToClaim        = errors.New("no rewards to claim")
	ErrAlreadyClaimed        = errors.New("already claimed for the current slot")
	ErrInsufficientBalance   = errors.New("insufficient staked balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrReentrantCall         = errors.New("reentrant call")
	ErrArithmeticUnderflow   = errors.New("arithmetic underflow")
	ErrFeeTooHigh            = errors.New("withdrawal fee exceeds ceiling")
	ErrInvalidSlotLength     = errors.New("slot length must be greater than zero")
	ErrInvalidClaimPeriod    = errors.New("admin claim period must be greater than zero")
)
