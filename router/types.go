package router

import (
	"unipool-ledger/ledger"
	"unipool-ledger/models"
)

type EventResult struct {
	EventId       string         `json:"event_id"`
	Op            string         `json:"op"`
	HolderAddress string         `json:"holder_address"`
	Amt           *models.Number `json:"amt"`
	Fee           *models.Number `json:"fee"`
	SlotIndex     int            `json:"slot_index"`
	HourStamp     int64          `json:"hour_stamp"`
}

func eventResult(ev *ledger.Event) *EventResult {
	return &EventResult{
		EventId:       ev.Id,
		Op:            ev.Op,
		HolderAddress: ev.HolderAddress,
		Amt:           (*models.Number)(ev.Amount),
		Fee:           (*models.Number)(ev.Fee),
		SlotIndex:     ev.SlotIndex,
		HourStamp:     ev.Hour,
	}
}

type SlotBoundsResult struct {
	CurrentSlotStart int64 `json:"current_slot_start"`
	CurrentSlotEnd   int64 `json:"current_slot_end"`
}

type TotalsResult struct {
	TotalStaked  *models.Number `json:"total_staked"`
	TotalCredits *models.Number `json:"total_credits"`
}
