package storage

import (
	"unipool-ledger/ledger"
	"unipool-ledger/models"
)

// SaveEvent appends one engine event to the journal.
func (db *DBClient) SaveEvent(ev *ledger.Event) error {
	row := &models.PoolEvent{
		EventId:       ev.Id,
		Op:            ev.Op,
		HolderAddress: ev.HolderAddress,
		Amt:           (*models.Number)(ev.Amount),
		Fee:           (*models.Number)(ev.Fee),
		SlotIndex:     ev.SlotIndex,
		HourStamp:     ev.Hour,
	}
	return db.DB.Create(row).Error
}

// FindEvents pages the journal, optionally filtered by op and holder.
func (db *DBClient) FindEvents(op, holder string, limit, offset int) ([]*models.PoolEvent, int64, error) {
	query := db.DB.Model(&models.PoolEvent{})
	if op != "" {
		query = query.Where("op = ?", op)
	}
	if holder != "" {
		query = query.Where("holder_address = ?", holder)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []*models.PoolEvent
	err := query.Order("id asc").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// EventsInOrder streams the whole journal in append order, in batches, for
// replay.
func (db *DBClient) EventsInOrder(batch int, fn func(*models.PoolEvent) error) error {
	lastId := uint(0)
	for {
		var events []*models.PoolEvent
		err := db.DB.Where("id > ?", lastId).Order("id asc").Limit(batch).Find(&events).Error
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		for _, ev := range events {
			if err := fn(ev); err != nil {
				return err
			}
			lastId = ev.ID
		}
	}
}
