package storage

import (
	"encoding/json"
	"errors"

	"unipool-ledger/config"
	"unipool-ledger/models"

	"github.com/dogecoinw/go-dogecoin/log"
	"github.com/syndtr/goleveldb/leveldb"
)

var snapshotKey = []byte("pool/state")

// LevelDB holds the durable key-value snapshot of the engine state. The
// snapshot is rewritten atomically after every successful mutating call.
type LevelDB struct {
	db *leveldb.DB
}

func NewLevelDB(cfg config.LevelDBConfig) *LevelDB {
	db, err := leveldb.OpenFile(cfg.Path, nil)
	if err != nil {
		log.Error("storage", "NewLevelDB", err.Error())
		panic(err)
	}
	return &LevelDB{db: db}
}

func (l *LevelDB) SaveSnapshot(snap *models.PoolSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return l.db.Put(snapshotKey, data, nil)
}

// LoadSnapshot returns nil when no snapshot has been written yet.
func (l *LevelDB) LoadSnapshot() (*models.PoolSnapshot, error) {
	data, err := l.db.Get(snapshotKey, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	snap := &models.PoolSnapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}
