package storage

import (
	"fmt"
	"sync"

	"unipool-ledger/config"
	"unipool-ledger/models"

	"github.com/dogecoinw/go-dogecoin/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DBClient struct {
	DB   *gorm.DB
	lock sync.Mutex
}

func NewMysqlClient(cfg config.MysqlConfig) *DBClient {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.UserName, cfg.PassWord, cfg.Server, cfg.Database)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Error("storage", "NewMysqlClient", err.Error())
		panic(err)
	}
	return &DBClient{DB: db}
}

func NewSqliteClient(cfg config.SqliteConfig) *DBClient {
	db, err := gorm.Open(sqlite.Open(cfg.Database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Error("storage", "NewSqliteClient", err.Error())
		panic(err)
	}
	return &DBClient{DB: db}
}

func (db *DBClient) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.PoolEvent{},
		&models.TokenCollectAddress{},
		&models.TokenAllowance{},
		&models.TokenRevert{},
	)
}
