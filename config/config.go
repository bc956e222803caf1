package config

import (
	"encoding/json"
	"os"
)

type MysqlConfig struct {
	Server   string `json:"server"`
	UserName string `json:"user_name"`
	PassWord string `json:"pass_word"`
	Database string `json:"database"`
}

type SqliteConfig struct {
	Switch   bool   `json:"switch"`
	Database string `json:"database"`
}

type LevelDBConfig struct {
	Path string `json:"path"`
}

type HttpServerConfig struct {
	Switch bool   `json:"switch"`
	Server string `json:"server"`
}

type PoolConfig struct {
	PoolId                string `json:"pool_id"`
	Tick                  string `json:"tick"`
	OwnerAddress          string `json:"owner_address"`
	TreasuryAddress       string `json:"treasury_address"`
	SlotLengthHours       int64  `json:"slot_length_hours"`
	WithdrawalFeeBps      int64  `json:"withdrawal_fee_bps"`
	AdminClaimPeriodHours int64  `json:"admin_claim_period_hours"`
}

type Config struct {
	DebugLevel int              `json:"debug_level"`
	Mysql      MysqlConfig      `json:"mysql"`
	Sqlite     SqliteConfig     `json:"sqlite"`
	LevelDB    LevelDBConfig    `json:"leveldb"`
	HttpServer HttpServerConfig `json:"http_server"`
	Pool       PoolConfig       `json:"pool"`
}

func LoadConfig(cfg *Config, path string) {
	if path == "" {
		path = "config.json"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		panic(err)
	}
}
