package main

import (
	"os"
	"os/signal"
	"syscall"

	"unipool-ledger/config"
	"unipool-ledger/ledger"
	"unipool-ledger/metrics"
	"unipool-ledger/router"
	"unipool-ledger/storage"

	"github.com/dogecoinw/doged/btcutil"
	"github.com/dogecoinw/doged/chaincfg"
	"github.com/dogecoinw/go-dogecoin/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	cfg config.Config
)

func main() {

	config.LoadConfig(&cfg, "")

	glogger := log.NewGlogHandler(log.StreamHandler(os.Stderr, log.TerminalFormat(true)))
	glogger.Verbosity(log.Lvl(cfg.DebugLevel))
	log.Root().SetHandler(glogger)

	var dbClient *storage.DBClient
	if cfg.Sqlite.Switch {
		dbClient = storage.NewSqliteClient(cfg.Sqlite)
	} else {
		dbClient = storage.NewMysqlClient(cfg.Mysql)
	}

	if err := dbClient.AutoMigrate(); err != nil {
		panic(err)
	}

	levelClient := storage.NewLevelDB(cfg.LevelDB)

	reserves, err := btcutil.NewAddressScriptHash([]byte(cfg.Pool.PoolId+"--POOL"), &chaincfg.MainNetParams)
	if err != nil {
		panic(err)
	}

	book := storage.NewTokenBook(dbClient, cfg.Pool.Tick)
	engine, err := ledger.NewEngine(ledger.Options{
		OwnerAddress:          cfg.Pool.OwnerAddress,
		TreasuryAddress:       cfg.Pool.TreasuryAddress,
		ReservesAddress:       reserves.String(),
		SlotLengthHours:       cfg.Pool.SlotLengthHours,
		WithdrawalFeeBps:      cfg.Pool.WithdrawalFeeBps,
		AdminClaimPeriodHours: cfg.Pool.AdminClaimPeriodHours,
		Token:                 book,
	})
	if err != nil {
		panic(err)
	}

	snap, err := levelClient.LoadSnapshot()
	if err != nil {
		panic(err)
	}
	if snap != nil {
		if err := engine.Restore(snap); err != nil {
			panic(err)
		}
		log.Info("main", "snapshot", "restored", "members", len(snap.Users), "slots", len(snap.History))
	}

	if cfg.HttpServer.Switch {
		metrics.MustRegister()

		grt := gin.Default()
		grt.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(200)
				return
			}
			c.Next()
		})

		grt.GET("/metrics", func(c *gin.Context) {
			promhttp.Handler().ServeHTTP(c.Writer, c.Request)
		})

		v1 := grt.Group("/v1")
		{
			poolRouter := router.NewPoolRouter(engine, dbClient, levelClient)
			v1.POST("/pool/deposit", poolRouter.Deposit)
			v1.POST("/pool/withdraw", poolRouter.Withdraw)
			v1.POST("/pool/distribute", poolRouter.Distribute)
			v1.POST("/pool/claim", poolRouter.Claim)
			v1.POST("/pool/adminclaim", poolRouter.AdminClaim)
			v1.POST("/pool/treasury", poolRouter.SetTreasuryWallet)
			v1.POST("/pool/slotlength", poolRouter.UpdateSlotLength)
			v1.POST("/pool/claimperiod", poolRouter.ProposeAdminClaimPeriod)
			v1.POST("/pool/fee", poolRouter.SetWithdrawalFeeBps)

			v1.GET("/pool/slot", poolRouter.Slot)
			v1.GET("/pool/totals", poolRouter.Totals)
			v1.GET("/pool/history", poolRouter.History)
			v1.GET("/pool/config", poolRouter.Config)
			v1.POST("/pool/user", poolRouter.User)
			v1.POST("/pool/pending", poolRouter.PendingReward)
			v1.POST("/pool/members", poolRouter.Members)
			v1.POST("/pool/events", poolRouter.Events)

			tokenRouter := router.NewTokenRouter(dbClient, cfg.Pool.Tick)
			v1.POST("/token/mint", tokenRouter.Mint)
			v1.POST("/token/approve", tokenRouter.Approve)
			v1.POST("/token/balance", tokenRouter.Balance)
			v1.POST("/token/allowance", tokenRouter.Allowance)
		}

		if err := grt.Run(cfg.HttpServer.Server); err != nil {
			panic(err)
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	println("\nReceived an interrupt, stopping services...")
	_ = levelClient.Close()
}
