package router

import (
	"math/big"
	"net/http"

	"unipool-ledger/ledger"
	"unipool-ledger/metrics"
	"unipool-ledger/storage"
	"unipool-ledger/utils"

	"github.com/dogecoinw/go-dogecoin/log"
	"github.com/gin-gonic/gin"
)

type PoolRouter struct {
	engine *ledger.Engine
	dbc    *storage.DBClient
	level  *storage.LevelDB
}

func NewPoolRouter(engine *ledger.Engine, dbc *storage.DBClient, level *storage.LevelDB) *PoolRouter {
	return &PoolRouter{
		engine: engine,
		dbc:    dbc,
		level:  level,
	}
}

func parseAmt(s string) (*big.Int, bool) {
	amt, ok := big.NewInt(0).SetString(s, 10)
	return amt, ok
}

// commit journals the event, rewrites the durable snapshot and refreshes
// the pool gauges after a successful engine call.
func (r *PoolRouter) commit(ev *ledger.Event) {
	metrics.IncOp(ev.Op)

	if err := r.dbc.SaveEvent(ev); err != nil {
		metrics.IncPersistenceError("journal")
		log.Error("router", "SaveEvent", err.Error(), "event", ev.Id)
	}
	if err := r.level.SaveSnapshot(r.engine.Snapshot()); err != nil {
		metrics.IncPersistenceError("snapshot")
		log.Error("router", "SaveSnapshot", err.Error(), "event", ev.Id)
	}

	metrics.SetTotals(r.engine.TotalStaked(), r.engine.TotalCredits())
	metrics.SetHistoryLength(len(r.engine.HistoryList()))
	_, members := r.engine.Members(0, 0)
	metrics.SetMembers(members)
}

func (r *PoolRouter) fail(c *gin.Context, op string, err error) {
	metrics.IncError(op)
	result := &utils.HttpResult{Code: 500, Msg: err.Error()}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Deposit(c *gin.Context) {
	params := &struct {
		HolderAddress string `json:"holder_address"`
		Amt           string `json:"amt"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	amt, ok := parseAmt(params.Amt)
	if !ok {
		result := &utils.HttpResult{Code: 400, Msg: "invalid amt"}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.Deposit(params.HolderAddress, amt)
	if err != nil {
		r.fail(c, "deposit", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: eventResult(ev)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Withdraw(c *gin.Context) {
	params := &struct {
		HolderAddress string `json:"holder_address"`
		Amt           string `json:"amt"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	amt, ok := parseAmt(params.Amt)
	if !ok {
		result := &utils.HttpResult{Code: 400, Msg: "invalid amt"}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.Withdraw(params.HolderAddress, amt)
	if err != nil {
		r.fail(c, "withdraw", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: eventResult(ev)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Distribute(c *gin.Context) {
	params := &struct {
		CallerAddress string `json:"caller_address"`
		Amt           string `json:"amt"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	amt, ok := parseAmt(params.Amt)
	if !ok {
		result := &utils.HttpResult{Code: 400, Msg: "invalid amt"}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.Distribute(params.CallerAddress, amt)
	if err != nil {
		r.fail(c, "distribute", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: eventResult(ev)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Claim(c *gin.Context) {
	params := &struct {
		HolderAddress string `json:"holder_address"`
		MaxSlots      int    `json:"max_slots"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	var ev *ledger.Event
	var err error
	if params.MaxSlots > 0 {
		ev, err = r.engine.Claim(params.HolderAddress, params.MaxSlots)
	} else {
		ev, err = r.engine.ClaimAll(params.HolderAddress)
	}
	if err != nil {
		r.fail(c, "claim", err)
		return
	}
	metrics.ObserveClaim(ev.Amount)
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: eventResult(ev)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) AdminClaim(c *gin.Context) {
	params := &struct {
		CallerAddress string `json:"caller_address"`
		MaxSlots      int    `json:"max_slots"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	var ev *ledger.Event
	var err error
	if params.MaxSlots > 0 {
		ev, err = r.engine.AdminClaim(params.CallerAddress, params.MaxSlots)
	} else {
		ev, err = r.engine.AdminClaimAll(params.CallerAddress)
	}
	if err != nil {
		r.fail(c, "admin_claim", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: eventResult(ev)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) SetTreasuryWallet(c *gin.Context) {
	params := &struct {
		CallerAddress   string `json:"caller_address"`
		TreasuryAddress string `json:"treasury_address"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.SetTreasuryWallet(params.CallerAddress, params.TreasuryAddress)
	if err != nil {
		r.fail(c, "set_treasury", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) UpdateSlotLength(c *gin.Context) {
	params := &struct {
		CallerAddress string `json:"caller_address"`
		Hours         int64  `json:"hours"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.UpdateSlotLength(params.CallerAddress, params.Hours)
	if err != nil {
		r.fail(c, "update_slot_length", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) ProposeAdminClaimPeriod(c *gin.Context) {
	params := &struct {
		CallerAddress string `json:"caller_address"`
		Hours         int64  `json:"hours"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.ProposeAdminClaimPeriod(params.CallerAddress, params.Hours)
	if err != nil {
		r.fail(c, "propose_claim_period", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) SetWithdrawalFeeBps(c *gin.Context) {
	params := &struct {
		CallerAddress string `json:"caller_address"`
		Bps           int64  `json:"bps"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	ev, err := r.engine.SetWithdrawalFeeBps(params.CallerAddress, params.Bps)
	if err != nil {
		r.fail(c, "set_withdrawal_fee", err)
		return
	}
	r.commit(ev)

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	c.JSON(http.StatusOK, result)
}
