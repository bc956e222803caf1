package router

import (
	"net/http"

	"unipool-ledger/models"
	"unipool-ledger/storage"
	"unipool-ledger/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenRouter administers the built-in token book: issuance and allowances
// for the single pool asset.
type TokenRouter struct {
	dbc  *storage.DBClient
	tick string
}

func NewTokenRouter(dbc *storage.DBClient, tick string) *TokenRouter {
	return &TokenRouter{
		dbc:  dbc,
		tick: tick,
	}
}

func (r *TokenRouter) Mint(c *gin.Context) {
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

	tx := r.dbc.DB.Begin()
	if err := r.dbc.TokenMint(tx, r.tick, params.HolderAddress, amt, uuid.New().String()); err != nil {
		tx.Rollback()
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	c.JSON(http.StatusOK, result)
}

func (r *TokenRouter) Approve(c *gin.Context) {
	params := &struct {
		HolderAddress  string `json:"holder_address"`
		SpenderAddress string `json:"spender_address"`
		Amt            string `json:"amt"`
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

	tx := r.dbc.DB.Begin()
	if err := r.dbc.TokenApprove(tx, r.tick, params.HolderAddress, params.SpenderAddress, amt, uuid.New().String()); err != nil {
		tx.Rollback()
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	result := &utils.HttpResult{Code: 200, Msg: "success"}
	c.JSON(http.StatusOK, result)
}

func (r *TokenRouter) Balance(c *gin.Context) {
	params := &struct {
		HolderAddress string `json:"holder_address"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	amt, err := r.dbc.TokenBalance(r.tick, params.HolderAddress)
	if err != nil {
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: (*models.Number)(amt)}
	c.JSON(http.StatusOK, result)
}

func (r *TokenRouter) Allowance(c *gin.Context) {
	params := &struct {
		HolderAddress  string `json:"holder_address"`
		SpenderAddress string `json:"spender_address"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	amt, err := r.dbc.TokenAllowance(r.tick, params.HolderAddress, params.SpenderAddress)
	if err != nil {
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: (*models.Number)(amt)}
	c.JSON(http.StatusOK, result)
}
