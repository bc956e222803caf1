package router

import (
	"net/http"

	"unipool-ledger/models"
	"unipool-ledger/utils"

	"github.com/gin-gonic/gin"
)

func (r *PoolRouter) Slot(c *gin.Context) {
	start, end := r.engine.SlotBounds()
	result := &utils.HttpResult{Code: 200, Msg: "success", Data: &SlotBoundsResult{
		CurrentSlotStart: start,
		CurrentSlotEnd:   end,
	}}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Totals(c *gin.Context) {
	result := &utils.HttpResult{Code: 200, Msg: "success", Data: &TotalsResult{
		TotalStaked:  (*models.Number)(r.engine.TotalStaked()),
		TotalCredits: (*models.Number)(r.engine.TotalCredits()),
	}}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) History(c *gin.Context) {
	history := r.engine.HistoryList()
	result := &utils.HttpResult{Code: 200, Msg: "success", Data: history, Total: int64(len(history))}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) User(c *gin.Context) {
	params := &struct {
		HolderAddress string `json:"holder_address"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	user, err := r.engine.UserView(params.HolderAddress)
	if err != nil {
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: user}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) PendingReward(c *gin.Context) {
	params := &struct {
		HolderAddress string `json:"holder_address"`
	}{}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	pending := r.engine.PendingReward(params.HolderAddress)
	result := &utils.HttpResult{Code: 200, Msg: "success", Data: (*models.Number)(pending)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Members(c *gin.Context) {
	params := &struct {
		Limit  int `json:"limit"`
		OffSet int `json:"offset"`
	}{
		Limit:  10,
		OffSet: 0,
	}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	members, total := r.engine.Members(params.OffSet, params.Limit)
	result := &utils.HttpResult{Code: 200, Msg: "success", Data: members, Total: int64(total)}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Config(c *gin.Context) {
	result := &utils.HttpResult{Code: 200, Msg: "success", Data: r.engine.Config()}
	c.JSON(http.StatusOK, result)
}

func (r *PoolRouter) Events(c *gin.Context) {
	params := &struct {
		Op            string `json:"op"`
		HolderAddress string `json:"holder_address"`
		Limit         int    `json:"limit"`
		OffSet        int    `json:"offset"`
	}{
		Limit:  10,
		OffSet: 0,
	}

	if err := c.ShouldBindJSON(&params); err != nil {
		result := &utils.HttpResult{Code: 400, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	events, total, err := r.dbc.FindEvents(params.Op, params.HolderAddress, params.Limit, params.OffSet)
	if err != nil {
		result := &utils.HttpResult{Code: 500, Msg: err.Error()}
		c.JSON(http.StatusOK, result)
		return
	}

	result := &utils.HttpResult{Code: 200, Msg: "success", Data: events, Total: total}
	c.JSON(http.StatusOK, result)
}
