package api

import (
	"net/http"
	"time"

	"ecocoach/internal/service"

	"github.com/gin-gonic/gin"
)

type activityRoutes struct {
	ls service.LedgerServiceI
}

func NewActivityRoutes(handler *gin.RouterGroup, ls service.LedgerServiceI) {
	r := &activityRoutes{ls: ls}
	h := handler.Group("/activities")
	{
		h.POST("", r.LogActivity)
	}
}

type LogActivityRequest struct {
	Username    string     `json:"username" binding:"required,max=64"`
	Amount      *float64   `json:"amount" binding:"required"`
	Description string     `json:"description" binding:"max=500"`
	Timestamp   *time.Time `json:"timestamp"`
}

type LogActivityResponse struct {
	Username         string  `json:"username"`
	TotalCarbonSaved float64 `json:"total_carbon_saved"`
	Streak           int     `json:"streak"`
}

func (r *activityRoutes) LogActivity(c *gin.Context) {
	var req LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := r.ls.LogActivity(c.Request.Context(), req.Username, *req.Amount, req.Description, req.Timestamp)
	if err != nil {
		writeError(c, "failed to log activity", err)
		return
	}

	c.JSON(http.StatusOK, LogActivityResponse{
		Username:         user.Username,
		TotalCarbonSaved: user.TotalCarbonSaved,
		Streak:           user.Streak,
	})
}
