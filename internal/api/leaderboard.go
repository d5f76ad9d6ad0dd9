package api

import (
	"net/http"

	"ecocoach/internal/model"
	"ecocoach/internal/service"

	"github.com/gin-gonic/gin"
)

type leaderboardRoutes struct {
	lb service.LeaderboardServiceI
}

func NewLeaderboardRoutes(handler *gin.RouterGroup, lb service.LeaderboardServiceI) {
	r := &leaderboardRoutes{lb: lb}
	handler.GET("/leaderboard", r.GetLeaderboard)
}

type LeaderboardEntryResponse struct {
	Rank             int     `json:"rank"`
	Username         string  `json:"username"`
	TotalCarbonSaved float64 `json:"total_carbon_saved"`
	Streak           int     `json:"streak"`
	LastActivityDate *string `json:"last_activity_date"`
}

func toLeaderboardResponse(entries []model.LeaderboardEntry) []LeaderboardEntryResponse {
	out := make([]LeaderboardEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntryResponse{
			Rank:             e.Rank,
			Username:         e.Username,
			TotalCarbonSaved: e.TotalCarbonSaved,
			Streak:           e.Streak,
			LastActivityDate: formatDate(e.LastActivityDate),
		}
	}
	return out
}

func (r *leaderboardRoutes) GetLeaderboard(c *gin.Context) {
	limit, err := queryLimit(c, "limit", service.DefaultLeaderboardSize)
	if err != nil {
		writeError(c, "invalid limit", err)
		return
	}

	entries, err := r.lb.Top(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "failed to get leaderboard", err)
		return
	}

	c.JSON(http.StatusOK, toLeaderboardResponse(entries))
}
