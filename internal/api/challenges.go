package api

import (
	"net/http"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/internal/service"

	"github.com/gin-gonic/gin"
)

type challengeRoutes struct {
	cs service.ChallengeServiceI
}

func NewChallengeRoutes(handler *gin.RouterGroup, cs service.ChallengeServiceI) {
	r := &challengeRoutes{cs: cs}
	h := handler.Group("/challenges")
	{
		h.GET("/today", r.GetToday)
		h.POST("/today/complete", r.CompleteToday)
		h.GET("/history", r.GetHistory)
	}
}

type ChallengeResponse struct {
	ChallengeID int    `json:"challenge_id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Date        string `json:"date"`
}

func toChallengeResponse(c *model.ChallengeOfDay) ChallengeResponse {
	return ChallengeResponse{
		ChallengeID: c.Challenge.ID,
		Title:       c.Challenge.Title,
		Category:    string(c.Challenge.Category),
		Description: c.Challenge.Description,
		Points:      c.Challenge.Points,
		Date:        model.FormatDate(c.Date),
	}
}

func (r *challengeRoutes) GetToday(c *gin.Context) {
	date, err := queryDate(c, "date")
	if err != nil {
		writeError(c, "invalid date", err)
		return
	}

	challenge, err := r.cs.Today(c.Request.Context(), date)
	if err != nil {
		writeError(c, "failed to get today's challenge", err)
		return
	}

	c.JSON(http.StatusOK, toChallengeResponse(challenge))
}

type CompleteChallengeRequest struct {
	Username string `json:"username" binding:"required,max=64"`
}

type CompleteChallengeResponse struct {
	Username         string  `json:"username"`
	ChallengeID      int     `json:"challenge_id"`
	Date             string  `json:"date"`
	Points           int     `json:"points"`
	TotalCarbonSaved float64 `json:"total_carbon_saved"`
	Streak           int     `json:"streak"`
}

func (r *challengeRoutes) CompleteToday(c *gin.Context) {
	var req CompleteChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	completion, err := r.cs.Complete(c.Request.Context(), req.Username)
	if err != nil {
		writeError(c, "failed to complete challenge", err)
		return
	}

	c.JSON(http.StatusOK, CompleteChallengeResponse{
		Username:         completion.Username,
		ChallengeID:      completion.Challenge.ID,
		Date:             model.FormatDate(completion.Date),
		Points:           completion.Challenge.Points,
		TotalCarbonSaved: completion.Progress.TotalCarbonSaved,
		Streak:           completion.Progress.Streak,
	})
}

func (r *challengeRoutes) GetHistory(c *gin.Context) {
	from, err := queryDate(c, "from")
	if err != nil {
		writeError(c, "invalid date", err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		writeError(c, "invalid date", err)
		return
	}
	if from == nil || to == nil {
		writeError(c, "invalid date", apperror.InvalidInput(apperror.CodeInvalidDate, "from", "from and to are required"))
		return
	}

	history, err := r.cs.ChallengeHistory(c.Request.Context(), *from, *to)
	if err != nil {
		writeError(c, "failed to get challenge history", err)
		return
	}

	out := make([]ChallengeResponse, len(history))
	for i, h := range history {
		out[i] = toChallengeResponse(h)
	}

	c.JSON(http.StatusOK, out)
}
