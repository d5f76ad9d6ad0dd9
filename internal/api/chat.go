package api

import (
	"context"
	"net/http"

	"ecocoach/internal/coach"

	"github.com/gin-gonic/gin"
)

type Coach interface {
	Reply(ctx context.Context, username, message string) (*coach.Reply, error)
}

type chatRoutes struct {
	coach Coach
}

func NewChatRoutes(handler *gin.RouterGroup, cc Coach) {
	r := &chatRoutes{coach: cc}
	handler.POST("/chat", r.Chat)
}

type ChatRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Message  string `json:"message" binding:"required,max=2000"`
}

type ChatResponse struct {
	Reply       string  `json:"reply"`
	CarbonSaved float64 `json:"carbon_saved"`
}

func (r *chatRoutes) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	reply, err := r.coach.Reply(c.Request.Context(), req.Username, req.Message)
	if err != nil {
		writeError(c, "failed to get coach reply", err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Reply:       reply.Text,
		CarbonSaved: reply.CarbonSaved,
	})
}
