package api

import (
	"net/http"
	"time"

	"ecocoach/internal/model"
	"ecocoach/internal/service"

	"github.com/gin-gonic/gin"
)

type reminderRoutes struct {
	rs service.ReminderServiceI
}

func NewReminderRoutes(handler *gin.RouterGroup, rs service.ReminderServiceI) {
	r := &reminderRoutes{rs: rs}
	h := handler.Group("/reminders")
	{
		h.POST("", r.CreateReminder)
		h.GET("/due", r.GetDueReminders)
		h.PATCH("/:id", r.ToggleReminder)
		h.GET("/:id/status", r.GetReminderStatus)
		h.POST("/:id/fire", r.FireReminder)
	}
}

type CreateReminderRequest struct {
	Username  string `json:"username" binding:"required,max=64"`
	Habit     string `json:"habit" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
}

type ReminderResponse struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Habit        string     `json:"habit"`
	Frequency    string     `json:"frequency"`
	Enabled      bool       `json:"enabled"`
	LastReminded *time.Time `json:"last_reminded"`
	CreatedAt    time.Time  `json:"created_at"`
}

func toReminderResponse(r *model.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:           r.ID.String(),
		Username:     r.Username,
		Habit:        r.Habit,
		Frequency:    string(r.Frequency),
		Enabled:      r.Enabled,
		LastReminded: r.LastReminded,
		CreatedAt:    r.CreatedAt,
	}
}

func (r *reminderRoutes) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	reminder, err := r.rs.Create(c.Request.Context(), req.Username, req.Habit, req.Frequency)
	if err != nil {
		writeError(c, "failed to create reminder", err)
		return
	}

	c.JSON(http.StatusCreated, toReminderResponse(reminder))
}

type ToggleReminderRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (r *reminderRoutes) ToggleReminder(c *gin.Context) {
	var req ToggleReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	reminder, err := r.rs.Toggle(c.Request.Context(), c.Param("id"), *req.Enabled)
	if err != nil {
		writeError(c, "failed to toggle reminder", err)
		return
	}

	c.JSON(http.StatusOK, toReminderResponse(reminder))
}

type ReminderStatusResponse struct {
	ID        string     `json:"id"`
	Due       bool       `json:"due"`
	NextDueAt *time.Time `json:"next_due_at"`
}

func (r *reminderRoutes) GetReminderStatus(c *gin.Context) {
	status, err := r.rs.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "failed to get reminder status", err)
		return
	}

	c.JSON(http.StatusOK, ReminderStatusResponse{
		ID:        status.Reminder.ID.String(),
		Due:       status.Due,
		NextDueAt: status.NextDueAt,
	})
}

type FireReminderResponse struct {
	Fired    bool             `json:"fired"`
	Reminder ReminderResponse `json:"reminder"`
}

func (r *reminderRoutes) FireReminder(c *gin.Context) {
	reminder, fired, err := r.rs.Fire(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "failed to fire reminder", err)
		return
	}

	c.JSON(http.StatusOK, FireReminderResponse{
		Fired:    fired,
		Reminder: toReminderResponse(reminder),
	})
}

func (r *reminderRoutes) GetDueReminders(c *gin.Context) {
	reminders, err := r.rs.Due(c.Request.Context())
	if err != nil {
		writeError(c, "failed to list due reminders", err)
		return
	}

	out := make([]ReminderResponse, len(reminders))
	for i, rm := range reminders {
		out[i] = toReminderResponse(rm)
	}

	c.JSON(http.StatusOK, out)
}
