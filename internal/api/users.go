package api

import (
	"net/http"
	"strconv"
	"time"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/internal/service"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	ls service.LedgerServiceI
	rs service.ReminderServiceI
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, ls service.LedgerServiceI, rs service.ReminderServiceI) {
	r := &userRoutes{us: us, ls: ls, rs: rs}
	h := handler.Group("/users")
	{
		h.POST("", r.RegisterUser)
		h.GET("/:username", r.GetUserStats)
		h.GET("/:username/activities", r.GetUserActivities)
		h.GET("/:username/audit", r.GetUserAudit)
		h.GET("/:username/reminders", r.GetUserReminders)
	}
}

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type UserStatsResponse struct {
	Username         string  `json:"username"`
	Email            string  `json:"email,omitempty"`
	TotalCarbonSaved float64 `json:"total_carbon_saved"`
	Streak           int     `json:"streak"`
	LongestStreak    int     `json:"longest_streak"`
	LastActivityDate *string `json:"last_activity_date"`
}

func toUserStatsResponse(u *model.User) UserStatsResponse {
	return UserStatsResponse{
		Username:         u.Username,
		Email:            u.Email,
		TotalCarbonSaved: u.TotalCarbonSaved,
		Streak:           u.Streak,
		LongestStreak:    u.LongestStreak,
		LastActivityDate: formatDate(u.LastActivityDate),
	}
}

func (r *userRoutes) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	user, err := r.us.Register(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		writeError(c, "failed to register user", err)
		return
	}

	c.JSON(http.StatusCreated, toUserStatsResponse(user))
}

func (r *userRoutes) GetUserStats(c *gin.Context) {
	user, err := r.us.Stats(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, "failed to get user", err)
		return
	}

	c.JSON(http.StatusOK, toUserStatsResponse(user))
}

type ActivityResponse struct {
	ID           int64     `json:"id"`
	Amount       float64   `json:"amount"`
	Activity     string    `json:"activity"`
	ActivityDate string    `json:"activity_date"`
	LoggedAt     time.Time `json:"logged_at"`
}

func (r *userRoutes) GetUserActivities(c *gin.Context) {
	limit, err := queryLimit(c, "limit", service.DefaultHistoryLimit)
	if err != nil {
		writeError(c, "invalid limit", err)
		return
	}

	entries, err := r.ls.History(c.Request.Context(), c.Param("username"), limit)
	if err != nil {
		writeError(c, "failed to get user activities", err)
		return
	}

	out := make([]ActivityResponse, len(entries))
	for i, e := range entries {
		out[i] = ActivityResponse{
			ID:           e.ID,
			Amount:       e.Amount,
			Activity:     e.Activity,
			ActivityDate: model.FormatDate(e.ActivityDate),
			LoggedAt:     e.LoggedAt,
		}
	}

	c.JSON(http.StatusOK, out)
}

type ProgressResponse struct {
	TotalCarbonSaved float64 `json:"total_carbon_saved"`
	Streak           int     `json:"streak"`
	LongestStreak    int     `json:"longest_streak"`
	LastActivityDate *string `json:"last_activity_date"`
}

func toProgressResponse(p model.Progress) ProgressResponse {
	return ProgressResponse{
		TotalCarbonSaved: p.TotalCarbonSaved,
		Streak:           p.Streak,
		LongestStreak:    p.LongestStreak,
		LastActivityDate: formatDate(p.LastActivityDate),
	}
}

type AuditResponse struct {
	Username   string           `json:"username"`
	Stored     ProgressResponse `json:"stored"`
	Derived    ProgressResponse `json:"derived"`
	Entries    int              `json:"entries"`
	Consistent bool             `json:"consistent"`
}

func (r *userRoutes) GetUserAudit(c *gin.Context) {
	audit, err := r.ls.Audit(c.Request.Context(), c.Param("username"))
	if err != nil {
		writeError(c, "failed to audit user", err)
		return
	}

	c.JSON(http.StatusOK, AuditResponse{
		Username:   audit.Username,
		Stored:     toProgressResponse(audit.Stored),
		Derived:    toProgressResponse(audit.Derived),
		Entries:    audit.Entries,
		Consistent: audit.Consistent,
	})
}

func (r *userRoutes) GetUserReminders(c *gin.Context) {
	onlyEnabled := false
	if raw, ok := c.GetQuery("enabled"); ok && raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, "invalid enabled filter", apperror.InvalidInput(apperror.CodeInvalidInput, "enabled", "enabled must be true or false"))
			return
		}
		onlyEnabled = v
	}

	reminders, err := r.rs.List(c.Request.Context(), c.Param("username"), onlyEnabled)
	if err != nil {
		writeError(c, "failed to list reminders", err)
		return
	}

	out := make([]ReminderResponse, len(reminders))
	for i, rm := range reminders {
		out[i] = toReminderResponse(rm)
	}

	c.JSON(http.StatusOK, out)
}
