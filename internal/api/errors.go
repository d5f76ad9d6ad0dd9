package api

import (
	"net/http"
	"strconv"
	"time"

	"ecocoach/internal/apperror"
	"ecocoach/internal/model"
	"ecocoach/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[string]int{
	apperror.CodeInvalidInput:     http.StatusBadRequest,
	apperror.CodeInvalidAmount:    http.StatusBadRequest,
	apperror.CodeInvalidFrequency: http.StatusBadRequest,
	apperror.CodeInvalidDate:      http.StatusBadRequest,
	apperror.CodeInvalidLimit:     http.StatusBadRequest,
	apperror.CodeNotFound:         http.StatusNotFound,
	apperror.CodeAlreadyCompleted: http.StatusConflict,
	apperror.CodeInternal:         http.StatusInternalServerError,
}

// writeError renders err as {"error": code, "message": ...}. Internal errors
// are logged and their text is not exposed.
func writeError(c *gin.Context, msg string, err error) {
	log := logger.Logger()

	code := apperror.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusBadRequest
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
		message = "internal server error"
	} else {
		log.Info(msg, zap.String("code", code), zap.Error(err))
	}

	c.JSON(status, gin.H{
		"error":   code,
		"message": message,
	})
}

func writeBindError(c *gin.Context, err error) {
	logger.Logger().Info("failed to bind request", zap.Error(err))

	body := gin.H{
		"error":   apperror.CodeInvalidInput,
		"message": "invalid request",
	}
	if details := apperror.ValidationMessages(err); len(details) > 0 {
		body["details"] = details
	}

	c.JSON(http.StatusBadRequest, body)
}

// queryLimit reads an optional positive integer query parameter.
func queryLimit(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.InvalidInput(apperror.CodeInvalidLimit, key, key+" must be an integer")
	}
	return n, nil
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}

	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, apperror.InvalidInput(apperror.CodeInvalidDate, key, key+" must be a YYYY-MM-DD date")
	}
	return &d, nil
}

func formatDate(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := model.FormatDate(*d)
	return &s
}
