package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type APIError struct {
	Code      utils.Code `json:"code"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable,omitempty"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		_ = c.Error(err)
		c.JSON(status, APIError{
			Code:      ae.Code,
			Message:   ae.Message,
			Retryable: utils.Retryable(err),
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

// ownInterview loads the :id interview and checks it belongs to the caller.
// It writes the error response itself.
func ownInterview(c *gin.Context, svc services.InterviewService, op string) (*models.Interview, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}

	iv, err := svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if iv.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, op, "forbidden", nil))
		return nil, false
	}
	return iv, true
}
