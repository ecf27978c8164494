package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type QuestionHandler struct {
	svc services.QuestionService
}

func NewQuestionHandler(svc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

type PracticeQuestion struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Difficulty string   `json:"difficulty,omitempty"`
	Role       string   `json:"role,omitempty"`
	Techs      []string `json:"techs,omitempty"`
}

type CreateQuestionRequest struct {
	Type       string   `json:"type" binding:"required"`
	Question   string   `json:"question" binding:"required"`
	Answer     string   `json:"answer"`
	Difficulty string   `json:"difficulty"`
	Role       string   `json:"role"`
	Techs      []string `json:"techs"`
	Keywords   []string `json:"keywords"`
	OrderNo    int      `json:"order_no"`
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return strings.Split(v, ",")
}

func (h *QuestionHandler) Practice(c *gin.Context) {
	f := models.QuestionFilter{
		Category:   models.Kind(c.DefaultQuery("type", string(models.KindHR))),
		Difficulty: models.Difficulty(c.Query("difficulty")),
		Role:       c.Query("role"),
		Techs:      splitCSV(c.Query("techs")),
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(c, utils.E(utils.CodeInvalidArgument, "QuestionHandler.Practice", "limit must be a positive integer", err))
			return
		}
		f.Limit = n
	}

	rows, err := h.svc.ListPractice(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]PracticeQuestion, 0, len(rows))
	for _, q := range rows {
		out = append(out, PracticeQuestion{
			ID:         q.ID,
			Question:   q.Text,
			Difficulty: string(q.Difficulty),
			Role:       q.Role,
			Techs:      q.Techs,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *QuestionHandler) Create(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestionHandler.Create", "invalid request body", err))
		return
	}

	q, err := h.svc.Create(c.Request.Context(), &models.Question{
		Category:   models.Kind(req.Type),
		Text:       req.Question,
		Answer:     req.Answer,
		Difficulty: models.Difficulty(req.Difficulty),
		Role:       req.Role,
		Techs:      req.Techs,
		Keywords:   req.Keywords,
		OrderNo:    req.OrderNo,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}
