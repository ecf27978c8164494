package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type InterviewHandler struct {
	svc services.InterviewService
}

func NewInterviewHandler(svc services.InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

type StartInterviewRequest struct {
	Type       string   `json:"type" binding:"required"` // hr|technical
	Role       string   `json:"role"`
	Techs      []string `json:"techs"`
	Difficulty string   `json:"difficulty"` // beginner|intermediate|advanced
}

type StartInterviewResponse struct {
	InterviewID string `json:"interview_id"`
	Question    string `json:"question"`
	QuestionID  string `json:"question_id,omitempty"`
	StartedAt   string `json:"started_at"`
}

type AnswerRequest struct {
	Text string `json:"text" binding:"required"`
}

type AnswerResponse struct {
	Done bool `json:"done"`

	Question    string `json:"question,omitempty"`
	QuestionID  string `json:"question_id,omitempty"`
	RepeatCount int    `json:"repeat_count,omitempty"`

	*services.Result
}

func (h *InterviewHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req StartInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "InterviewHandler.Start", "invalid request body", err))
		return
	}

	iv, q, err := h.svc.Start(c.Request.Context(), services.StartInput{
		UserID:       userID,
		Kind:         models.Kind(req.Type),
		Role:         req.Role,
		Technologies: req.Techs,
		Difficulty:   models.Difficulty(req.Difficulty),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartInterviewResponse{
		InterviewID: iv.ID,
		Question:    q.Text,
		QuestionID:  q.QuestionID,
		StartedAt:   iv.StartedAt.Format(time.RFC3339),
	})
}

func (h *InterviewHandler) Answer(c *gin.Context) {
	const op = "InterviewHandler.Answer"

	iv, ok := ownInterview(c, h.svc, op)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	reply, err := h.svc.SubmitAnswer(c.Request.Context(), iv.ID, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	if reply.Done {
		c.JSON(http.StatusOK, AnswerResponse{Done: true, Result: reply.Result})
		return
	}
	c.JSON(http.StatusOK, AnswerResponse{
		Question:    reply.Question.Text,
		QuestionID:  reply.Question.QuestionID,
		RepeatCount: reply.Question.RepeatCount,
	})
}

func (h *InterviewHandler) Stop(c *gin.Context) {
	iv, ok := ownInterview(c, h.svc, "InterviewHandler.Stop")
	if !ok {
		return
	}

	res, err := h.svc.Stop(c.Request.Context(), iv.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, AnswerResponse{Done: true, Result: res})
}

func (h *InterviewHandler) Get(c *gin.Context) {
	iv, ok := ownInterview(c, h.svc, "InterviewHandler.Get")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, iv)
}

func (h *InterviewHandler) Transcript(c *gin.Context) {
	iv, ok := ownInterview(c, h.svc, "InterviewHandler.Transcript")
	if !ok {
		return
	}
	turns := iv.Turns
	if turns == nil {
		turns = []models.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{"interview_id": iv.ID, "turns": turns})
}

func (h *InterviewHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.svc.ListByParticipant(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *InterviewHandler) Progress(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.Progress(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
