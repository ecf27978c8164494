package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type STTHandler struct {
	svc        services.TranscriptionService
	interviews services.InterviewService
}

func NewSTTHandler(svc services.TranscriptionService, interviews services.InterviewService) *STTHandler {
	return &STTHandler{svc: svc, interviews: interviews}
}

// Transcribe takes multipart field "audio" and optional "interview_id" and
// "lang". With an interview id the recording is archived under it.
func (h *STTHandler) Transcribe(c *gin.Context) {
	const op = "STTHandler.Transcribe"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("audio")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "no audio file uploaded", err))
		return
	}
	if fh.Size <= 0 || fh.Size > services.MaxAudioBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max 15MB)", nil))
		return
	}

	interviewID := c.PostForm("interview_id")
	if interviewID != "" {
		iv, err := h.interviews.Get(c.Request.Context(), interviewID)
		if err != nil {
			writeError(c, err)
			return
		}
		if iv.UserID != userID {
			writeError(c, utils.E(utils.CodeForbidden, op, "forbidden", nil))
			return
		}
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, services.MaxAudioBytes+1))
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to read upload", err))
		return
	}

	out, err := h.svc.Transcribe(c.Request.Context(), interviewID, fh.Filename, audio, c.PostForm("lang"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
