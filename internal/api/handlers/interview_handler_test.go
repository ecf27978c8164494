package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/interviewpilot/internal/questions"
	"github.com/yoockh/interviewpilot/internal/repositories/memory"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/utils"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	svc := services.NewInterviewService(
		memory.NewInterviewRepo(),
		questions.NewBankSource(nil, 1),
		nil,
		services.InterviewOptions{MaxQuestions: 2, Logger: log},
	)
	h := NewInterviewHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if u := c.GetHeader("X-Test-User"); u != "" {
			c.Set("user_id", u)
		}
		c.Next()
	})
	r.POST("/interview/start", h.Start)
	r.POST("/interview/:id/answer", h.Answer)
	r.POST("/interview/:id/stop", h.Stop)
	r.GET("/interview/:id/transcript", h.Transcript)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startInterview(t *testing.T, r *gin.Engine) StartInterviewResponse {
	t.Helper()
	w := do(t, r, http.MethodPost, "/interview/start", "u1", map[string]any{"type": "hr"})
	if w.Code != http.StatusOK {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}
	var resp StartInterviewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestStartRequiresUser(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/interview/start", "", map[string]any{"type": "hr"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestStartRejectsUnknownKind(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/interview/start", "u1", map[string]any{"type": "quiz"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
	var apiErr APIError
	_ = json.Unmarshal(w.Body.Bytes(), &apiErr)
	if apiErr.Code != utils.CodeInvalidArgument {
		t.Fatalf("unexpected code %q", apiErr.Code)
	}
}

func TestAnswerUntilDone(t *testing.T) {
	r := newTestRouter(t)
	started := startInterview(t, r)
	if started.Question != questions.Greeting {
		t.Fatalf("unexpected greeting %q", started.Question)
	}
	if _, err := time.Parse(time.RFC3339, started.StartedAt); err != nil {
		t.Fatalf("started_at is not RFC 3339: %v", err)
	}

	path := "/interview/" + started.InterviewID + "/answer"

	w := do(t, r, http.MethodPost, path, "u1", AnswerRequest{Text: "I'm good, let's start."})
	var first AnswerResponse
	_ = json.Unmarshal(w.Body.Bytes(), &first)
	if w.Code != http.StatusOK || first.Done || first.Question == "" {
		t.Fatalf("expected a follow-up question: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, path, "u1", AnswerRequest{Text: "I led a team through a hard deadline."})
	var last map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &last)
	if w.Code != http.StatusOK || last["done"] != true {
		t.Fatalf("expected done after the cap: %s", w.Body.String())
	}
	if last["reason"] != string(services.ReasonCompleted) || last["message"] == "" {
		t.Fatalf("missing result fields: %v", last)
	}

	w = do(t, r, http.MethodPost, path, "u1", AnswerRequest{Text: "one more"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 after completion, got %d", w.Code)
	}
}

func TestOtherUserIsForbidden(t *testing.T) {
	r := newTestRouter(t)
	started := startInterview(t, r)

	w := do(t, r, http.MethodPost, "/interview/"+started.InterviewID+"/stop", "intruder", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/interview/"+started.InterviewID+"/transcript", "intruder", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestStopThenTranscript(t *testing.T) {
	r := newTestRouter(t)
	started := startInterview(t, r)

	w := do(t, r, http.MethodPost, "/interview/"+started.InterviewID+"/stop", "u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stop: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/interview/"+started.InterviewID+"/transcript", "u1", nil)
	var body struct {
		Turns []map[string]any `json:"turns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Turns) != 1 {
		t.Fatalf("expected only the greeting, got %d turns", len(body.Turns))
	}
}

func TestUnknownInterviewIsNotFound(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/interview/missing/transcript", "u1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
