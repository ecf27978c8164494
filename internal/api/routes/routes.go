package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yoockh/interviewpilot/internal/api/handlers"
	"github.com/yoockh/interviewpilot/internal/api/middleware"
)

type Deps struct {
	Interview *handlers.InterviewHandler
	Question  *handlers.QuestionHandler
	STT       *handlers.STTHandler
	WS        *handlers.WSHandler
	JWT       middleware.JWTConfig
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// practice listing is public
	r.GET("/practice/questions", d.Question.Practice)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth(d.JWT))

	auth.POST("/interview/start", d.Interview.Start)
	auth.GET("/interview/:id", d.Interview.Get)
	auth.GET("/interview/:id/transcript", d.Interview.Transcript)
	auth.POST("/interview/:id/answer", d.Interview.Answer)
	auth.POST("/interview/:id/stop", d.Interview.Stop)

	auth.GET("/interviews", d.Interview.List)
	auth.GET("/interviews/progress", d.Interview.Progress)

	auth.POST("/stt", d.STT.Transcribe)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/questions", d.Question.Create)

	// WebSocket
	auth.GET("/ws/interview/:id", d.WS.InterviewWS)
}
