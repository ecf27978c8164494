package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/interviewpilot/internal/events"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/utils"
)

type WSHandler struct {
	interviews services.InterviewService
	buffers    services.BufferService // nil: audio answers disabled
	redis      *redis.Client
	log        *logrus.Logger
	upgrader   websocket.Upgrader
}

func NewWSHandler(interviews services.InterviewService, buffers services.BufferService, rdb *redis.Client, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		buffers:    buffers,
		redis:      rdb,
		log:        log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type string `json:"type"` // answer|audio_answer|stop

	Text string `json:"text"`

	ChunkIndex  int64  `json:"chunk_index"`
	AudioBase64 string `json:"audio_base64"`
	AudioURL    string `json:"audio_url"`
	Language    string `json:"lang"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) writeError(err error) {
	var ae *utils.AppError
	msg := "internal error"
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	b, _ := json.Marshal(map[string]any{
		"type":      events.TypeError,
		"code":      utils.CodeOf(err),
		"message":   msg,
		"retryable": utils.Retryable(err),
	})
	_ = w.writeText(b)
}

// InterviewWS streams an interview: typed and spoken answers go in, question,
// transcript and completion events come out. Events are delivered through
// Redis pub/sub so workers on other instances reach this socket too.
func (h *WSHandler) InterviewWS(c *gin.Context) {
	iv, ok := ownInterview(c, h.interviews, "WSHandler.InterviewWS")
	if !ok {
		return
	}
	if h.redis == nil {
		writeError(c, utils.E(utils.CodeUnavailable, "WSHandler.InterviewWS", "realtime interviews need redis", nil))
		return
	}
	interviewID := iv.ID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.redis.Subscribe(ctx, events.Channel(interviewID))
	defer pubsub.Close()

	log := h.log.WithField("session_id", interviewID)

	// reader: WS -> interview service / audio queue
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				wc.writeError(utils.E(utils.CodeInvalidArgument, "WSHandler", "invalid json", err))
				continue
			}

			switch msg.Type {
			case "answer":
				// the reply reaches the client as a published event
				if _, err := h.interviews.SubmitAnswer(ctx, interviewID, msg.Text); err != nil {
					log.WithError(err).Debug("ws answer rejected")
					wc.writeError(err)
				}

			case "audio_answer":
				if h.buffers == nil {
					wc.writeError(utils.E(utils.CodeUnavailable, "WSHandler", "audio answers are not enabled", nil))
					continue
				}
				var audioBase64Ptr, audioURLPtr *string
				if msg.AudioBase64 != "" {
					audioBase64Ptr = &msg.AudioBase64
				}
				if msg.AudioURL != "" {
					audioURLPtr = &msg.AudioURL
				}
				if _, err := h.buffers.Enqueue(ctx, interviewID, msg.ChunkIndex, audioURLPtr, audioBase64Ptr, msg.Language); err != nil {
					wc.writeError(err)
					continue
				}
				b, _ := json.Marshal(map[string]any{
					"type": events.TypeStatus, "status": "queued", "chunk_index": msg.ChunkIndex,
				})
				_ = wc.writeText(b)

			case "stop":
				if _, err := h.interviews.Stop(ctx, interviewID); err != nil {
					wc.writeError(err)
				}

			default:
				wc.writeError(utils.E(utils.CodeInvalidArgument, "WSHandler", "unknown message type", nil))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	msgs := pubsub.Channel()
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			wc.mu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			wc.mu.Unlock()
			if err != nil {
				return
			}
		case m, ok := <-msgs:
			if !ok {
				return
			}
			// forward as-is (payload is an events.Event)
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}
