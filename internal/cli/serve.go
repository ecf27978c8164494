package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/yoockh/interviewpilot/internal/api/handlers"
	"github.com/yoockh/interviewpilot/internal/api/middleware"
	"github.com/yoockh/interviewpilot/internal/api/routes"
	"github.com/yoockh/interviewpilot/internal/workers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("with-workers", false, "also consume the audio stream in this process")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if withWorkers, _ := cmd.Flags().GetBool("with-workers"); withWorkers {
		if err := startWorkers(ctx, d); err != nil {
			return err
		}
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(d.interviews),
		Question:  handlers.NewQuestionHandler(d.practice),
		STT:       handlers.NewSTTHandler(d.transcription, d.interviews),
		WS:        handlers.NewWSHandler(d.interviews, d.buffers, d.redis, log),
		JWT: middleware.JWTConfig{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).WithField("store", cfg.StoreBackend).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func startWorkers(ctx context.Context, d *deps) error {
	if d.buffers == nil || d.stt == nil {
		return errors.New("audio workers need MONGO_URI, REDIS_ADDR and STT_PROVIDER")
	}

	pool := &workers.AudioWorkerPool{
		Redis:      d.redis,
		Buffers:    d.buffers,
		Interviews: d.interviews,
		Events:     d.publisher,
		NumWorkers: d.cfg.WorkerCount,
		STT:        d.stt,
		Logger:     d.log,
		Stream:     d.cfg.AudioStream,
		Group:      d.cfg.AudioGroup,
		Language:   d.cfg.STTLanguage,
	}
	if d.gcs != nil {
		pool.Audio = d.gcs
	}
	return pool.Start(ctx)
}
