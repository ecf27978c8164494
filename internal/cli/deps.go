package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/yoockh/interviewpilot/config"
	"github.com/yoockh/interviewpilot/internal/cache"
	"github.com/yoockh/interviewpilot/internal/events"
	"github.com/yoockh/interviewpilot/internal/locker"
	"github.com/yoockh/interviewpilot/internal/providers/llm"
	"github.com/yoockh/interviewpilot/internal/providers/stt"
	"github.com/yoockh/interviewpilot/internal/questions"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/repositories/memory"
	mongorepo "github.com/yoockh/interviewpilot/internal/repositories/mongo"
	pgrepo "github.com/yoockh/interviewpilot/internal/repositories/postgres"
	"github.com/yoockh/interviewpilot/internal/services"
	"github.com/yoockh/interviewpilot/internal/storage"
)

// deps is everything serve and worker share. Optional parts stay nil when
// their backend is not configured.
type deps struct {
	cfg *config.Config
	log *logrus.Logger

	pg    *gorm.DB
	mongo *mongo.Client
	redis *redis.Client

	store     repositories.TranscriptStore
	questions repositories.QuestionRepository
	llm       llm.Provider
	stt       stt.Provider
	gcs       *storage.GCSStore

	interviews    services.InterviewService
	practice      services.QuestionService
	transcription services.TranscriptionService
	buffers       services.BufferService
	publisher     events.Publisher
}

func buildDeps(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*deps, error) {
	d := &deps{cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			d.Close()
		}
	}()

	rdb, err := config.OpenRedis(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	d.redis = rdb

	if err := d.openStore(ctx); err != nil {
		return nil, err
	}
	if err := d.openProviders(ctx); err != nil {
		return nil, err
	}

	var lk locker.Locker = locker.NewLocal()
	var pub events.Publisher = events.Nop{}
	var qcache cache.Cache = cache.Nop{}
	if d.redis != nil {
		lk = locker.NewRedis(d.redis, cfg.SessionLockTTL)
		pub = events.NewRedisPublisher(d.redis)
		qcache = cache.NewRedisCache(d.redis, "interviewpilot:")
	}
	d.publisher = pub

	d.interviews = services.NewInterviewService(d.store, d.source(), nil, services.InterviewOptions{
		MaxQuestions:    cfg.MaxQuestions,
		SummaryTop:      cfg.SummaryTop,
		QuestionTimeout: cfg.QuestionTimeout,
		Locker:          lk,
		Publisher:       pub,
		Logger:          log,
	})
	d.practice = services.NewQuestionService(d.questions, qcache, cfg.PracticeCacheTTL, log)

	var uploader storage.Uploader
	if d.gcs != nil {
		uploader = d.gcs
	}
	d.transcription = services.NewTranscriptionService(d.stt, uploader, cfg.STTLanguage, log)

	// audio answers need both the Mongo buffer and the Redis stream
	if d.mongo != nil && d.redis != nil {
		db := d.mongo.Database(cfg.MongoDB)
		if err := config.EnsureMongoIndexes(ctx, db); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		d.buffers = services.NewBufferService(mongorepo.NewBufferRepo(db), d.redis, cfg.AudioStream, cfg.BufferTTL)
	}

	ok = true
	return d, nil
}

func (d *deps) openStore(ctx context.Context) error {
	cfg := d.cfg

	// the audio buffer lives in Mongo whatever the transcript backend is
	if cfg.MongoURI != "" {
		client, err := config.OpenMongo(ctx, cfg)
		if err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		d.mongo = client
	}

	switch cfg.StoreBackend {
	case "postgres":
		db, err := config.OpenPostgres(cfg)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		d.pg = db
		d.store = pgrepo.NewInterviewRepo(db)
		d.questions = pgrepo.NewQuestionRepo(db)
	case "mongo":
		if d.mongo == nil {
			return fmt.Errorf("mongo: MONGO_URI is not set")
		}
		d.store = mongorepo.NewInterviewRepo(d.mongo.Database(cfg.MongoDB))
		d.questions = questions.NewStaticBank(questions.BuiltinQuestions())
	default:
		d.store = memory.NewInterviewRepo()
		d.questions = questions.NewStaticBank(questions.BuiltinQuestions())
	}
	return nil
}

func (d *deps) openProviders(ctx context.Context) error {
	cfg := d.cfg

	switch cfg.LLMProvider {
	case "vertex":
		p, err := llm.NewVertexGemini(ctx, cfg.GCPProjectID, cfg.GCPLocation, cfg.LLMModel)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		d.llm = p
	case "gemini":
		p, err := llm.NewGeminiAPI(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return fmt.Errorf("gemini: %w", err)
		}
		d.llm = p
	}

	switch cfg.STTProvider {
	case "google":
		p, err := stt.NewGoogleSpeech(ctx)
		if err != nil {
			return fmt.Errorf("speech: %w", err)
		}
		d.stt = p
	case "whisper":
		d.stt = stt.NewWhisperHTTP(cfg.WhisperURL, 0)
	}

	if cfg.AudioBucket != "" {
		g, err := storage.NewGCSStore(ctx, cfg.AudioBucket)
		if err != nil {
			return fmt.Errorf("gcs: %w", err)
		}
		d.gcs = g
	}
	return nil
}

// source picks the LLM interviewer when one is configured, otherwise the
// question bank.
func (d *deps) source() questions.Source {
	if d.llm != nil {
		d.log.WithField("provider", d.llm.Name()).Info("questions from llm")
		return questions.NewLLMSource(d.llm)
	}
	return questions.NewBankSource(d.questions, d.cfg.QuestionMaxRepeats)
}

func (d *deps) Close() {
	if d.llm != nil {
		_ = d.llm.Close()
	}
	if d.stt != nil {
		_ = d.stt.Close()
	}
	if d.gcs != nil {
		_ = d.gcs.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.mongo != nil {
		_ = d.mongo.Disconnect(context.Background())
	}
	if d.pg != nil {
		if sqlDB, err := d.pg.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
