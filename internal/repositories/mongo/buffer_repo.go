package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/utils"
)

// BufferRepository holds spoken answers between upload and transcription.
// Rows expire through the TTL index on expires_at.
type BufferRepository interface {
	Insert(ctx context.Context, a *models.AudioAnswer) error
	Get(ctx context.Context, interviewID string, chunkIndex int64) (*models.AudioAnswer, error)
	UpdateSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status string) error
	UpdateAnswer(ctx context.Context, interviewID string, chunkIndex int64, status string, processingMS int64) error
	ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioAnswer, error)
}

type bufferRepo struct {
	col *mongo.Collection
}

func NewBufferRepo(db *mongo.Database) BufferRepository {
	return &bufferRepo{col: db.Collection("realtime_buffer")}
}

func (r *bufferRepo) Insert(ctx context.Context, a *models.AudioAnswer) error {
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *bufferRepo) Get(ctx context.Context, interviewID string, chunkIndex int64) (*models.AudioAnswer, error) {
	var a models.AudioAnswer
	err := r.col.FindOne(ctx, bson.M{"interview_id": interviewID, "chunk_index": chunkIndex}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *bufferRepo) UpdateSTT(ctx context.Context, interviewID string, chunkIndex int64, rawText string, confidence float64, status string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID, "chunk_index": chunkIndex},
		bson.M{
			"$set": bson.M{
				"raw_text":       rawText,
				"stt_confidence": confidence,
				"stt_status":     status,
			},
			// audio is no longer needed once transcribed
			"$unset": bson.M{"audio_base64": ""},
		},
	)
	return err
}

func (r *bufferRepo) UpdateAnswer(ctx context.Context, interviewID string, chunkIndex int64, status string, processingMS int64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"interview_id": interviewID, "chunk_index": chunkIndex},
		bson.M{"$set": bson.M{
			"answer_status":      status,
			"processing_time_ms": processingMS,
		}},
	)
	return err
}

func (r *bufferRepo) ListByInterview(ctx context.Context, interviewID string, limit int64) ([]models.AudioAnswer, error) {
	if limit <= 0 {
		limit = 200
	}

	cur, err := r.col.Find(ctx,
		bson.M{"interview_id": interviewID},
		options.Find().
			SetSort(bson.D{{Key: "chunk_index", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AudioAnswer
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
