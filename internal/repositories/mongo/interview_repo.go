package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/interviewpilot/internal/models"
	"github.com/yoockh/interviewpilot/internal/repositories"
	"github.com/yoockh/interviewpilot/internal/utils"
)

const appendAttempts = 5

// interviewRepo stores each interview as one document with its turns
// embedded.
type interviewRepo struct {
	col *mongo.Collection
}

func NewInterviewRepo(db *mongo.Database) repositories.TranscriptStore {
	return &interviewRepo{col: db.Collection("interviews")}
}

func (r *interviewRepo) CreateSession(ctx context.Context, iv *models.Interview) error {
	if iv.ID == "" {
		iv.ID = uuid.NewString()
	}
	if iv.StartedAt.IsZero() {
		iv.StartedAt = time.Now().UTC()
	}
	repositories.NumberTurns(iv.ID, iv.Turns)
	doc := *iv
	// $size needs an array, not null
	doc.Turns = append([]models.Turn{}, iv.Turns...)
	_, err := r.col.InsertOne(ctx, &doc)
	return err
}

// AppendTurn pushes conditionally on the current turn count, so two writers
// never get the same seq. A lost race re-reads and retries.
func (r *interviewRepo) AppendTurn(ctx context.Context, interviewID string, t *models.Turn) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.InterviewID = interviewID

	for attempt := 0; attempt < appendAttempts; attempt++ {
		var cur struct {
			EndedAt *time.Time `bson:"ended_at"`
			Turns   []struct {
				Seq int `bson:"seq"`
			} `bson:"turns"`
		}
		err := r.col.FindOne(ctx,
			bson.M{"_id": interviewID},
			options.FindOne().SetProjection(bson.M{"ended_at": 1, "turns.seq": 1}),
		).Decode(&cur)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.ErrNotFound
		}
		if err != nil {
			return err
		}
		if cur.EndedAt != nil {
			return utils.ErrClosed
		}

		n := len(cur.Turns)
		t.Seq = n + 1
		res, err := r.col.UpdateOne(ctx,
			bson.M{"_id": interviewID, "ended_at": nil, "turns": bson.M{"$size": n}},
			bson.M{"$push": bson.M{"turns": t}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 1 {
			return nil
		}
	}
	return fmt.Errorf("append turn to %s: too much contention", interviewID)
}

func (r *interviewRepo) CloseSession(ctx context.Context, interviewID string, c repositories.Closing) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": interviewID, "ended_at": nil},
		bson.M{"$set": bson.M{
			"ended_at": c.EndedAt.UTC(),
			"score":    c.Score,
			"summary":  c.Summary,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": interviewID})
	if err != nil {
		return err
	}
	if n == 0 {
		return utils.ErrNotFound
	}
	return utils.ErrClosed
}

func (r *interviewRepo) GetSession(ctx context.Context, interviewID string) (*models.Interview, error) {
	var iv models.Interview
	err := r.col.FindOne(ctx, bson.M{"_id": interviewID}).Decode(&iv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	for i := range iv.Turns {
		iv.Turns[i].InterviewID = iv.ID
	}
	return &iv, nil
}

func (r *interviewRepo) ListSessionsByParticipant(ctx context.Context, userID string) ([]models.Interview, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "started_at", Value: -1}}).
			SetProjection(bson.M{"turns": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
