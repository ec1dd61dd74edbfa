package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"whodunnit/internal/game"
	"whodunnit/internal/model"
)

// SessionRepo handles MongoDB operations for session documents.
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByCode(ctx context.Context, code string) (*model.Session, error)
	Exists(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, session *model.Session) error
	SetRound(ctx context.Context, code string, round model.Round, status model.SessionStatus, at time.Time) error
	SetStatus(ctx context.Context, code string, status model.SessionStatus) error
	AppendAccusation(ctx context.Context, code string, accusation model.Accusation) error
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a new session repository.
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("%w: insert session: %v", game.ErrPersistence, err)
	}
	return nil
}

// GetByCode finds a session by its join code. Absence surfaces as a typed
// not-found error at this boundary so callers never handle nil documents.
func (r *sessionRepo) GetByCode(ctx context.Context, code string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, game.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: find session: %v", game.ErrPersistence, err)
	}
	return &session, nil
}

func (r *sessionRepo) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"code": code})
	if err != nil {
		return false, fmt.Errorf("%w: count sessions: %v", game.ErrPersistence, err)
	}
	return n > 0, nil
}

func (r *sessionRepo) Update(ctx context.Context, session *model.Session) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"code": session.Code}, session)
	if err != nil {
		return fmt.Errorf("%w: update session: %v", game.ErrPersistence, err)
	}
	return nil
}

// SetRound bumps the round marker and status in a single document update.
func (r *sessionRepo) SetRound(ctx context.Context, code string, round model.Round, status model.SessionStatus, at time.Time) error {
	set := bson.M{"round": round, "status": status}
	if round == model.Round1 {
		set["startedAt"] = at
	}
	if round.Terminal() {
		set["endedAt"] = at
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: set round: %v", game.ErrPersistence, err)
	}
	return nil
}

func (r *sessionRepo) SetStatus(ctx context.Context, code string, status model.SessionStatus) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("%w: set status: %v", game.ErrPersistence, err)
	}
	return nil
}

func (r *sessionRepo) AppendAccusation(ctx context.Context, code string, accusation model.Accusation) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$push": bson.M{"accusations": accusation}})
	if err != nil {
		return fmt.Errorf("%w: append accusation: %v", game.ErrPersistence, err)
	}
	return nil
}
