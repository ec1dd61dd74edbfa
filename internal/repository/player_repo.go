package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"whodunnit/internal/game"
	"whodunnit/internal/model"
)

// PlayerRepo handles MongoDB operations for player sub-records, keyed by
// session code plus player identity.
type PlayerRepo interface {
	Create(ctx context.Context, player *model.Player) error
	Get(ctx context.Context, code, playerID string) (*model.Player, error)
	GetByCharacter(ctx context.Context, code, characterName string) (*model.Player, error)
	ListBySession(ctx context.Context, code string) ([]*model.Player, error)
	Update(ctx context.Context, player *model.Player) error
	Delete(ctx context.Context, code, playerID string) error
	SetReadiness(ctx context.Context, code, playerID string, round model.Round, readiness model.Readiness) error
	ResetReadiness(ctx context.Context, code string, round model.Round, at time.Time) error
	AppendAccusation(ctx context.Context, code, playerID string, accusation model.PlayerAccusation) error
}

type playerRepo struct {
	collection *mongo.Collection
}

// NewPlayerRepo creates a new player repository.
func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection("players"),
	}
}

func (r *playerRepo) filter(code, playerID string) bson.M {
	return bson.M{"sessionCode": code, "playerId": playerID}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	_, err := r.collection.InsertOne(ctx, player)
	if err != nil {
		return fmt.Errorf("%w: insert player: %v", game.ErrPersistence, err)
	}
	return nil
}

func (r *playerRepo) Get(ctx context.Context, code, playerID string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, r.filter(code, playerID)).Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, game.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w: find player: %v", game.ErrPersistence, err)
	}
	return &player, nil
}

func (r *playerRepo) GetByCharacter(ctx context.Context, code, characterName string) (*model.Player, error) {
	var player model.Player
	filter := bson.M{"sessionCode": code, "characterName": characterName}
	err := r.collection.FindOne(ctx, filter).Decode(&player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, game.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w: find player by character: %v", game.ErrPersistence, err)
	}
	return &player, nil
}

// ListBySession returns players in join order.
func (r *playerRepo) ListBySession(ctx context.Context, code string) ([]*model.Player, error) {
	opts := options.Find().SetSort(bson.M{"joinedAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionCode": code}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list players: %v", game.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("%w: decode players: %v", game.ErrPersistence, err)
	}
	return players, nil
}

func (r *playerRepo) Update(ctx context.Context, player *model.Player) error {
	_, err := r.collection.ReplaceOne(ctx, r.filter(player.SessionCode, player.ID), player)
	if err != nil {
		return fmt.Errorf("%w: update player: %v", game.ErrPersistence, err)
	}
	return nil
}

func (r *playerRepo) Delete(ctx context.Context, code, playerID string) error {
	_, err := r.collection.DeleteOne(ctx, r.filter(code, playerID))
	if err != nil {
		return fmt.Errorf("%w: delete player: %v", game.ErrPersistence, err)
	}
	return nil
}

// SetReadiness writes through round.Key(): the accusation round's "5.5"
// would read as a nested path in the $set below.
func (r *playerRepo) SetReadiness(ctx context.Context, code, playerID string, round model.Round, readiness model.Readiness) error {
	update := bson.M{"$set": bson.M{"readiness." + round.Key(): readiness}}
	_, err := r.collection.UpdateOne(ctx, r.filter(code, playerID), update)
	if err != nil {
		return fmt.Errorf("%w: set readiness: %v", game.ErrPersistence, err)
	}
	return nil
}

// ResetReadiness clears the new round's ready flag for every player in the
// session. One UpdateMany; each document update is atomic but the batch as
// a whole is not, so a crash can leave stale entries the host corrects via
// the readiness override.
func (r *playerRepo) ResetReadiness(ctx context.Context, code string, round model.Round, at time.Time) error {
	update := bson.M{"$set": bson.M{"readiness." + round.Key(): model.Readiness{Ready: false, ReadyAt: at}}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"sessionCode": code}, update)
	if err != nil {
		return fmt.Errorf("%w: reset readiness: %v", game.ErrPersistence, err)
	}
	return nil
}

func (r *playerRepo) AppendAccusation(ctx context.Context, code, playerID string, accusation model.PlayerAccusation) error {
	update := bson.M{"$push": bson.M{"accusations": accusation}}
	_, err := r.collection.UpdateOne(ctx, r.filter(code, playerID), update)
	if err != nil {
		return fmt.Errorf("%w: append accusation: %v", game.ErrPersistence, err)
	}
	return nil
}
