package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"whodunnit/internal/game"
	"whodunnit/internal/model"
)

// ScriptRepo handles MongoDB reads for script reference data. Scripts are
// written by the seed tool and read once at startup by the catalog.
type ScriptRepo interface {
	List(ctx context.Context) ([]*model.Script, error)
	GetByID(ctx context.Context, scriptID string) (*model.Script, error)
}

type scriptRepo struct {
	collection *mongo.Collection
}

// NewScriptRepo creates a new script repository.
func NewScriptRepo(db *mongo.Database) ScriptRepo {
	return &scriptRepo{
		collection: db.Collection("scripts"),
	}
}

func (r *scriptRepo) List(ctx context.Context) ([]*model.Script, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: list scripts: %v", game.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var scripts []*model.Script
	if err := cursor.All(ctx, &scripts); err != nil {
		return nil, fmt.Errorf("%w: decode scripts: %v", game.ErrPersistence, err)
	}
	return scripts, nil
}

func (r *scriptRepo) GetByID(ctx context.Context, scriptID string) (*model.Script, error) {
	var script model.Script
	err := r.collection.FindOne(ctx, bson.M{"scriptId": scriptID}).Decode(&script)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, game.ErrScriptNotFound
		}
		return nil, fmt.Errorf("%w: find script: %v", game.ErrPersistence, err)
	}
	return &script, nil
}
