package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/pokesimon-services/internal/gamesvc/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const GamesCollection = "games"

type MongoGameStore struct {
	collection *mongo.Collection
	ttl        time.Duration // 0 keeps games forever
}

func NewMongoGameStore(db *mongo.Database, ttl time.Duration) *MongoGameStore {
	return &MongoGameStore{collection: db.Collection(GamesCollection), ttl: ttl}
}

type gameDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	InitialTeam []int              `bson:"initialTeam"`
	Sequence    []int              `bson:"pokemonSequence"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
	ExpiresAt   *time.Time         `bson:"expires_at,omitempty"`
}

func (d *gameDocument) toModel() *models.Game {
	return &models.Game{
		ID:          d.ID.Hex(),
		InitialTeam: nonNil(d.InitialTeam),
		Sequence:    nonNil(d.Sequence),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *MongoGameStore) CreateGame(ctx context.Context, initialTeam, sequence []int) (*models.Game, error) {
	now := time.Now().UTC()
	doc := gameDocument{
		InitialTeam: nonNil(initialTeam),
		Sequence:    nonNil(sequence),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.ttl > 0 {
		expiresAt := now.Add(s.ttl)
		doc.ExpiresAt = &expiresAt
	}

	res, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: insert game: %w", ErrPersistence, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected inserted id %v", ErrPersistence, res.InsertedID)
	}
	doc.ID = oid

	return doc.toModel(), nil
}

func (s *MongoGameStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	oid, err := primitive.ObjectIDFromHex(gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}

	var doc gameDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("%w: find game: %w", ErrPersistence, err)
	}

	return doc.toModel(), nil
}

// UpdateSequence filters on the previously read sequence, so the write only
// lands if nobody extended the game in between.
func (s *MongoGameStore) UpdateSequence(ctx context.Context, gameID string, expected, next []int) (*models.Game, error) {
	oid, err := primitive.ObjectIDFromHex(gameID)
	if err != nil {
		return nil, ErrGameNotFound
	}

	filter := bson.M{"_id": oid, "pokemonSequence": nonNil(expected)}
	update := bson.M{"$set": bson.M{
		"pokemonSequence": nonNil(next),
		"updatedAt":       time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc gameDocument
	err = s.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toModel(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: update game sequence: %w", ErrPersistence, err)
	}

	// nothing matched: either the game is gone or its sequence moved on
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("%w: count game: %w", ErrPersistence, err)
	}
	if n == 0 {
		return nil, ErrGameNotFound
	}
	return nil, ErrConflict
}
