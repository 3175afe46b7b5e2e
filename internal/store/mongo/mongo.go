package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fuzichat/fuzichat-server/internal/store"
)

const collectionName = "messages"

// messageDoc is the BSON shape of a message record in MongoDB.
type messageDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Author      string             `bson:"author"`
	Text        string             `bson:"text"`
	ImageURL    string             `bson:"imageUrl"`
	VideoURL    string             `bson:"videoUrl"`
	StickerID   string             `bson:"stickerId"`
	IsModerator bool               `bson:"isModerator"`
	IsDeleted   bool               `bson:"isDeleted"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *messageDoc) toMessage() *store.Message {
	return &store.Message{
		ID:          d.ID.Hex(),
		Author:      d.Author,
		Text:        d.Text,
		ImageURL:    d.ImageURL,
		VideoURL:    d.VideoURL,
		StickerID:   d.StickerID,
		IsModerator: d.IsModerator,
		IsDeleted:   d.IsDeleted,
		CreatedAt:   d.CreatedAt,
	}
}

// MongoStore implements store.MessageStore on a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to MongoDB at uri and uses the given database. The driver
// reconnects on its own, so a server that is unreachable at startup is not
// fatal here; individual operations fail until it comes back.
func New(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// Ping verifies the server is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from the server.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Insert persists a draft and returns the stored record.
func (s *MongoStore) Insert(ctx context.Context, draft store.MessageDraft) (*store.Message, error) {
	doc := messageDoc{
		Author:      draft.Author,
		Text:        draft.Text,
		ImageURL:    draft.ImageURL,
		VideoURL:    draft.VideoURL,
		StickerID:   draft.StickerID,
		IsModerator: draft.IsModerator,
		IsDeleted:   false,
		CreatedAt:   time.Now().UTC(),
	}

	result, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	doc.ID = id

	return doc.toMessage(), nil
}

// ListRecent returns the most recent limit messages, oldest first.
func (s *MongoStore) ListRecent(ctx context.Context, limit int) ([]*store.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	// Newest first from the query; history is delivered oldest first.
	messages := make([]*store.Message, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		messages = append(messages, docs[i].toMessage())
	}

	return messages, nil
}

// GetByID retrieves a message by its hex object id.
func (s *MongoStore) GetByID(ctx context.Context, id string) (*store.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var doc messageDoc
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	return doc.toMessage(), nil
}

// MarkDeleted applies the soft-delete transform and returns the updated record.
func (s *MongoStore) MarkDeleted(ctx context.Context, id, placeholder string) (*store.Message, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "text", Value: placeholder},
		{Key: "imageUrl", Value: ""},
		{Key: "videoUrl", Value: ""},
		{Key: "stickerId", Value: ""},
		{Key: "isDeleted", Value: true},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc messageDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update message: %w", err)
	}

	return doc.toMessage(), nil
}
