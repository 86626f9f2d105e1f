package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsjohal14/songstack/internal/libs/accel"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const idIndexName = "id_unique"

// MongoConfig holds configuration for MongoStore
type MongoConfig struct {
	// URI is the mongodb:// connection string
	URI string

	// Database is the database name
	Database string

	// Collection is the song collection name
	Collection string

	// BatchSize is the InsertMany chunk size used by Reseed
	BatchSize int
}

// MongoStore is a MongoDB-backed song store
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	batch  *accel.Batch
}

// NewMongoStore connects to MongoDB and ensures the unique id index
func NewMongoStore(ctx context.Context, config MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	store := &MongoStore{
		client: client,
		coll:   client.Database(config.Database).Collection(config.Collection),
		batch:  accel.NewBatch(config.BatchSize),
	}

	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return store, nil
}

// ensureIndexes creates the unique index on the application id
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: IDField, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(idIndexName),
	})
	if err != nil {
		return fmt.Errorf("failed to create id index: %w", err)
	}
	return nil
}

// Ping probes the primary
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Count returns the number of songs in the collection
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

// List returns every song in natural order
func (s *MongoStore) List(ctx context.Context) ([]Song, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode songs: %w", err)
	}

	songs := make([]Song, len(docs))
	for i, doc := range docs {
		songs[i] = Song(doc)
	}
	return songs, nil
}

// Get retrieves a song by id
func (s *MongoStore) Get(ctx context.Context, id int64) (Song, error) {
	return s.findOne(ctx, byID(id))
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (Song, error) {
	var doc bson.D
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find song: %w", err)
	}
	return Song(doc), nil
}

// Create inserts the song as given. The unique id index rejects a second
// insert for the same id, so concurrent creates cannot both succeed.
func (s *MongoStore) Create(ctx context.Context, song Song) (Song, error) {
	if _, err := songID(song); err != nil {
		return nil, err
	}

	doc := song.WithObjectID()
	if _, err := s.coll.InsertOne(ctx, bson.D(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("failed to insert song: %w", err)
	}
	return doc, nil
}

// Update applies patch with $set and returns the post-merge song
func (s *MongoStore) Update(ctx context.Context, id int64, patch Song) (Song, error) {
	if len(patch) == 0 {
		return s.Get(ctx, id)
	}

	var doc bson.D
	err := s.coll.FindOneAndUpdate(ctx,
		byID(id),
		bson.D{{Key: "$set", Value: bson.D(patch)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update song %d: %w", id, err)
	}
	return Song(doc), nil
}

// Delete removes a song by id
func (s *MongoStore) Delete(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reseed drops the collection and inserts songs in ordered batches
func (s *MongoStore) Reseed(ctx context.Context, songs []Song) (int, error) {
	if err := s.coll.Drop(ctx); err != nil {
		return 0, fmt.Errorf("failed to drop collection: %w", err)
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return 0, err
	}

	inserted := 0
	err := accel.Each(s.batch, songs, func(chunk []Song) error {
		docs := make([]interface{}, len(chunk))
		for i, song := range chunk {
			docs[i] = bson.D(song)
		}
		res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
		if res != nil {
			inserted += len(res.InsertedIDs)
		}
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return err
	})
	if err != nil {
		return inserted, fmt.Errorf("failed to seed songs: %w", err)
	}
	return inserted, nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func byID(id int64) bson.D {
	return bson.D{{Key: IDField, Value: id}}
}
