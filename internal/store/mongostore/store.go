// internal/store/mongostore/store.go
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"storyhub/internal/observability/logging"
	"storyhub/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// uniqueIndexes are created on connect
var uniqueIndexes = map[string]string{
	store.Users:      "email",
	store.Categories: "name",
}

// Store is a store.Store backed by MongoDB
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logging.Logger
}

// Config holds MongoDB connection settings
type Config struct {
	// URI is the connection string
	URI string

	// Database is the database name
	Database string
}

// Connect opens a client, verifies it with a ping and ensures indexes
func Connect(ctx context.Context, cfg Config, logger *logging.Logger) (*Store, error) {
	logger = logger.WithModule("store.mongo")
	logger.Debug("Connecting to MongoDB", "uri", logging.RedactURI(cfg.URI), "database", cfg.Database)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Connected to MongoDB", "database", cfg.Database)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	for collection, field := range uniqueIndexes {
		_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create unique index on %s.%s: %w", collection, field, err)
		}
	}
	return nil
}

func projection(o store.FindOptions) bson.M {
	if len(o.Exclude) == 0 {
		return nil
	}
	p := make(bson.M, len(o.Exclude))
	for _, f := range o.Exclude {
		p[f] = 0
	}
	return p
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

// FindByID implements store.Store
func (s *Store) FindByID(ctx context.Context, collection, id string, out any, opts ...store.FindOption) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	return s.FindOne(ctx, collection, store.Filter{"_id": oid}, out, opts...)
}

// FindOne implements store.Store
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any, opts ...store.FindOption) error {
	findOpts := options.FindOne()
	if p := projection(store.ApplyOptions(opts)); p != nil {
		findOpts.SetProjection(p)
	}

	err := s.db.Collection(collection).FindOne(ctx, filter, findOpts).Decode(out)
	return translate(err)
}

// Find implements store.Store
func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, out any, opts ...store.FindOption) error {
	o := store.ApplyOptions(opts)
	findOpts := options.Find()
	if p := projection(o); p != nil {
		findOpts.SetProjection(p)
	}
	if o.SortField != "" {
		order := 1
		if o.Descending {
			order = -1
		}
		findOpts.SetSort(bson.D{{Key: o.SortField, Value: order}})
	}

	if filter == nil {
		filter = store.Filter{}
	}
	cursor, err := s.db.Collection(collection).Find(ctx, filter, findOpts)
	if err != nil {
		return translate(err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

// Save implements store.Store. Concurrent saves of one document are last-write-wins.
func (s *Store) Save(ctx context.Context, collection string, doc store.Document) error {
	id := store.EnsureID(doc)
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id},
		doc,
		options.Replace().SetUpsert(true),
	)
	return translate(err)
}

// DeleteOne implements store.Store
func (s *Store) DeleteOne(ctx context.Context, collection, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	s.logger.Info("Disconnecting from MongoDB")
	return s.client.Disconnect(ctx)
}
