package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pschleger/workflow-canvas/pkg/errors"
	"github.com/pschleger/workflow-canvas/pkg/workflow"
)

// MongoConfig configures the MongoDB-backed store.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name. Defaults to "flowcanvas".
	Database string

	// Collection is the collection name. Defaults to "workflows".
	Collection string
}

// MongoStore persists workflows in a single MongoDB collection, one
// document per workflow holding both halves. Saves are partial upserts so
// a configuration write never clobbers a concurrent layout write.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// mongoDocument is the collection schema.
type mongoDocument struct {
	ID            string                  `bson:"_id"`
	EntityRef     string                  `bson:"entityRef,omitempty"`
	Configuration *workflow.Configuration `bson:"configuration,omitempty"`
	Layout        *workflow.CanvasLayout  `bson:"layout,omitempty"`
	UpdatedAt     time.Time               `bson:"updatedAt"`
}

// NewMongoStore connects to MongoDB and pings it to fail fast on bad
// configuration.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "flowcanvas"
	}
	if cfg.Collection == "" {
		cfg.Collection = "workflows"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "pinging mongodb")
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// LoadConfiguration retrieves the business half of a workflow.
func (s *MongoStore) LoadConfiguration(ctx context.Context, workflowID string) (ConfigurationRecord, error) {
	doc, err := s.find(ctx, workflowID)
	if err != nil {
		return ConfigurationRecord{}, err
	}
	if doc.Configuration == nil {
		return ConfigurationRecord{}, notFound(workflowID, "configuration")
	}
	return ConfigurationRecord{
		EntityRef:     doc.EntityRef,
		Configuration: *doc.Configuration,
	}, nil
}

// LoadLayout retrieves the visual half of a workflow.
func (s *MongoStore) LoadLayout(ctx context.Context, workflowID string) (workflow.CanvasLayout, error) {
	doc, err := s.find(ctx, workflowID)
	if err != nil {
		return workflow.CanvasLayout{}, err
	}
	if doc.Layout == nil {
		return workflow.CanvasLayout{}, notFound(workflowID, "layout")
	}
	l := *doc.Layout
	if l.States == nil {
		l.States = make(map[string]workflow.StateLayout)
	}
	return l, nil
}

// SaveConfiguration stores the business half of a workflow.
func (s *MongoStore) SaveConfiguration(ctx context.Context, workflowID string, rec ConfigurationRecord) error {
	return s.upsert(ctx, workflowID, bson.M{
		"entityRef":     rec.EntityRef,
		"configuration": rec.Configuration,
	})
}

// SaveLayout stores the visual half of a workflow.
func (s *MongoStore) SaveLayout(ctx context.Context, workflowID string, l workflow.CanvasLayout) error {
	return s.upsert(ctx, workflowID, bson.M{"layout": l})
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) find(ctx context.Context, workflowID string) (mongoDocument, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": workflowID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return mongoDocument{}, notFound(workflowID, "document")
	}
	if err != nil {
		return mongoDocument{}, errors.Wrap(errors.ErrCodeStore, err, "loading workflow %q", workflowID)
	}
	return doc, nil
}

func (s *MongoStore) upsert(ctx context.Context, workflowID string, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": workflowID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "saving workflow %q", workflowID)
	}
	return nil
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
