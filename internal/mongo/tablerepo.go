package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/seating/internal/reservations"
)

const (
	defaultMongoURL = "mongodb://localhost:27017"
	defaultDBName   = "seating"
)

// TableRepo owns the Mongo connection; the other repos share its database.
type TableRepo struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	logger     apt.Logger
	config     *apt.Config
}

func NewTableRepo(config *apt.Config, logger apt.Logger) *TableRepo {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &TableRepo{
		logger: logger,
		config: config,
	}
}

func (r *TableRepo) Start(ctx context.Context) error {
	connString := r.config.GetStringOrDef("db.mongo.url", defaultMongoURL)
	dbName := r.config.GetStringOrDef("db.mongo.name", defaultDBName)

	clientOptions := options.Client().ApplyURI(connString).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)
	r.collection = r.db.Collection("tables")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "capacity", Value: 1}},
		},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("cannot create table indexes: %w", err)
	}

	r.logger.Infof("Connected to MongoDB database: %s, collection: tables", dbName)
	return nil
}

func (r *TableRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *TableRepo) GetDatabase() *mongo.Database {
	return r.db
}

func (r *TableRepo) GetClient() *mongo.Client {
	return r.client
}

func (r *TableRepo) Create(ctx context.Context, table *reservations.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		return fmt.Errorf("cannot create table: %w", err)
	}

	return nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*reservations.Table, error) {
	var table reservations.Table
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	return &table, nil
}

func (r *TableRepo) GetByNumber(ctx context.Context, number string) (*reservations.Table, error) {
	var table reservations.Table
	err := r.collection.FindOne(ctx, bson.M{"number": number}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table by number: %w", err)
	}
	return &table, nil
}

func (r *TableRepo) List(ctx context.Context) ([]*reservations.Table, error) {
	return r.find(ctx, bson.M{})
}

func (r *TableRepo) ListByStatus(ctx context.Context, status reservations.TableStatus) ([]*reservations.Table, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *TableRepo) find(ctx context.Context, filter bson.M) ([]*reservations.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "capacity", Value: 1}, {Key: "priority", Value: 1}, {Key: "number", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*reservations.Table
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode tables: %w", err)
	}

	return result, nil
}

func (r *TableRepo) Save(ctx context.Context, table *reservations.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": table.ID}, bson.M{"$set": table})
	if err != nil {
		return fmt.Errorf("cannot update table: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("table %s: %w", table.ID, reservations.ErrNotFound)
	}

	return nil
}

func (r *TableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete table: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("table %s: %w", id, reservations.ErrNotFound)
	}

	return nil
}
