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
)

// Transactor runs units of work in Mongo multi-document transactions. Slot
// locks are documents keyed by table and date; two transactions bumping the
// same lock hit a write conflict and the loser is retried by the driver.
//
// Transactions need a replica set. With transactions disabled units run
// directly, the lock document is only a marker and the service compensates
// failed units itself.
type Transactor struct {
	client  *mongo.Client
	locks   *mongo.Collection
	enabled bool
	logger  apt.Logger
}

func NewTransactor(client *mongo.Client, db *mongo.Database, enabled bool, logger apt.Logger) *Transactor {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Transactor{
		client:  client,
		locks:   db.Collection("slot_locks"),
		enabled: enabled,
		logger:  logger,
	}
}

// Atomic reports whether units roll back on failure.
func (t *Transactor) Atomic() bool {
	return t.enabled
}

// Verify checks that the deployment can run multi-document transactions.
func (t *Transactor) Verify(ctx context.Context) error {
	if !t.enabled {
		return nil
	}

	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	err := t.client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
	if err != nil {
		return fmt.Errorf("cannot query deployment topology: %w", err)
	}
	if hello.SetName == "" && hello.Msg != "isdbgrid" {
		return errors.New("mongo is a standalone server and cannot run transactions; use a replica set or set db.mongo.transactions=false")
	}
	return nil
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled || mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (t *Transactor) LockTableDate(ctx context.Context, tableID uuid.UUID, date string) error {
	filter := bson.M{"_id": lockKey(tableID, date)}
	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{
			"table_id":   tableID,
			"date":       date,
			"updated_at": time.Now().UTC(),
		},
	}

	if _, err := t.locks.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("cannot take slot lock: %w", err)
	}
	return nil
}

func lockKey(tableID uuid.UUID, date string) string {
	return tableID.String() + ":" + date
}
