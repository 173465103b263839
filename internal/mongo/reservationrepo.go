package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/seating/internal/reservations"
)

var activeStatuses = []reservations.Status{reservations.StatusPending, reservations.StatusConfirmed}

type ReservationRepo struct {
	collection *mongo.Collection
}

func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{
		collection: db.Collection("reservations"),
	}
}

// EnsureIndexes creates the indexes behind the overlap and listing queries.
func (r *ReservationRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "table_id", Value: 1}, {Key: "reservation_date", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "reservation_date", Value: 1}}},
		{Keys: bson.D{{Key: "reservation_date", Value: 1}, {Key: "reservation_time", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("cannot create reservation indexes: %w", err)
	}
	return nil
}

func (r *ReservationRepo) Create(ctx context.Context, reservation *reservations.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is nil")
	}

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("cannot create reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepo) Get(ctx context.Context, id uuid.UUID) (*reservations.Reservation, error) {
	var reservation reservations.Reservation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*reservations.Reservation, error) {
	return r.find(ctx, bson.M{"customer_id": customerID})
}

// ListByDateRange returns reservations with from <= date <= to. Dates are
// YYYY-MM-DD so string order is date order.
func (r *ReservationRepo) ListByDateRange(ctx context.Context, from, to string) ([]*reservations.Reservation, error) {
	return r.find(ctx, bson.M{
		"reservation_date": bson.M{
			"$gte": from,
			"$lte": to,
		},
	})
}

func (r *ReservationRepo) ListActiveForTableOnDate(ctx context.Context, tableID uuid.UUID, date string, excludeID *uuid.UUID) ([]*reservations.Reservation, error) {
	filter := bson.M{
		"table_id":         tableID,
		"reservation_date": date,
		"status":           bson.M{"$in": activeStatuses},
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepo) ListActiveForTable(ctx context.Context, tableID uuid.UUID, fromDate string) ([]*reservations.Reservation, error) {
	filter := bson.M{
		"table_id": tableID,
		"status":   bson.M{"$in": activeStatuses},
	}
	if fromDate != "" {
		filter["reservation_date"] = bson.M{"$gte": fromDate}
	}
	return r.find(ctx, filter)
}

func (r *ReservationRepo) find(ctx context.Context, filter bson.M) ([]*reservations.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "reservation_date", Value: 1}, {Key: "reservation_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*reservations.Reservation
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode reservations: %w", err)
	}

	return result, nil
}

func (r *ReservationRepo) Save(ctx context.Context, reservation *reservations.Reservation) error {
	if reservation == nil {
		return fmt.Errorf("reservation is nil")
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": reservation.ID}, bson.M{"$set": reservation})
	if err != nil {
		return fmt.Errorf("cannot update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("reservation %s: %w", reservation.ID, reservations.ErrNotFound)
	}

	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete reservation: %w", err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("reservation %s: %w", id, reservations.ErrNotFound)
	}

	return nil
}
