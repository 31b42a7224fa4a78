package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"attendance-backend/internal/model"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type AttendanceStore struct {
	coll *mongo.Collection
}

func NewAttendanceStore(ctx context.Context, db *MongoDB) (*AttendanceStore, error) {
	attendance := db.Collection("attendances")

	if _, err := attendance.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return nil, fmt.Errorf("create attendance indexes: %w", err)
	}

	return &AttendanceStore{coll: attendance}, nil
}

// Create inserts a new attendance record and sets the ID on the struct.
func (s *AttendanceStore) Create(ctx context.Context, record *model.AttendanceRecord) error {
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	res, err := s.coll.InsertOne(ctx, record)
	if err != nil {
		return insertErr("insert attendance", err)
	}
	record.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID returns the record, or nil if not found.
func (s *AttendanceStore) GetByID(ctx context.Context, id bson.ObjectID) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &record, nil
}

// CheckOut applies the check-out fields in place and returns the updated
// record, or nil if it does not exist.
func (s *AttendanceStore) CheckOut(ctx context.Context, id bson.ObjectID, co model.CheckOut) (*model.AttendanceRecord, error) {
	set := bson.M{"updatedAt": time.Now()}
	if co.CheckOutTime != nil {
		set["checkOutTime"] = *co.CheckOutTime
	}
	if co.HoursWorked != nil {
		set["hoursWorked"] = *co.HoursWorked
	}
	if co.CheckOutPhoto != nil {
		set["checkOutPhoto"] = *co.CheckOutPhoto
	}
	if co.Status != nil {
		set["status"] = *co.Status
	}

	var record model.AttendanceRecord
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("check out attendance: %w", err)
	}
	return &record, nil
}

// ListByUser returns a user's records in storage order.
func (s *AttendanceStore) ListByUser(ctx context.Context, userID string) ([]*model.AttendanceRecord, error) {
	return s.find(ctx, bson.M{"userId": userID}, nil)
}

// ListByDate returns all records for the given day string.
func (s *AttendanceStore) ListByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error) {
	return s.find(ctx, bson.M{"date": date}, nil)
}

// ListRecent returns up to limit records matching the filter, newest first.
func (s *AttendanceStore) ListRecent(ctx context.Context, filter model.AttendanceFilter, limit int64) ([]*model.AttendanceRecord, error) {
	query := bson.M{}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	return s.find(ctx, query, options.Find().SetSort(newestFirst).SetLimit(limit))
}

func (s *AttendanceStore) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*model.AttendanceRecord, error) {
	if opts == nil {
		opts = options.Find()
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	results := []*model.AttendanceRecord{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return results, nil
}

// Delete removes the record and reports whether it existed.
func (s *AttendanceStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete attendance: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteByUser removes every record owned by userID.
func (s *AttendanceStore) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, fmt.Errorf("delete user attendance: %w", err)
	}
	return res.DeletedCount, nil
}
