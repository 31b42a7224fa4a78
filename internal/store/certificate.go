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

type CertificateStore struct {
	coll *mongo.Collection
}

func NewCertificateStore(ctx context.Context, db *MongoDB) (*CertificateStore, error) {
	certs := db.Collection("certificates")

	if _, err := certs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "verificationCode", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}); err != nil {
		return nil, fmt.Errorf("create certificates indexes: %w", err)
	}

	return &CertificateStore{coll: certs}, nil
}

// Create inserts a certificate and sets the ID on the struct. A verification
// code collision yields ErrDuplicateKey.
func (s *CertificateStore) Create(ctx context.Context, cert *model.Certificate) error {
	now := time.Now()
	cert.CreatedAt = now
	cert.UpdatedAt = now
	if cert.IssueDate.IsZero() {
		cert.IssueDate = now
	}
	res, err := s.coll.InsertOne(ctx, cert)
	if err != nil {
		return insertErr("insert certificate", err)
	}
	cert.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID returns the certificate, or nil if not found.
func (s *CertificateStore) GetByID(ctx context.Context, id bson.ObjectID) (*model.Certificate, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetForEmployee returns the certificate only if it belongs to employeeID.
func (s *CertificateStore) GetForEmployee(ctx context.Context, id, employeeID bson.ObjectID) (*model.Certificate, error) {
	return s.findOne(ctx, bson.M{"_id": id, "employeeId": employeeID})
}

// GetByCode looks a certificate up by its verification code.
func (s *CertificateStore) GetByCode(ctx context.Context, code string) (*model.Certificate, error) {
	return s.findOne(ctx, bson.M{"verificationCode": code})
}

func (s *CertificateStore) findOne(ctx context.Context, filter bson.M) (*model.Certificate, error) {
	var cert model.Certificate
	err := s.coll.FindOne(ctx, filter).Decode(&cert)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return &cert, nil
}

// ListRecent returns up to limit certificates, newest first.
func (s *CertificateStore) ListRecent(ctx context.Context, limit int64) ([]*model.Certificate, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(newestFirst).SetLimit(limit))
}

// ListByEmployee returns all certificates issued to employeeID, newest first.
func (s *CertificateStore) ListByEmployee(ctx context.Context, employeeID bson.ObjectID) ([]*model.Certificate, error) {
	return s.find(ctx, bson.M{"employeeId": employeeID}, options.Find().SetSort(newestFirst))
}

func (s *CertificateStore) find(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]*model.Certificate, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find certificates: %w", err)
	}
	results := []*model.Certificate{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode certificates: %w", err)
	}
	return results, nil
}

// Delete removes the certificate and reports whether it existed.
func (s *CertificateStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete certificate: %w", err)
	}
	return res.DeletedCount > 0, nil
}
