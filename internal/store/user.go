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

// UserUpdate lists the user fields that may be changed. Nil fields are left
// untouched.
type UserUpdate struct {
	Name          *string
	Phone         *string
	ProfilePhoto  *string
	Password      *string
	AccountStatus *model.AccountStatus
	AssignedStore *model.AssignedStore
}

func (u UserUpdate) set() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.ProfilePhoto != nil {
		set["profilePhoto"] = *u.ProfilePhoto
	}
	if u.Password != nil {
		set["password"] = *u.Password
	}
	if u.AccountStatus != nil {
		set["accountStatus"] = *u.AccountStatus
	}
	if u.AssignedStore != nil {
		set["assignedStore"] = u.AssignedStore
	}
	return set
}

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(ctx context.Context, db *MongoDB) (*UserStore, error) {
	users := db.Collection("users")

	if _, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "accountStatus", Value: 1}, {Key: "createdAt", Value: -1}}},
	}); err != nil {
		return nil, fmt.Errorf("create users indexes: %w", err)
	}

	return &UserStore{coll: users}, nil
}

// Create inserts a new user and sets the ID on the struct. A taken username
// yields ErrDuplicateKey.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return insertErr("insert user", err)
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// GetByID returns the user, or nil if not found.
func (s *UserStore) GetByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername returns the user, or nil if not found.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// GetByIDs returns the users among ids that still exist.
func (s *UserStore) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// ListByRole returns users with the given role sorted by name.
func (s *UserStore) ListByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	return s.find(ctx, bson.M{"role": role}, bson.D{{Key: "name", Value: 1}})
}

// ListAll returns every user sorted by role, then name.
func (s *UserStore) ListAll(ctx context.Context) ([]*model.User, error) {
	return s.find(ctx, bson.M{}, bson.D{{Key: "role", Value: 1}, {Key: "name", Value: 1}})
}

// ListPending returns users awaiting approval, newest registration first.
// Accounts without createdAt fall back to the join date string.
func (s *UserStore) ListPending(ctx context.Context) ([]*model.User, error) {
	return s.find(ctx,
		bson.M{"accountStatus": model.AccountStatusPending},
		bson.D{{Key: "createdAt", Value: -1}, {Key: "joinDate", Value: -1}},
	)
}

func (s *UserStore) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *UserStore) find(ctx context.Context, filter bson.M, sort bson.D) ([]*model.User, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	results := []*model.User{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return results, nil
}

// Update applies the non-nil fields and returns the updated user, or nil if
// the user does not exist.
func (s *UserStore) Update(ctx context.Context, id bson.ObjectID, update UserUpdate) (*model.User, error) {
	set := update.set()
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}
	var user model.User
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

// Delete removes the user and reports whether it existed.
func (s *UserStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// BackfillStatus marks admins and accounts without a status as approved and
// returns how many documents changed.
func (s *UserStore) BackfillStatus(ctx context.Context) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"role": model.RoleAdmin, "accountStatus": bson.M{"$ne": model.AccountStatusApproved}},
			bson.M{"accountStatus": bson.M{"$exists": false}},
			bson.M{"accountStatus": nil},
		}},
		bson.M{"$set": bson.M{"accountStatus": model.AccountStatusApproved}},
	)
	if err != nil {
		return 0, fmt.Errorf("backfill account status: %w", err)
	}
	return res.ModifiedCount, nil
}
