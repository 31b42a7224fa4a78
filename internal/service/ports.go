package service

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"attendance-backend/internal/model"
	"attendance-backend/internal/store"
)

// UserRepository is implemented by *store.UserStore.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	ListAll(ctx context.Context) ([]*model.User, error)
	ListPending(ctx context.Context) ([]*model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	Update(ctx context.Context, id bson.ObjectID, update store.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	BackfillStatus(ctx context.Context) (int64, error)
}

// AttendanceRepository is implemented by *store.AttendanceStore.
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	GetByID(ctx context.Context, id bson.ObjectID) (*model.AttendanceRecord, error)
	CheckOut(ctx context.Context, id bson.ObjectID, co model.CheckOut) (*model.AttendanceRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*model.AttendanceRecord, error)
	ListByDate(ctx context.Context, date string) ([]*model.AttendanceRecord, error)
	ListRecent(ctx context.Context, filter model.AttendanceFilter, limit int64) ([]*model.AttendanceRecord, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// CertificateRepository is implemented by *store.CertificateStore.
type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	GetByID(ctx context.Context, id bson.ObjectID) (*model.Certificate, error)
	GetForEmployee(ctx context.Context, id, employeeID bson.ObjectID) (*model.Certificate, error)
	GetByCode(ctx context.Context, code string) (*model.Certificate, error)
	ListRecent(ctx context.Context, limit int64) ([]*model.Certificate, error)
	ListByEmployee(ctx context.Context, employeeID bson.ObjectID) ([]*model.Certificate, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

// Notifier delivers operational messages to administrators.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// parseID turns a hex id into an ObjectID. Malformed ids can never match a
// stored document, so callers treat ok=false as "absent".
func parseID(hex string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}
