package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type AccountStatus string

const (
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusApproved AccountStatus = "approved"
	AccountStatusRejected AccountStatus = "rejected"
)

const (
	DefaultStoreLocation = "Blinkit Store"
	DefaultStoreCity     = "India"
	DefaultStoreRadius   = 100
)

// AssignedStore is the store an employee checks in at. Radius is in meters.
type AssignedStore struct {
	Name      string  `bson:"name" json:"name"`
	Address   string  `bson:"address" json:"address"`
	City      string  `bson:"city" json:"city"`
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Radius    float64 `bson:"radius" json:"radius"`
}

// User is stored in the "users" collection. Field names follow the existing
// documents, which use camelCase.
type User struct {
	ID            bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string         `bson:"name" json:"name"`
	Username      string         `bson:"username" json:"username"`
	Password      string         `bson:"password" json:"-"`
	StoreLocation string         `bson:"storeLocation" json:"storeLocation"`
	JoinDate      string         `bson:"joinDate" json:"joinDate"` // dd/mm/yyyy
	ProfilePhoto  string         `bson:"profilePhoto" json:"profilePhoto"`
	Role          Role           `bson:"role" json:"role"`
	AccountStatus AccountStatus  `bson:"accountStatus,omitempty" json:"accountStatus,omitempty"`
	AssignedStore *AssignedStore `bson:"assignedStore" json:"assignedStore"`
	Phone         string         `bson:"phone" json:"phone"`
	CreatedAt     time.Time      `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// EffectiveStatus returns the stored account status. Accounts created before
// approval gating have no status and count as approved.
func (u *User) EffectiveStatus() AccountStatus {
	if u.AccountStatus == "" {
		return AccountStatusApproved
	}
	return u.AccountStatus
}

// EffectiveRole defaults legacy accounts without a role to employee.
func (u *User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleEmployee
	}
	return u.Role
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
