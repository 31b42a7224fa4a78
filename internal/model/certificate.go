package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CertificateType string

const (
	CertificateTypeExperience   CertificateType = "experience"
	CertificateTypeAppreciation CertificateType = "appreciation"
	CertificateTypeCompletion   CertificateType = "completion"
)

func (t CertificateType) Valid() bool {
	switch t {
	case CertificateTypeExperience, CertificateTypeAppreciation, CertificateTypeCompletion:
		return true
	}
	return false
}

const (
	MinCertificateMonths = 1
	MaxCertificateMonths = 60
)

type Certificate struct {
	ID               bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	EmployeeID       bson.ObjectID   `bson:"employeeId" json:"employeeId"`
	EmployeeName     string          `bson:"employeeName" json:"employeeName"`
	EmployeeUsername string          `bson:"employeeUsername" json:"employeeUsername"`
	CertificateType  CertificateType `bson:"certificateType" json:"certificateType"`
	Duration         int             `bson:"duration" json:"duration"` // months
	CustomMessage    string          `bson:"customMessage" json:"customMessage"`
	IssueDate        time.Time       `bson:"issueDate" json:"issueDate"`
	IssuedBy         string          `bson:"issuedBy" json:"issuedBy"`
	Signature        string          `bson:"signature" json:"signature"`
	VerificationCode string          `bson:"verificationCode" json:"verificationCode"`
	StoreName        string          `bson:"storeName,omitempty" json:"storeName,omitempty"`
	StoreLocation    string          `bson:"storeLocation,omitempty" json:"storeLocation,omitempty"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// VerifiedCertificate is the public view returned by code verification.
type VerifiedCertificate struct {
	EmployeeName    string          `json:"employeeName"`
	CertificateType CertificateType `json:"certificateType"`
	Duration        int             `json:"duration"`
	IssueDate       time.Time       `json:"issueDate"`
	IssuedBy        string          `json:"issuedBy"`
	StoreName       string          `json:"storeName,omitempty"`
}

func (c *Certificate) Verified() *VerifiedCertificate {
	return &VerifiedCertificate{
		EmployeeName:    c.EmployeeName,
		CertificateType: c.CertificateType,
		Duration:        c.Duration,
		IssueDate:       c.IssueDate,
		IssuedBy:        c.IssuedBy,
		StoreName:       c.StoreName,
	}
}
