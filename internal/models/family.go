package models

import "time"

// Status is the approval state of a family registration
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether an administrator may move a record from s to next.
// Records never return to pending once reviewed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return false
	}
	switch next {
	case StatusApproved, StatusRejected:
		return s.Valid()
	}
	return false
}

// FamilyRecord is one registered household
type FamilyRecord struct {
	ID           string
	FamilyHead   string
	Gender       string
	DOB          time.Time
	Phone        string
	Email        string
	City         string
	Locality     string
	Occupation   string
	Gotra        string
	NativePlace  string
	BloodGroup   string
	Address      string
	ProfileImage string
	Members      []MemberRecord
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanLogin reports whether the record may be used as a login credential
func (f *FamilyRecord) CanLogin() bool {
	return f.Status == StatusApproved
}

// SessionUser projects the record into the session payload
func (f *FamilyRecord) SessionUser() SessionUser {
	return SessionUser{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.FamilyHead,
	}
}

// MemberRecord is one household member. Age is nil when the submitted value was not a number.
type MemberRecord struct {
	Name          string
	Relation      string
	Age           *int
	MaritalStatus string
	BloodGroup    string
	Qualification string
	Occupation    string
}
