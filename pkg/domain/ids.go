package domain

import (
	"github.com/google/uuid"

	dErrors "registrar/pkg/domain-errors"
)

// Typed identifiers keep a student id from being passed where an offering id
// is expected. All of them are UUIDs assigned by the application (never by a
// max-scan over existing rows) and backed by a primary key in storage.
type (
	StudentID    uuid.UUID
	OfferingID   uuid.UUID
	EnrollmentID uuid.UUID
	HistoryID    uuid.UUID
)

func NewEnrollmentID() EnrollmentID { return EnrollmentID(uuid.New()) }
func NewHistoryID() HistoryID       { return HistoryID(uuid.New()) }
func NewOfferingID() OfferingID     { return OfferingID(uuid.New()) }
func NewStudentID() StudentID       { return StudentID(uuid.New()) }

func (id StudentID) String() string    { return uuid.UUID(id).String() }
func (id OfferingID) String() string   { return uuid.UUID(id).String() }
func (id EnrollmentID) String() string { return uuid.UUID(id).String() }
func (id HistoryID) String() string    { return uuid.UUID(id).String() }

func (id StudentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id OfferingID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EnrollmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id HistoryID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// ParseStudentID parses external input into a StudentID.
// Errors: CodeInvalidInput for empty, malformed, or nil UUIDs.
func ParseStudentID(s string) (StudentID, error) {
	u, err := parseUUID(s, "student id")
	return StudentID(u), err
}

// ParseOfferingID parses external input into an OfferingID.
func ParseOfferingID(s string) (OfferingID, error) {
	u, err := parseUUID(s, "offering id")
	return OfferingID(u), err
}

// ParseEnrollmentID parses external input into an EnrollmentID.
func ParseEnrollmentID(s string) (EnrollmentID, error) {
	u, err := parseUUID(s, "enrollment id")
	return EnrollmentID(u), err
}

// ParseHistoryID parses external input into a HistoryID.
func ParseHistoryID(s string) (HistoryID, error) {
	u, err := parseUUID(s, "history id")
	return HistoryID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
