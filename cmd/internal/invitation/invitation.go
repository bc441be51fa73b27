package invitation

import (
	"context"
	"strings"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity/ids"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
)

// Status is the attendance state. It only ever moves sent -> attended.
type Status string

const (
	StatusSent     Status = "sent"
	StatusAttended Status = "attended"
)

// Valid reports whether s is a state the lifecycle can produce.
func (s Status) Valid() bool { return s == StatusSent || s == StatusAttended }

// DeliveryDownload is the delivery tag recorded for generated flyers.
const DeliveryDownload = "download"

// Invitation is one guest's invitation.
type Invitation struct {
	ID             string       `json:"id"`
	QRCodeValue    string       `json:"qr_code_value"`
	GuestName      string       `json:"guest_name"`
	GuestPhone     string       `json:"guest_phone,omitempty"`
	GuestEmail     string       `json:"guest_email,omitempty"`
	CampusID       string       `json:"campus_id"`
	ServiceTime    string       `json:"service_time,omitempty"`
	InviterID      string       `json:"inviter_id"`
	Design         flyer.Design `json:"flyer_design_id"`
	Status         Status       `json:"status"`
	DeliveryMethod string       `json:"delivery_method"`
	CreatedAt      time.Time    `json:"created_at"`
	AttendedAt     *time.Time   `json:"attended_at,omitempty"`
}

// Attended reports whether the attendance transition has fired.
func (inv Invitation) Attended() bool { return inv.Status == StatusAttended }

// NewRecord describes an invitation to insert. Status is always sent.
type NewRecord struct {
	QRCodeValue    string
	GuestName      string
	GuestPhone     string
	GuestEmail     string
	CampusID       string
	ServiceTime    string
	InviterID      string
	Design         flyer.Design
	DeliveryMethod string
	Now            time.Time
}

// Store is the invitation persistence boundary.
type Store interface {
	Create(ctx context.Context, in NewRecord) (Invitation, error)
	GetByToken(ctx context.Context, token string) (Invitation, error)

	// MarkAttended moves a sent invitation to attended at now.
	// An already attended invitation is returned unchanged with ErrAlreadyAttended.
	MarkAttended(ctx context.Context, token string, now time.Time) (Invitation, error)

	// List returns every invitation, newest first.
	List(ctx context.Context) ([]Invitation, error)
	ListByInviter(ctx context.Context, inviterID string) ([]Invitation, error)
}

// build validates in and returns the row Create should insert.
func build(in NewRecord) (Invitation, error) {
	in.QRCodeValue = strings.TrimSpace(in.QRCodeValue)
	in.GuestName = strings.TrimSpace(in.GuestName)
	in.CampusID = strings.TrimSpace(in.CampusID)
	in.InviterID = strings.TrimSpace(in.InviterID)

	switch {
	case in.QRCodeValue == "":
		return Invitation{}, E("invitation.Create", KindValidation, ErrInvalidInput)
	case in.GuestName == "":
		return Invitation{}, E("invitation.Create", KindValidation, ErrInvalidInput)
	case in.CampusID == "" || in.InviterID == "":
		return Invitation{}, E("invitation.Create", KindValidation, ErrInvalidInput)
	case !in.Design.Valid():
		return Invitation{}, E("invitation.Create", KindValidation, flyer.ErrUnknownDesign)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ids.New(now)
	if err != nil {
		return Invitation{}, err
	}
	delivery := strings.TrimSpace(in.DeliveryMethod)
	if delivery == "" {
		delivery = DeliveryDownload
	}

	return Invitation{
		ID:             id,
		QRCodeValue:    in.QRCodeValue,
		GuestName:      in.GuestName,
		GuestPhone:     strings.TrimSpace(in.GuestPhone),
		GuestEmail:     strings.TrimSpace(in.GuestEmail),
		CampusID:       in.CampusID,
		ServiceTime:    strings.TrimSpace(in.ServiceTime),
		InviterID:      in.InviterID,
		Design:         in.Design,
		Status:         StatusSent,
		DeliveryMethod: delivery,
		CreatedAt:      now.UTC().Truncate(time.Microsecond),
	}, nil
}
