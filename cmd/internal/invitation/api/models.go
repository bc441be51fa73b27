package invitationapi

import (
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/wizard"
)

type campusesResponse struct {
	Campuses []campus.Campus `json:"campuses"`
}

type designsResponse struct {
	Designs []flyer.Variant `json:"designs"`
}

type guestRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type campusRequest struct {
	CampusID string `json:"campus_id"`
}

type timeRequest struct {
	Time string `json:"time"`
}

type designRequest struct {
	Design string `json:"design"`
}

type checkInRequest struct {
	Code string `json:"code"`
}

type wizardResponse struct {
	Wizard wizard.Snapshot `json:"wizard"`
}

type generateResponse struct {
	Wizard          wizard.Snapshot       `json:"wizard"`
	Invitation      invitation.Invitation `json:"invitation"`
	VerificationURL string                `json:"verification_url"`
	FileName        string                `json:"file_name"`
	FlyerURL        string                `json:"flyer_url"`
	ShareURL        string                `json:"share_url"`
	Width           int                   `json:"width"`
	Height          int                   `json:"height"`
	Persisted       bool                  `json:"persisted"`
	PersistError    *httpx.APIError       `json:"persist_error,omitempty"`
}

type shareResponse struct {
	ShareURL string `json:"share_url"`
	Message  string `json:"message"`
}

type verifyResponse struct {
	Outcome     invitation.Outcome    `json:"outcome"`
	Message     string                `json:"message"`
	Invitation  invitation.Invitation `json:"invitation"`
	CampusName  string                `json:"campus_name,omitempty"`
	InviterName string                `json:"inviter_name,omitempty"`
	AttendedAgo string                `json:"attended_ago,omitempty"`
}

type mineResponse struct {
	Invitations []invitation.Invitation `json:"invitations"`
	Total       int                     `json:"total"`
	Attended    int                     `json:"attended"`
	AsOf        time.Time               `json:"as_of"`
}
