package invitationapi

import (
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
)

// handleVerify is what the QR code on a flyer opens. Hosts and admins
// confirm attendance by loading it; anyone else is refused before lookup.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, r.PathValue("token"))
}

// handleCheckIn takes the raw text a scanner decoded, URL or bare token.
func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := httpx.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	h.verify(w, r, req.Code)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request, code string) {
	p := auth.FromContext(r.Context())
	res, err := h.verifier.Verify(r.Context(), p, code)
	if err != nil {
		k := httpx.WriteKindError(w, err)
		switch k {
		case invitation.KindAccessDenied, invitation.KindNotFound:
			h.log.Infow("checkin.refused", "kind", k, "user_id", principalID(p))
		default:
			h.log.Errorw("checkin.fail", "kind", k, "user_id", principalID(p), "err", err)
		}
		return
	}

	out := verifyResponse{
		Outcome:     res.Outcome,
		Message:     outcomeMessage(res.Outcome),
		Invitation:  res.Invitation,
		CampusName:  res.CampusName,
		InviterName: res.InviterName,
	}
	if at := res.Invitation.AttendedAt; at != nil {
		out.AttendedAgo = humanize.RelTime(*at, h.now(), "ago", "from now")
	}
	if res.Outcome == invitation.OutcomeConfirmed {
		h.log.Infow("checkin.confirmed",
			"invitation_id", res.Invitation.ID,
			"campus_id", res.Invitation.CampusID,
			"verified_by", p.UserID,
		)
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func outcomeMessage(o invitation.Outcome) string {
	if o == invitation.OutcomeAlreadyConfirmed {
		return "Guest already checked in"
	}
	return "Guest checked in"
}

func principalID(p *auth.Principal) string {
	if p == nil {
		return ""
	}
	return p.UserID
}
