package invitationapi

import (
	"net/http"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/wizard"
)

// lookup resolves the {id} path value to the caller's wizard, writing the
// error response itself when it cannot.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*wizard.Wizard, bool) {
	wz, err := h.wizards.Get(auth.FromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeWizardError(w, err)
		return nil, false
	}
	return wz, true
}

func (h *Handler) writeWizardError(w http.ResponseWriter, err error) {
	if k := httpx.WriteKindError(w, err); k == invitation.KindUnknown {
		h.log.Errorw("wizard.request.fail", "err", err)
	}
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, status int, s wizard.Snapshot, err error) {
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	httpx.WriteJSON(w, status, wizardResponse{Wizard: s})
}

func (h *Handler) handleWizardCreate(w http.ResponseWriter, r *http.Request) {
	wz, err := h.wizards.Start(auth.FromContext(r.Context()))
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeSnapshot(w, http.StatusCreated, wz.Snapshot(), nil)
}

func (h *Handler) handleWizardGet(w http.ResponseWriter, r *http.Request) {
	if wz, ok := h.lookup(w, r); ok {
		h.writeSnapshot(w, http.StatusOK, wz.Snapshot(), nil)
	}
}

func (h *Handler) handleWizardDiscard(w http.ResponseWriter, r *http.Request) {
	if err := h.wizards.Discard(auth.FromContext(r.Context()), r.PathValue("id")); err != nil {
		h.writeWizardError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleWizardGuest(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req guestRequest
	if err := httpx.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	s, err := wz.SetGuest(wizard.Guest{Name: req.Name, Phone: req.Phone, Email: req.Email})
	h.writeSnapshot(w, http.StatusOK, s, err)
}

func (h *Handler) handleWizardCampus(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req campusRequest
	if err := httpx.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	s, err := wz.SelectCampus(r.Context(), req.CampusID)
	h.writeSnapshot(w, http.StatusOK, s, err)
}

func (h *Handler) handleWizardTime(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req timeRequest
	if err := httpx.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	s, err := wz.SelectTime(req.Time)
	h.writeSnapshot(w, http.StatusOK, s, err)
}

func (h *Handler) handleWizardNext(w http.ResponseWriter, r *http.Request) {
	if wz, ok := h.lookup(w, r); ok {
		s, err := wz.Next()
		h.writeSnapshot(w, http.StatusOK, s, err)
	}
}

func (h *Handler) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	if wz, ok := h.lookup(w, r); ok {
		s, err := wz.Back()
		h.writeSnapshot(w, http.StatusOK, s, err)
	}
}

func (h *Handler) handleWizardDesign(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req designRequest
	if err := httpx.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	d, err := flyer.ParseDesign(req.Design)
	if err != nil {
		httpx.WriteKindError(w, invitation.E("wizard.SelectDesign", invitation.KindValidation, err))
		return
	}
	s, err := wz.SelectDesign(d)
	h.writeSnapshot(w, http.StatusOK, s, err)
}

func (h *Handler) handleWizardPreview(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	d, err := flyer.ParseDesign(r.URL.Query().Get("design"))
	if err != nil {
		httpx.WriteKindError(w, invitation.E("wizard.Preview", invitation.KindValidation, err))
		return
	}
	a, err := wz.Preview(d)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	writePNG(w, a, "")
}

func (h *Handler) handleWizardGenerate(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	res, err := wz.Generate(r.Context())
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, h.generated(wz, res))
}

func (h *Handler) handleWizardRetry(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	res, err := wz.RetryPersist(r.Context())
	if err != nil && invitation.KindOf(err) != invitation.KindPersistence {
		h.writeWizardError(w, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
	}
	httpx.WriteJSON(w, status, h.generated(wz, res))
}

func (h *Handler) handleWizardReset(w http.ResponseWriter, r *http.Request) {
	if wz, ok := h.lookup(w, r); ok {
		h.writeSnapshot(w, http.StatusOK, wz.CreateAnother(), nil)
	}
}

func (h *Handler) handleWizardFlyer(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	res, ok := wz.Result()
	if !ok {
		httpx.WriteKindError(w, invitation.E("wizard.Flyer", invitation.KindValidation, wizard.ErrInvalidTransition))
		return
	}
	writePNG(w, res.Artifact, res.FileName)
}

func (h *Handler) handleWizardShare(w http.ResponseWriter, r *http.Request) {
	wz, ok := h.lookup(w, r)
	if !ok {
		return
	}
	res, ok := wz.Result()
	if !ok {
		httpx.WriteKindError(w, invitation.E("wizard.Share", invitation.KindValidation, wizard.ErrInvalidTransition))
		return
	}
	s := wz.Snapshot()
	campusName := ""
	if s.Campus != nil {
		campusName = s.Campus.Name
	}
	httpx.WriteJSON(w, http.StatusOK, shareResponse{
		ShareURL: res.ShareURL,
		Message:  invitation.ShareMessage(res.Invitation.GuestName, campusName),
	})
}

func (h *Handler) generated(wz *wizard.Wizard, res wizard.Result) generateResponse {
	out := generateResponse{
		Wizard:          wz.Snapshot(),
		Invitation:      res.Invitation,
		VerificationURL: res.VerificationURL,
		FileName:        res.FileName,
		FlyerURL:        "/api/wizards/" + wz.ID() + "/flyer",
		ShareURL:        res.ShareURL,
		Width:           res.Artifact.Width,
		Height:          res.Artifact.Height,
		Persisted:       res.Persisted,
	}
	if res.PersistErr != nil {
		_, body := httpx.KindStatus(invitation.KindOf(res.PersistErr))
		out.PersistError = &body
	}
	return out
}
