package invitationapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	authapi "github.com/Mykel-Eze/tcn-invite/cmd/internal/auth/api"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/wizard"

	"go.uber.org/zap"
)

// Deps wires the handler to its collaborators.
type Deps struct {
	Log         *zap.SugaredLogger
	Wizards     *wizard.Registry
	Verifier    *invitation.Verifier
	Campuses    campus.Directory
	Invitations invitation.Store
	Renderer    flyer.Renderer

	// ShareBase is the share deep-link endpoint; empty means WhatsApp.
	ShareBase    string
	MaxBodyBytes int64
	Now          func() time.Time
}

// Handler serves the invitation routes.
type Handler struct {
	log         *zap.SugaredLogger
	wizards     *wizard.Registry
	verifier    *invitation.Verifier
	campuses    campus.Directory
	invitations invitation.Store
	renderer    flyer.Renderer
	shareBase   string
	maxBody     int64
	now         func() time.Time
}

// NewHandler validates d and returns a Handler.
func NewHandler(d Deps) (*Handler, error) {
	if d.Wizards == nil || d.Verifier == nil || d.Campuses == nil || d.Invitations == nil {
		return nil, errors.New("invitationapi: wizards, verifier, campuses and invitations are required")
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Renderer == nil {
		d.Renderer = flyer.DefaultRenderer{}
	}
	if d.MaxBodyBytes <= 0 {
		d.MaxBodyBytes = 64 << 10
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler{
		log:         d.Log,
		wizards:     d.Wizards,
		verifier:    d.Verifier,
		campuses:    d.Campuses,
		invitations: d.Invitations,
		renderer:    d.Renderer,
		shareBase:   d.ShareBase,
		maxBody:     d.MaxBodyBytes,
		now:         d.Now,
	}, nil
}

// Register wires the routes onto mux. mux must sit behind the bearer
// middleware.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/campuses", h.handleCampuses)
	mux.HandleFunc("GET /api/flyers/designs", h.handleDesigns)
	mux.HandleFunc("GET /api/flyers/preview", authapi.RequireAuth(h.handlePreview))

	mux.HandleFunc("POST /api/wizards", authapi.RequireAuth(h.handleWizardCreate))
	mux.HandleFunc("GET /api/wizards/{id}", authapi.RequireAuth(h.handleWizardGet))
	mux.HandleFunc("DELETE /api/wizards/{id}", authapi.RequireAuth(h.handleWizardDiscard))
	mux.HandleFunc("PUT /api/wizards/{id}/guest", authapi.RequireAuth(h.handleWizardGuest))
	mux.HandleFunc("PUT /api/wizards/{id}/campus", authapi.RequireAuth(h.handleWizardCampus))
	mux.HandleFunc("PUT /api/wizards/{id}/time", authapi.RequireAuth(h.handleWizardTime))
	mux.HandleFunc("POST /api/wizards/{id}/next", authapi.RequireAuth(h.handleWizardNext))
	mux.HandleFunc("POST /api/wizards/{id}/back", authapi.RequireAuth(h.handleWizardBack))
	mux.HandleFunc("PUT /api/wizards/{id}/design", authapi.RequireAuth(h.handleWizardDesign))
	mux.HandleFunc("GET /api/wizards/{id}/preview", authapi.RequireAuth(h.handleWizardPreview))
	mux.HandleFunc("POST /api/wizards/{id}/generate", authapi.RequireAuth(h.handleWizardGenerate))
	mux.HandleFunc("POST /api/wizards/{id}/retry-persist", authapi.RequireAuth(h.handleWizardRetry))
	mux.HandleFunc("POST /api/wizards/{id}/reset", authapi.RequireAuth(h.handleWizardReset))
	mux.HandleFunc("GET /api/wizards/{id}/flyer", authapi.RequireAuth(h.handleWizardFlyer))
	mux.HandleFunc("GET /api/wizards/{id}/share", authapi.RequireAuth(h.handleWizardShare))

	mux.HandleFunc("GET /verify/{token}", h.handleVerify)
	mux.HandleFunc("POST /api/checkins", h.handleCheckIn)

	mux.HandleFunc("GET /api/invitations/mine", authapi.RequireAuth(h.handleMine))
}

func (h *Handler) handleCampuses(w http.ResponseWriter, r *http.Request) {
	list, err := h.campuses.List(r.Context())
	if err != nil {
		h.log.Errorw("campus.list.fail", "err", err)
		httpx.WriteKindError(w, invitation.E("campus.List", invitation.KindPersistence, err))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, campusesResponse{Campuses: list})
}

func (h *Handler) handleDesigns(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, designsResponse{Designs: flyer.Variants()})
}

// handlePreview renders a design with the PREVIEW payload from query
// parameters alone, for the design carousel.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "flyer.Preview"
	q := r.URL.Query()

	d, err := flyer.ParseDesign(q.Get("design"))
	if err != nil {
		httpx.WriteKindError(w, invitation.E(op, invitation.KindValidation, err))
		return
	}

	in := flyer.Input{
		GuestName: strings.TrimSpace(q.Get("guest")),
		Time:      strings.TrimSpace(q.Get("time")),
		QRPayload: flyer.PreviewPayload,
		Design:    d,
	}
	if id := strings.TrimSpace(q.Get("campus_id")); id != "" {
		c, err := h.campuses.Get(r.Context(), id)
		switch {
		case errors.Is(err, campus.ErrNotFound):
			httpx.WriteKindError(w, invitation.E(op, invitation.KindValidation, err))
			return
		case err != nil:
			httpx.WriteKindError(w, invitation.E(op, invitation.KindPersistence, err))
			return
		}
		in.Campus = &flyer.CampusInfo{Name: c.Name, Address: c.Address}
		if in.Time == "" {
			in.Time = c.DefaultTime()
		}
	}

	a, err := h.renderer.Render(in)
	if err != nil {
		h.log.Errorw("flyer.preview.fail", "design", d, "err", err)
		httpx.WriteKindError(w, invitation.E(op, invitation.KindRender, err))
		return
	}
	writePNG(w, a, "")
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	list, err := h.invitations.ListByInviter(r.Context(), p.UserID)
	if err != nil {
		h.log.Errorw("invitation.mine.fail", "user_id", p.UserID, "err", err)
		httpx.WriteKindError(w, invitation.E("invitation.ListByInviter", invitation.KindPersistence, err))
		return
	}
	if list == nil {
		list = []invitation.Invitation{}
	}

	attended := 0
	for _, inv := range list {
		if inv.Attended() {
			attended++
		}
	}
	httpx.WriteJSON(w, http.StatusOK, mineResponse{
		Invitations: list,
		Total:       len(list),
		Attended:    attended,
		AsOf:        h.now(),
	})
}

// writePNG writes a flyer. A non-empty fileName makes it a download.
func writePNG(w http.ResponseWriter, a flyer.Artifact, fileName string) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(a.PNG)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Flyer-Design", string(a.Design))
	if fileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.PNG)
}
