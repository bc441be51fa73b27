// Package adminapi serves the admin dashboard: headline stats, filtered and
// sorted member and invitation listings, and member role changes.
package adminapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/admin"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"

	"go.uber.org/zap"
)

// ErrAdminLocked is returned when a role change targets an admin.
var ErrAdminLocked = errors.New("admin roles cannot be changed here")

// RoleStore reads and updates member roles.
type RoleStore interface {
	GetUserByID(ctx context.Context, id string) (identity.User, error)
	UpdateRole(ctx context.Context, id string, role identity.Role) (identity.User, error)
}

// Handler serves /api/admin.
type Handler struct {
	log     *zap.SugaredLogger
	loader  admin.Loader
	roles   RoleStore
	maxBody int64
	now     func() time.Time
}

// NewHandler returns a Handler reading snapshots through loader.
func NewHandler(log *zap.SugaredLogger, loader admin.Loader, roles RoleStore) (*Handler, error) {
	if loader.Invitations == nil || loader.Users == nil || roles == nil {
		return nil, errors.New("adminapi: loader listers and role store are required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{
		log:     log,
		loader:  loader,
		roles:   roles,
		maxBody: 16 << 10,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register wires the admin routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/admin/stats", requireAdmin(h.handleStats))
	mux.HandleFunc("GET /api/admin/users", requireAdmin(h.handleUsers))
	mux.HandleFunc("GET /api/admin/invitations", requireAdmin(h.handleInvitations))
	mux.HandleFunc("PATCH /api/admin/users/{id}/role", requireAdmin(h.handleRole))
}

func requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.FromContext(r.Context())
		switch {
		case p == nil:
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		case !p.IsAdmin():
			httpx.WriteKindError(w, invitation.E("admin", invitation.KindAccessDenied, nil))
		default:
			next(w, r)
		}
	}
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (admin.Snapshot, bool) {
	snap, err := h.loader.Load(r.Context())
	if err != nil {
		h.log.Errorw("admin.load.fail", "err", err)
		kind := invitation.KindPersistence
		if errors.Is(err, context.DeadlineExceeded) {
			kind = invitation.KindTimeout
		}
		httpx.WriteKindError(w, invitation.E("admin.Load", kind, err))
		return admin.Snapshot{}, false
	}
	return snap, true
}

type statsResponse struct {
	Stats admin.Stats `json:"stats"`
	AsOf  time.Time   `json:"as_of"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, statsResponse{Stats: snap.Stats, AsOf: h.now()})
}

type userRow struct {
	identity.User
	Invites int `json:"invites"`
}

type usersResponse struct {
	Users []userRow `json:"users"`
	Total int       `json:"total"`
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, ok := admin.ParseSortKey(q.Get("sort"))
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "sort must be name, created or invites")
		return
	}
	var f admin.UserFilter
	if s := q.Get("role"); s != "" {
		role, err := identity.ParseRole(s)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown role")
			return
		}
		f.Role = role
	}
	f.Query = q.Get("q")

	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	users := admin.SortUsers(admin.FilterUsers(snap.Users, f), key, snap.Stats.InviteCounts)
	out := usersResponse{Users: make([]userRow, 0, len(users)), Total: len(snap.Users)}
	for _, u := range users {
		out.Users = append(out.Users, userRow{User: u, Invites: snap.Stats.InviteCounts[u.ID]})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type invitationsResponse struct {
	Invitations []admin.InvitationRow `json:"invitations"`
	Total       int                   `json:"total"`
}

func (h *Handler) handleInvitations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key, ok := admin.ParseSortKey(q.Get("sort"))
	if !ok || key == admin.SortInvites {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "sort must be name or created")
		return
	}
	var f admin.InvitationFilter
	if s := q.Get("status"); s != "" && s != "all" {
		st := invitation.Status(s)
		if !st.Valid() {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "status must be sent, attended or all")
			return
		}
		f.Status = st
	}
	f.Query = q.Get("q")

	snap, ok := h.load(w, r)
	if !ok {
		return
	}
	rows := admin.SortInvitations(admin.FilterInvitations(snap.Invitations, f), key)
	httpx.WriteJSON(w, http.StatusOK, invitationsResponse{Invitations: rows, Total: len(snap.Invitations)})
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil || role.IsAdmin() {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "role must be inviter or pcu_host")
		return
	}

	ctx := r.Context()
	id := r.PathValue("id")
	target, err := h.roles.GetUserByID(ctx, id)
	switch {
	case identity.IsNotFound(err):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", "user not found")
		return
	case err != nil:
		h.log.Errorw("admin.role.lookup.fail", "user_id", id, "err", err)
		httpx.WriteKindError(w, invitation.E("admin.UpdateRole", invitation.KindPersistence, err))
		return
	case target.Role.IsAdmin():
		httpx.WriteError(w, http.StatusConflict, "admin_locked", ErrAdminLocked.Error())
		return
	}

	u, err := h.roles.UpdateRole(ctx, id, role)
	if err != nil {
		h.log.Errorw("admin.role.update.fail", "user_id", id, "err", err)
		httpx.WriteKindError(w, invitation.E("admin.UpdateRole", invitation.KindPersistence, err))
		return
	}
	h.log.Infow("admin.role.updated",
		"user_id", u.ID,
		"from", target.Role,
		"to", u.Role,
		"by", auth.FromContext(ctx).UserID,
	)
	httpx.WriteJSON(w, http.StatusOK, u)
}
