package authapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth/session"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/httpx"

	"go.uber.org/zap"
)

var (
	// ErrUnauthenticated means the bearer token or its session is not valid.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrProfileTimeout means the profile lookup exceeded Config.ProfileTimeout.
	ErrProfileTimeout = errors.New("profile lookup timed out")
)

// Handler serves sign-up, sign-in and sign-out, and turns bearer tokens into
// request principals.
type Handler struct {
	log *zap.SugaredLogger
	cfg Config

	users    identity.Store
	hasher   identity.Hasher
	sessions *session.Service
	throttle *loginThrottle

	now func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(log *zap.SugaredLogger, cfg Config, users identity.Store, hasher identity.Hasher, sessions *session.Service) (*Handler, error) {
	if users == nil || hasher == nil || sessions == nil {
		return nil, errors.New("authapi: users, hasher and sessions are required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cfg = cfg.normalized()
	return &Handler{
		log:      log,
		cfg:      cfg,
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		throttle: newLoginThrottle(cfg),
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register wires auth routes onto mux. The mutating routes read the
// principal, so mount mux behind Middleware.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /auth/signup", h.handleSignup)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/refresh", RequireAuth(h.handleRefresh))
	mux.HandleFunc("POST /auth/logout", RequireAuth(h.handleLogout))
	mux.HandleFunc("POST /auth/logout_all", RequireAuth(h.handleLogoutAll))
	mux.HandleFunc("GET /me", RequireAuth(h.handleMe))
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	ctx := r.Context()
	now := h.now()
	ip := httpx.ClientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	u, err := h.users.CreateUser(ctx, identity.CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     identity.RoleInviter,
		Now:      now,
	})
	switch {
	case identity.IsInvalidInput(err):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email, full name and a strong password are required")
		return
	case identity.IsConflict(err):
		httpx.WriteError(w, http.StatusConflict, "email_taken", "an account with this email already exists")
		return
	case err != nil:
		h.log.Errorw("auth.signup.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	h.auditSignup(u.ID, ip, ua)

	issued, err := h.sessions.SignIn(ctx, now, u.ID, session.DeviceContext{UserAgent: ua, IP: ip})
	if err != nil {
		h.log.Errorw("auth.signup.issue_session.fail", "user_id", u.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, authResponse{User: u, Session: toSessionResponse(issued)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	email := identity.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := h.now()
	ip := httpx.ClientIP(r, h.cfg.TrustProxy)
	ipKey := ""
	if ip != nil {
		ipKey = ip.String()
	}
	ua := strings.TrimSpace(r.UserAgent())

	if blocked, retry := h.throttle.check(now, ipKey, email); blocked {
		h.auditLoginRateLimited(ip, ua, email)
		writeRateLimited(w, retry)
		return
	}

	u, err := identity.Authenticate(ctx, h.users, h.hasher, email, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		h.throttle.fail(now, ipKey, email)
		h.auditLoginFailed(ip, ua, email, "invalid_credentials")
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}
	if err != nil {
		h.log.Errorw("auth.login.lookup.fail", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	h.throttle.succeed(email)

	issued, err := h.sessions.SignIn(ctx, now, u.ID, session.DeviceContext{UserAgent: ua, IP: ip})
	if err != nil {
		h.log.Errorw("auth.login.issue_session.fail", "user_id", u.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	h.auditLoginSuccess(u.ID, issued.SessionID, ip, ua)

	httpx.WriteJSON(w, http.StatusOK, authResponse{User: u, Session: toSessionResponse(issued)})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	issued, err := h.sessions.Refresh(r.Context(), h.now(), session.AccessClaims{UserID: p.UserID, SessionID: p.SessionID})
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "session_not_active", "session not active")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, refreshResponse{Session: toSessionResponse(issued)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if err := h.sessions.SignOut(r.Context(), h.now(), p.SessionID); err != nil {
		h.log.Errorw("auth.logout.fail", "session_id", p.SessionID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	h.auditLogout(p.UserID, p.SessionID, httpx.ClientIP(r, h.cfg.TrustProxy), r.UserAgent())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	if err := h.sessions.SignOutEverywhere(r.Context(), h.now(), p.UserID); err != nil {
		h.log.Errorw("auth.logout_all.fail", "user_id", p.UserID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	h.auditLogoutAll(p.UserID, httpx.ClientIP(r, h.cfg.TrustProxy), r.UserAgent())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p := auth.FromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, meResponse{
		User: identity.User{
			ID:       p.UserID,
			Email:    p.Email,
			FullName: p.FullName,
			Role:     p.Role,
		},
		SessionID: p.SessionID,
		CanVerify: p.CanVerify(),
		IsAdmin:   p.IsAdmin(),
	})
}

// Authenticate validates token and loads the member's current profile, so a
// role change applies to the very next request.
func (h *Handler) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := h.sessions.Validate(ctx, token, h.now())
	if err != nil {
		return nil, ErrUnauthenticated
	}

	pctx, cancel := context.WithTimeout(ctx, h.cfg.ProfileTimeout)
	defer cancel()

	u, err := h.users.GetUserByID(pctx, claims.UserID)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(pctx.Err(), context.DeadlineExceeded):
		return nil, ErrProfileTimeout
	case identity.IsNotFound(err):
		return nil, ErrUnauthenticated
	case err != nil:
		return nil, err
	}

	return &auth.Principal{
		UserID:    u.ID,
		SessionID: claims.SessionID,
		Role:      u.Role,
		FullName:  u.FullName,
		Email:     u.Email,
	}, nil
}

// Middleware attaches the principal for requests carrying a bearer token.
// Requests without one pass through anonymously; a bad token is rejected.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := httpx.BearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := h.Authenticate(r.Context(), token)
		switch {
		case errors.Is(err, ErrProfileTimeout):
			httpx.WriteAPIError(w, http.StatusGatewayTimeout, httpx.APIError{Code: "timeout", Message: "profile lookup timed out", Retryable: true})
			return
		case errors.Is(err, ErrUnauthenticated):
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		case err != nil:
			h.log.Errorw("auth.middleware.fail", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// RequireAuth answers 401 when the request has no principal.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		next(w, r)
	}
}
