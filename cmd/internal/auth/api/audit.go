package authapi

import (
	"net"
)

// Audit actions.
const (
	actionLoginFailed      = "auth.login.failed"
	actionLoginRateLimited = "auth.login.rate_limited"
	actionLoginSuccess     = "auth.login.success"
	actionSignup           = "auth.signup"
	actionLogout           = "auth.logout"
	actionLogoutAll        = "auth.logout_all"
)

// audit emits a structured "auth.audit" event. Events carry ids and
// reasons, never passwords or tokens.
func (h *Handler) audit(action string, userID, sessionID string, ip net.IP, ua string, kv ...any) {
	fields := []any{"action", action}
	if userID != "" {
		fields = append(fields, "user_id", userID)
	}
	if sessionID != "" {
		fields = append(fields, "session_id", sessionID)
	}
	if ip != nil {
		fields = append(fields, "ip", ip.String())
	}
	if ua != "" {
		if len(ua) > 256 {
			ua = ua[:256]
		}
		fields = append(fields, "user_agent", ua)
	}
	fields = append(fields, kv...)
	h.log.Infow("auth.audit", fields...)
}

func (h *Handler) auditLoginFailed(ip net.IP, ua, email, reason string) {
	h.audit(actionLoginFailed, "", "", ip, ua, "email", email, "reason", reason)
}

func (h *Handler) auditLoginRateLimited(ip net.IP, ua, email string) {
	h.audit(actionLoginRateLimited, "", "", ip, ua, "email", email)
}

func (h *Handler) auditLoginSuccess(userID, sessionID string, ip net.IP, ua string) {
	h.audit(actionLoginSuccess, userID, sessionID, ip, ua)
}

func (h *Handler) auditSignup(userID string, ip net.IP, ua string) {
	h.audit(actionSignup, userID, "", ip, ua)
}

func (h *Handler) auditLogout(userID, sessionID string, ip net.IP, ua string) {
	h.audit(actionLogout, userID, sessionID, ip, ua)
}

func (h *Handler) auditLogoutAll(userID string, ip net.IP, ua string) {
	h.audit(actionLogoutAll, userID, "", ip, ua)
}
