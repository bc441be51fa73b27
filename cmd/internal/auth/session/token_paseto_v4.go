package session

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

// AccessClaims is what a verified access token asserts.
type AccessClaims struct {
	UserID    string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and verifies access tokens.
type TokenManager interface {
	Issue(userID, sessionID string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

type pasetoV4 struct {
	issuer    string
	ttl       time.Duration
	clockSkew time.Duration
	secret    paseto.V4AsymmetricSecretKey
	public    paseto.V4AsymmetricPublicKey
}

// NewPasetoV4 builds a TokenManager signing v4.public tokens with the configured key.
func NewPasetoV4(cfg Config) (TokenManager, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(cfg.PasetoV4SecretKeyHex)
	if err != nil {
		return nil, ErrConfig
	}
	return &pasetoV4{
		issuer:    cfg.Issuer,
		ttl:       cfg.AccessTokenTTL,
		clockSkew: cfg.ClockSkew,
		secret:    secret,
		public:    secret.Public(),
	}, nil
}

func (m *pasetoV4) Issue(userID, sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	tok := paseto.NewToken()
	tok.SetIssuer(m.issuer)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(exp)
	tok.SetSubject(userID)
	if err := tok.Set("sid", sessionID); err != nil {
		return "", time.Time{}, err
	}

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4) Verify(token string, now time.Time) (AccessClaims, error) {
	// A fresh parser per call keeps rules from accumulating. ValidAt checks
	// iat, nbf and exp against the caller's clock, shifted by the skew.
	p := paseto.NewParserWithoutExpiryCheck()
	p.AddRule(paseto.IssuedBy(m.issuer))
	p.AddRule(paseto.ValidAt(now.Add(m.clockSkew)))

	parsed, err := p.ParseV4Public(m.public, token, nil)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}

	uid, err := parsed.GetSubject()
	if err != nil || uid == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	sid, err := parsed.GetString("sid")
	if err != nil || sid == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	iat, _ := parsed.GetIssuedAt()
	exp, _ := parsed.GetExpiration()

	return AccessClaims{UserID: uid, SessionID: sid, IssuedAt: iat, ExpiresAt: exp}, nil
}
