package invitation

import (
	"context"
	"errors"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/auth"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
)

// DefaultVerifyTimeout bounds the lookup and update of one verification.
const DefaultVerifyTimeout = 5 * time.Second

// Outcome is a successful verification result.
type Outcome string

const (
	OutcomeConfirmed        Outcome = "confirmed"
	OutcomeAlreadyConfirmed Outcome = "already_confirmed"
)

// Result is what a host sees after scanning a code.
type Result struct {
	Outcome     Outcome
	Invitation  Invitation
	CampusName  string
	InviterName string
}

// CheckIn describes a newly confirmed attendance.
type CheckIn struct {
	Result     Result
	VerifiedBy string
}

// Listener is told about every newly confirmed attendance. It must not block.
// ctx carries the caller's values but is never cancelled, so it may be
// handed to work that outlives Verify.
type Listener interface {
	CheckedIn(ctx context.Context, c CheckIn)
}

// Observer records the outcome label of every verification attempt.
type Observer interface {
	ObserveVerification(outcome string)
}

// UserLookup resolves inviter names for results.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (identity.User, error)
}

// Verifier performs the attendance transition.
type Verifier struct {
	store     Store
	campuses  campus.Directory
	users     UserLookup
	timeout   time.Duration
	now       func() time.Time
	listeners []Listener
	observer  Observer
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier) error

// WithTimeout sets the bound on lookup + update.
func WithTimeout(d time.Duration) VerifierOption {
	return func(v *Verifier) error {
		if d <= 0 {
			return ErrInvalidInput
		}
		v.timeout = d
		return nil
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) error {
		if now == nil {
			return ErrInvalidInput
		}
		v.now = now
		return nil
	}
}

// WithDirectory resolves campus names for results.
func WithDirectory(d campus.Directory) VerifierOption {
	return func(v *Verifier) error { v.campuses = d; return nil }
}

// WithUsers resolves inviter names for results.
func WithUsers(u UserLookup) VerifierOption {
	return func(v *Verifier) error { v.users = u; return nil }
}

// WithListener adds a check-in listener.
func WithListener(l Listener) VerifierOption {
	return func(v *Verifier) error {
		if l != nil {
			v.listeners = append(v.listeners, l)
		}
		return nil
	}
}

// WithObserver sets the outcome observer.
func WithObserver(o Observer) VerifierOption {
	return func(v *Verifier) error { v.observer = o; return nil }
}

// NewVerifier constructs a Verifier over store.
func NewVerifier(store Store, opts ...VerifierOption) (*Verifier, error) {
	if store == nil {
		return nil, ErrInvalidInput
	}
	v := &Verifier{store: store, timeout: DefaultVerifyTimeout, now: time.Now}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Verify confirms attendance for the invitation behind code on behalf of p.
//
// Only admin and pcu_host principals get past the first check; everyone else
// receives KindAccessDenied before any lookup happens. An invitation that is
// already attended is reported with its original attended_at and not written.
func (v *Verifier) Verify(ctx context.Context, p *auth.Principal, code string) (Result, error) {
	res, err := v.verify(ctx, p, code)
	if v.observer != nil {
		label := string(res.Outcome)
		if err != nil {
			label = string(KindOf(err))
		}
		v.observer.ObserveVerification(label)
	}
	return res, err
}

func (v *Verifier) verify(ctx context.Context, p *auth.Principal, code string) (Result, error) {
	const op = "invitation.Verify"

	if !p.CanVerify() {
		return Result{}, E(op, KindAccessDenied, nil)
	}

	token, ok := ParseToken(code)
	if !ok {
		return Result{}, E(op, KindNotFound, ErrNotFound)
	}

	notify := context.WithoutCancel(ctx)
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	inv, err := v.store.GetByToken(ctx, token)
	if err != nil {
		return Result{}, classify(op, err)
	}

	if inv.Attended() {
		return v.result(ctx, OutcomeAlreadyConfirmed, inv), nil
	}

	inv, err = v.store.MarkAttended(ctx, token, v.now())
	switch {
	case errors.Is(err, ErrAlreadyAttended):
		// Lost a race with another scan; report the winner's timestamp.
		return v.result(ctx, OutcomeAlreadyConfirmed, inv), nil
	case err != nil:
		return Result{}, classify(op, err)
	}

	res := v.result(ctx, OutcomeConfirmed, inv)
	for _, l := range v.listeners {
		l.CheckedIn(notify, CheckIn{Result: res, VerifiedBy: p.UserID})
	}
	return res, nil
}

func classify(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return E(op, KindTimeout, err)
	case errors.Is(err, ErrNotFound):
		return E(op, KindNotFound, err)
	default:
		return E(op, KindPersistence, err)
	}
}

// result fills display names. Lookup failures leave them empty.
func (v *Verifier) result(ctx context.Context, o Outcome, inv Invitation) Result {
	res := Result{Outcome: o, Invitation: inv}
	if v.campuses != nil {
		if c, err := v.campuses.Get(ctx, inv.CampusID); err == nil {
			res.CampusName = c.Name
		}
	}
	if v.users != nil {
		if u, err := v.users.GetUserByID(ctx, inv.InviterID); err == nil {
			res.InviterName = u.FullName
		}
	}
	return res
}
