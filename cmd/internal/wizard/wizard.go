package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/flyer"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"

	"go.uber.org/zap"
)

// State is a wizard step.
type State string

const (
	StateCollectingGuestData State = "collecting_guest_data"
	StateSelectingDesign     State = "selecting_design"
	StateGenerated           State = "generated"
)

// Guest holds the free-text guest details.
type Guest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Result is what a successful Generate hands back to the member.
type Result struct {
	Invitation      invitation.Invitation
	Token           string
	VerificationURL string
	Artifact        flyer.Artifact
	FileName        string
	ShareURL        string

	// Persisted is false when the insert failed; PersistErr holds the cause.
	Persisted  bool
	PersistErr error
}

// Snapshot is a copy of the wizard's state.
type Snapshot struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	State     State          `json:"state"`
	Guest     Guest          `json:"guest"`
	Campus    *campus.Campus `json:"campus,omitempty"`
	Time      string         `json:"time,omitempty"`
	Design    flyer.Design   `json:"design,omitempty"`
	Result    *Result        `json:"-"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Recorder receives generation metrics.
type Recorder interface {
	InvitationGenerated(design string)
	PersistFailed()
	RenderFailed()
	ObserveRender(d time.Duration)
}

// Deps are the collaborators shared by every wizard.
type Deps struct {
	Store    invitation.Store
	Renderer flyer.Renderer
	Campuses campus.Directory
	Log      *zap.SugaredLogger
	Recorder Recorder

	// BaseURL prefixes verification URLs, e.g. https://invite.tcn.church.
	BaseURL string
	// ShareBase is the external share endpoint; empty means WhatsApp.
	ShareBase string

	Now      func() time.Time
	NewToken func() (string, error)
}

func (d Deps) withDefaults() (Deps, error) {
	if d.Store == nil || d.Campuses == nil {
		return Deps{}, invitation.ErrInvalidInput
	}
	if d.Renderer == nil {
		d.Renderer = flyer.DefaultRenderer{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.NewToken == nil {
		d.NewToken = invitation.NewToken
	}
	return d, nil
}

// Wizard is one member's in-progress invitation. Methods are safe for
// concurrent use.
type Wizard struct {
	deps Deps

	mu        sync.Mutex
	id        string
	ownerID   string
	state     State
	guest     Guest
	campus    *campus.Campus
	time      string
	design    flyer.Design
	result    *Result
	pending   *invitation.NewRecord
	updatedAt time.Time

	// active mirrors updatedAt for the registry sweep, which must not wait
	// on mu while a Generate is in flight.
	active atomic.Int64
}

// New returns a wizard in collecting_guest_data owned by ownerID.
func New(id, ownerID string, deps Deps) (*Wizard, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, invitation.E("wizard.New", invitation.KindValidation, invitation.ErrInvalidInput)
	}
	deps, err := deps.withDefaults()
	if err != nil {
		return nil, err
	}
	w := &Wizard{deps: deps, id: id, ownerID: ownerID}
	w.reset()
	return w, nil
}

func (w *Wizard) reset() {
	w.state = StateCollectingGuestData
	w.guest = Guest{}
	w.campus = nil
	w.time = ""
	w.design = ""
	w.result = nil
	w.pending = nil
	w.touch()
}

func (w *Wizard) touch() {
	w.updatedAt = w.deps.Now()
	w.active.Store(w.updatedAt.UnixNano())
}

func validation(op string, err error) error {
	return invitation.E(op, invitation.KindValidation, err)
}

// ID returns the wizard id.
func (w *Wizard) ID() string { return w.id }

// OwnerID returns the member who started the wizard.
func (w *Wizard) OwnerID() string { return w.ownerID }

// LastActive returns the time of the last change.
func (w *Wizard) LastActive() time.Time {
	return time.Unix(0, w.active.Load()).UTC()
}

// Snapshot returns a copy of the current state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot()
}

func (w *Wizard) snapshot() Snapshot {
	s := Snapshot{
		ID:        w.id,
		OwnerID:   w.ownerID,
		State:     w.state,
		Guest:     w.guest,
		Time:      w.time,
		Design:    w.design,
		UpdatedAt: w.updatedAt,
	}
	if w.campus != nil {
		c := *w.campus
		c.ServiceTimes = append([]string(nil), c.ServiceTimes...)
		s.Campus = &c
	}
	if w.result != nil {
		r := *w.result
		s.Result = &r
	}
	return s
}

// SetGuest replaces the guest details.
func (w *Wizard) SetGuest(g Guest) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateCollectingGuestData {
		return w.snapshot(), validation("wizard.SetGuest", ErrInvalidTransition)
	}
	w.guest = Guest{
		Name:  strings.TrimSpace(g.Name),
		Phone: strings.TrimSpace(g.Phone),
		Email: strings.TrimSpace(g.Email),
	}
	w.touch()
	return w.snapshot(), nil
}

// SelectCampus picks a campus and resets the time to its first service time.
func (w *Wizard) SelectCampus(ctx context.Context, campusID string) (Snapshot, error) {
	const op = "wizard.SelectCampus"

	w.mu.Lock()
	if w.state != StateCollectingGuestData {
		defer w.mu.Unlock()
		return w.snapshot(), validation(op, ErrInvalidTransition)
	}
	w.mu.Unlock()

	c, err := w.deps.Campuses.Get(ctx, strings.TrimSpace(campusID))
	if err != nil {
		if errors.Is(err, campus.ErrNotFound) {
			return w.Snapshot(), validation(op, ErrMissingCampus)
		}
		return w.Snapshot(), invitation.E(op, invitation.KindOf(err), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateCollectingGuestData {
		return w.snapshot(), validation(op, ErrInvalidTransition)
	}
	w.campus = &c
	w.time = c.DefaultTime()
	w.touch()
	return w.snapshot(), nil
}

// SelectTime picks one of the selected campus's service times.
func (w *Wizard) SelectTime(t string) (Snapshot, error) {
	const op = "wizard.SelectTime"

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.state != StateCollectingGuestData:
		return w.snapshot(), validation(op, ErrInvalidTransition)
	case w.campus == nil:
		return w.snapshot(), validation(op, ErrMissingCampus)
	}
	t = strings.TrimSpace(t)
	if !w.campus.HasTime(t) {
		return w.snapshot(), validation(op, ErrUnknownTime)
	}
	w.time = t
	w.touch()
	return w.snapshot(), nil
}

// Next moves from collecting_guest_data to selecting_design.
func (w *Wizard) Next() (Snapshot, error) {
	const op = "wizard.Next"

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.state != StateCollectingGuestData:
		return w.snapshot(), validation(op, ErrInvalidTransition)
	case w.guest.Name == "":
		return w.snapshot(), validation(op, ErrMissingGuestName)
	case w.campus == nil:
		return w.snapshot(), validation(op, ErrMissingCampus)
	}
	w.state = StateSelectingDesign
	w.touch()
	return w.snapshot(), nil
}

// Back returns from selecting_design to collecting_guest_data. Generated
// has no way back; use CreateAnother.
func (w *Wizard) Back() (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingDesign {
		return w.snapshot(), validation("wizard.Back", ErrInvalidTransition)
	}
	w.state = StateCollectingGuestData
	w.touch()
	return w.snapshot(), nil
}

// SelectDesign picks the flyer variant.
func (w *Wizard) SelectDesign(d flyer.Design) (Snapshot, error) {
	const op = "wizard.SelectDesign"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateSelectingDesign {
		return w.snapshot(), validation(op, ErrInvalidTransition)
	}
	if !d.Valid() {
		return w.snapshot(), validation(op, flyer.ErrUnknownDesign)
	}
	w.design = d
	w.touch()
	return w.snapshot(), nil
}

// Preview renders the current selections with a placeholder QR payload.
func (w *Wizard) Preview(d flyer.Design) (flyer.Artifact, error) {
	w.mu.Lock()
	in := w.flyerInput(flyer.PreviewPayload)
	w.mu.Unlock()

	in.Design = d
	a, err := w.deps.Renderer.Render(in)
	if err != nil {
		return flyer.Artifact{}, renderError("wizard.Preview", err)
	}
	return a, nil
}

func (w *Wizard) flyerInput(payload string) flyer.Input {
	in := flyer.Input{
		GuestName: w.guest.Name,
		Time:      w.time,
		QRPayload: payload,
		Design:    w.design,
	}
	if w.campus != nil {
		in.Campus = &flyer.CampusInfo{Name: w.campus.Name, Address: w.campus.Address}
	}
	return in
}

func renderError(op string, err error) error {
	if errors.Is(err, flyer.ErrUnknownDesign) {
		return validation(op, err)
	}
	return invitation.E(op, invitation.KindRender, err)
}

// Generate creates the invitation and its flyer.
//
// The steps run in a fixed order: mint token, derive URL, persist, render.
// The lock is held throughout so a double submit cannot mint two invitations.
func (w *Wizard) Generate(ctx context.Context) (Result, error) {
	const op = "wizard.Generate"

	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.state != StateSelectingDesign:
		return Result{}, validation(op, ErrInvalidTransition)
	case w.design == "":
		return Result{}, validation(op, ErrMissingDesign)
	case w.guest.Name == "":
		return Result{}, validation(op, ErrMissingGuestName)
	case w.campus == nil:
		return Result{}, validation(op, ErrMissingCampus)
	}

	token, err := w.deps.NewToken()
	if err != nil {
		return Result{}, invitation.E(op, invitation.KindUnknown, err)
	}
	url := invitation.VerificationURL(w.deps.BaseURL, token)

	rec := invitation.NewRecord{
		QRCodeValue:    token,
		GuestName:      w.guest.Name,
		GuestPhone:     w.guest.Phone,
		GuestEmail:     w.guest.Email,
		CampusID:       w.campus.ID,
		ServiceTime:    w.time,
		InviterID:      w.ownerID,
		Design:         w.design,
		DeliveryMethod: invitation.DeliveryDownload,
		Now:            w.deps.Now(),
	}

	res := Result{
		Token:           token,
		VerificationURL: url,
		FileName:        invitation.FlyerFileName(w.guest.Name),
		ShareURL:        invitation.ShareURL(w.deps.ShareBase, w.guest.Name, w.campus.Name),
	}

	inv, perr := w.deps.Store.Create(ctx, rec)
	if perr != nil {
		w.deps.Log.Errorw("wizard.persist.fail",
			"wizard_id", w.id,
			"inviter_id", w.ownerID,
			"kind", invitation.KindOf(perr),
			"err", perr,
		)
		if w.deps.Recorder != nil {
			w.deps.Recorder.PersistFailed()
		}
		res.PersistErr = invitation.E(op, invitation.KindPersistence, perr)
		res.Invitation = unsaved(rec)
	} else {
		res.Invitation = inv
		res.Persisted = true
	}

	started := time.Now()
	artifact, rerr := w.deps.Renderer.Render(w.flyerInput(url))
	if w.deps.Recorder != nil {
		w.deps.Recorder.ObserveRender(time.Since(started))
	}
	if rerr != nil {
		w.deps.Log.Errorw("wizard.render.fail", "wizard_id", w.id, "design", w.design, "persisted", res.Persisted, "err", rerr)
		if w.deps.Recorder != nil {
			w.deps.Recorder.RenderFailed()
		}
		w.touch()
		return Result{}, renderError(op, rerr)
	}

	res.Artifact = artifact
	w.result = &res
	if !res.Persisted {
		w.pending = &rec
	} else {
		w.pending = nil
	}
	w.state = StateGenerated
	w.touch()

	if w.deps.Recorder != nil {
		w.deps.Recorder.InvitationGenerated(string(w.design))
	}
	w.deps.Log.Infow("wizard.generated",
		"wizard_id", w.id,
		"inviter_id", w.ownerID,
		"design", w.design,
		"persisted", res.Persisted,
	)
	return res, nil
}

// unsaved is the record as it would have been stored, for display only.
func unsaved(rec invitation.NewRecord) invitation.Invitation {
	return invitation.Invitation{
		QRCodeValue:    rec.QRCodeValue,
		GuestName:      rec.GuestName,
		GuestPhone:     rec.GuestPhone,
		GuestEmail:     rec.GuestEmail,
		CampusID:       rec.CampusID,
		ServiceTime:    rec.ServiceTime,
		InviterID:      rec.InviterID,
		Design:         rec.Design,
		Status:         invitation.StatusSent,
		DeliveryMethod: rec.DeliveryMethod,
		CreatedAt:      rec.Now.UTC().Truncate(time.Microsecond),
	}
}

// Result returns the last generated result.
func (w *Wizard) Result() (Result, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return Result{}, false
	}
	return *w.result, true
}

// RetryPersist inserts the last generated invitation again after a failed
// insert. The token and flyer stay the same.
func (w *Wizard) RetryPersist(ctx context.Context) (Result, error) {
	const op = "wizard.RetryPersist"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateGenerated || w.result == nil {
		return Result{}, validation(op, ErrInvalidTransition)
	}
	if w.result.Persisted || w.pending == nil {
		return *w.result, validation(op, ErrNothingToRetry)
	}

	inv, err := w.deps.Store.Create(ctx, *w.pending)
	if errors.Is(err, invitation.ErrDuplicateToken) {
		// The earlier insert may have landed after all; only our own row counts.
		inv, err = w.deps.Store.GetByToken(ctx, w.pending.QRCodeValue)
		if err == nil && inv.InviterID != w.ownerID {
			err = ErrTokenTaken
		}
	}
	if err != nil {
		w.deps.Log.Errorw("wizard.persist.retry.fail", "wizard_id", w.id, "err", err)
		if w.deps.Recorder != nil {
			w.deps.Recorder.PersistFailed()
		}
		w.result.PersistErr = invitation.E(op, invitation.KindPersistence, err)
		return *w.result, w.result.PersistErr
	}

	w.result.Invitation = inv
	w.result.Persisted = true
	w.result.PersistErr = nil
	w.pending = nil
	w.touch()
	w.deps.Log.Infow("wizard.persist.retry.ok", "wizard_id", w.id, "invitation_id", inv.ID)
	return *w.result, nil
}

// CreateAnother discards all in-progress data and starts over. Persisted
// invitations are unaffected.
func (w *Wizard) CreateAnother() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	return w.snapshot()
}
