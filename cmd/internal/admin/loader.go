package admin

import (
	"context"

	"github.com/Mykel-Eze/tcn-invite/cmd/identity"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/campus"
	"github.com/Mykel-Eze/tcn-invite/cmd/internal/invitation"

	"golang.org/x/sync/errgroup"
)

// InvitationLister lists every invitation newest first.
type InvitationLister interface {
	List(ctx context.Context) ([]invitation.Invitation, error)
}

// UserLister lists every member newest first.
type UserLister interface {
	ListUsers(ctx context.Context) ([]identity.User, error)
}

// Snapshot is one consistent read of the dashboard data.
type Snapshot struct {
	Invitations []InvitationRow
	Users       []identity.User
	Stats       Stats
}

// Loader fetches snapshots.
type Loader struct {
	Invitations InvitationLister
	Users       UserLister
	Campuses    campus.Directory
}

// Load reads invitations, members and campuses concurrently. Any failure
// cancels the others and is returned.
func (l Loader) Load(ctx context.Context) (Snapshot, error) {
	var (
		invs     []invitation.Invitation
		users    []identity.User
		campuses []campus.Campus
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		invs, err = l.Invitations.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = l.Users.ListUsers(gctx)
		return err
	})
	if l.Campuses != nil {
		g.Go(func() error {
			var err error
			campuses, err = l.Campuses.List(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	names := make(map[string]string, len(campuses))
	for _, c := range campuses {
		names[c.ID] = c.Name
	}

	return Snapshot{
		Invitations: Rows(invs, names, users),
		Users:       users,
		Stats:       Compute(invs, users),
	}, nil
}
