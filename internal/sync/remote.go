package sync

import (
	"context"
	"errors"

	"github.com/FairHead/GymFit/internal/models"
)

// ErrRemoteAbsent is returned by Pull when the remote store has no copy of
// the aggregate. Absence is never interpreted as a deletion — without a
// tombstone protocol it only ever means "needs materialization".
var ErrRemoteAbsent = errors.New("aggregate not present on remote")

// RemoteHead is a lightweight listing entry from the remote change feed.
type RemoteHead struct {
	RoutineID string `json:"routineId"`
	UpdatedAt int64  `json:"updatedAt"`
}

// RemoteStore is the remote copy of the routine aggregates, reachable only
// through whole-aggregate pull/push/delete keyed by routine id. Transport
// and storage behind it are the server's business.
type RemoteStore interface {
	// Pull fetches the remote aggregate, or ErrRemoteAbsent.
	Pull(ctx context.Context, routineID string) (*models.RoutineAggregate, error)

	// Push uploads the aggregate wholesale, replacing any remote copy.
	Push(ctx context.Context, agg *models.RoutineAggregate) error

	// Delete removes the remote copy. The engine itself never calls this;
	// it exists for an eventual tombstone protocol.
	Delete(ctx context.Context, routineID string) error

	// ChangedSince lists aggregates whose remote updatedAt is strictly
	// newer than ts.
	ChangedSince(ctx context.Context, ts int64) ([]RemoteHead, error)
}

// Identity is the auth/identity collaborator: a stable user id and an
// online/offline check. The engine refuses to run offline.
type Identity interface {
	UserID() string
	Online(ctx context.Context) bool
}
