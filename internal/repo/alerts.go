package repo

import (
	"context"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// StatusStore keeps the monitor's last known status across restarts. It is
// only wired when persistence of that state is switched on.
type StatusStore interface {
	// LastStatus returns domain.StatusUnknown, nil if there's no record yet.
	LastStatus(ctx context.Context) (domain.Status, error)
	SetLastStatus(ctx context.Context, s domain.Status) error
}
