package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	apperrors "github.com/welldanyogia/job-application-tracker/internal/errors"
	"github.com/welldanyogia/job-application-tracker/internal/repository"
)

// Application IDs are drawn from this closed range, so at most 9000
// applications can be stored at once.
const (
	MinApplicationID = 1000
	MaxApplicationID = 9999

	// MaxIDDraws bounds the draw-until-unused loop so a full ID space fails
	// instead of spinning forever.
	MaxIDDraws = 50000
)

// ErrIDSpaceExhausted is returned when no unused ID was found within MaxIDDraws draws
var ErrIDSpaceExhausted = fmt.Errorf("no free application id in [%d, %d]: %w",
	MinApplicationID, MaxApplicationID, apperrors.ErrInternal)

// IDAllocator hands out random, currently unused application IDs
type IDAllocator struct {
	repo     repository.ApplicationRepository
	draw     func() uint
	maxDraws int
}

// NewIDAllocator creates an allocator drawing uniformly from
// [MinApplicationID, MaxApplicationID]. A nil draw uses math/rand/v2.
func NewIDAllocator(repo repository.ApplicationRepository, draw func() uint) *IDAllocator {
	if draw == nil {
		draw = RandomApplicationID
	}
	return &IDAllocator{
		repo:     repo,
		draw:     draw,
		maxDraws: MaxIDDraws,
	}
}

// RandomApplicationID draws a uniformly random ID from the application range
func RandomApplicationID() uint {
	return uint(MinApplicationID + rand.IntN(MaxApplicationID-MinApplicationID+1))
}

// Next re-draws until it finds an ID that is not stored. The check is not
// atomic with the later insert; the primary key catches the race.
func (a *IDAllocator) Next(ctx context.Context) (uint, error) {
	for i := 0; i < a.maxDraws; i++ {
		id := a.draw()
		exists, err := a.repo.ExistsByID(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to check application id %d: %w", id, err)
		}
		if !exists {
			return id, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	return 0, ErrIDSpaceExhausted
}

// isIDCollision reports whether an insert lost the ID race
func isIDCollision(err error) bool {
	return errors.Is(err, repository.ErrDuplicateID)
}
