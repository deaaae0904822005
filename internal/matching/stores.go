package matching

import (
	"context"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/repository"
)

// The persistence operations matching needs. repository.* satisfies them.

type UserStore interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	Summaries(ctx context.Context, ids ...uint64) (map[uint64]db.User, error)
}

type ListingStore interface {
	Get(ctx context.Context, id uint64) (*db.Listing, error)
	IDsByOwner(ctx context.Context, ownerID uint64) ([]uint64, error)
}

type LikeStore interface {
	Create(ctx context.Context, like *db.Like) error
	FindUserLike(ctx context.Context, fromUserID, toUserID uint64) (*db.Like, error)
	FindListingLike(ctx context.Context, fromUserID uint64, listingIDs []uint64) (*db.Like, error)
}

type MatchStore interface {
	CreateOnce(ctx context.Context, user1, user2, listingID uint64) (db.Match, bool, error)
}

// CounterInvalidator drops cached incoming-like counters.
type CounterInvalidator interface {
	InvalidateIncomingLikeCount(ctx context.Context, userIDs ...uint64) error
}

// Stores groups the persistence collaborators.
type Stores struct {
	Users    UserStore
	Listings ListingStore
	Likes    LikeStore
	Matches  MatchStore
}

// NewStores wires the gorm repositories.
func NewStores(database *gorm.DB) Stores {
	return Stores{
		Users:    repository.NewUserRepository(database),
		Listings: repository.NewListingRepository(database),
		Likes:    repository.NewLikeRepository(database),
		Matches:  repository.NewMatchRepository(database),
	}
}
