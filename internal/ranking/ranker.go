package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/logger"
	"github.com/stecc88/roommatch/internal/repository"
)

// Candidate is a pool member with its compatibility score.
type Candidate struct {
	User          db.User
	Compatibility int
}

// Rank drops every candidate in liked or matched and scores the rest
// against me. Pool order is kept.
func Rank(me *db.User, pool []db.User, liked, matched []uint64, now time.Time) []Candidate {
	skip := make(map[uint64]struct{}, len(liked)+len(matched))
	for _, id := range liked {
		skip[id] = struct{}{}
	}
	for _, id := range matched {
		skip[id] = struct{}{}
	}

	out := make([]Candidate, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		if _, ok := skip[c.ID]; ok {
			continue
		}
		out = append(out, Candidate{User: *c, Compatibility: Score(me, c, now)})
	}
	return out
}

type UserSource interface {
	Get(ctx context.Context, id uint64) (*db.User, error)
	DiscoverPool(ctx context.Context, requesterID uint64, filter repository.PoolFilter, limit, offset int) ([]db.User, error)
}

type LikedSource interface {
	LikedUserIDs(ctx context.Context, fromUserID uint64) ([]uint64, error)
}

type MatchedSource interface {
	CounterpartIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// Ranker builds a user's discovery feed.
type Ranker struct {
	users   UserSource
	likes   LikedSource
	matches MatchedSource
	log     *slog.Logger
	now     func() time.Time
}

func NewRanker(users UserSource, likes LikedSource, matches MatchedSource, log *slog.Logger) *Ranker {
	return &Ranker{users: users, likes: likes, matches: matches, log: log, now: time.Now}
}

// NewRankerFromDB wires the gorm repositories.
func NewRankerFromDB(database *gorm.DB, log *slog.Logger) *Ranker {
	return NewRanker(
		repository.NewUserRepository(database),
		repository.NewLikeRepository(database),
		repository.NewMatchRepository(database),
		log,
	)
}

// Discover returns one page of scored candidates for requesterID.
//
// Behavior:
//   - The pool page is cut by the store first (self, filters, limit and
//     offset); already liked or matched users are removed afterwards, so a
//     page can hold fewer than limit candidates.
//   - Only direct user likes count as liked.
//
// Returns gorm.ErrRecordNotFound (wrapped) when the requester is unknown.
func (r *Ranker) Discover(
	ctx context.Context,
	requesterID uint64,
	filter repository.PoolFilter,
	limit, offset int,
) ([]Candidate, error) {
	me, err := r.users.Get(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load requester %d: %w", requesterID, err)
	}

	pool, err := r.users.DiscoverPool(ctx, requesterID, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}

	liked, err := r.likes.LikedUserIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load liked users: %w", err)
	}
	matched, err := r.matches.CounterpartIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("load matched users: %w", err)
	}

	out := Rank(me, pool, liked, matched, r.now())
	logger.FromContext(ctx, r.log).Debug("discover ranked",
		"requester", requesterID, "pool", len(pool), "returned", len(out))
	return out, nil
}
