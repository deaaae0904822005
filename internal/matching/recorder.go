package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/logger"
)

// Result is the outcome of a recorded like.
type Result struct {
	Like    db.Like
	Match   *db.Match // nil when the like is still one-sided
	Created bool      // Match was created by this like
}

// Recorder stores likes and hands them to the Resolver.
type Recorder struct {
	stores   Stores
	resolver *Resolver
	counters CounterInvalidator // optional
	log      *slog.Logger
}

func NewRecorder(stores Stores, resolver *Resolver, counters CounterInvalidator, log *slog.Logger) *Recorder {
	return &Recorder{stores: stores, resolver: resolver, counters: counters, log: log}
}

// RecordLike persists fromUserID's like on target and resolves reciprocity.
//
// Behavior:
//   - The liker and the target must exist; liking yourself or your own
//     listing is rejected. All checks run before anything is written.
//   - Repeated likes are stored as new rows.
//   - The like stays recorded even if resolution fails afterwards.
//
// Example:
//
//	res, err := rec.RecordLike(ctx, 4, matching.ListingTarget{ListingID: 9})
func (r *Recorder) RecordLike(ctx context.Context, fromUserID uint64, target Target) (*Result, error) {
	if err := r.validate(ctx, fromUserID, target); err != nil {
		return nil, err
	}

	like := db.Like{FromUserID: fromUserID}
	switch t := target.(type) {
	case ListingTarget:
		like.ToListingID = &t.ListingID
	case UserTarget:
		like.ToUserID = &t.UserID
	}
	if err := r.stores.Likes.Create(ctx, &like); err != nil {
		return nil, fmt.Errorf("record like: %w", err)
	}

	log := logger.FromContext(ctx, r.log)
	log.Debug("like recorded", "like_id", like.ID, "from", fromUserID, "target", target.String())

	if t, ok := target.(UserTarget); ok && r.counters != nil {
		if err := r.counters.InvalidateIncomingLikeCount(ctx, t.UserID); err != nil {
			log.Warn("failed to invalidate like counter", "user_id", t.UserID, "err", err)
		}
	}

	match, created, err := r.resolver.Resolve(ctx, fromUserID, target)
	if err != nil {
		return nil, err
	}
	return &Result{Like: like, Match: match, Created: created}, nil
}

func (r *Recorder) validate(ctx context.Context, fromUserID uint64, target Target) error {
	if target == nil {
		return ErrInvalidTarget
	}

	ok, err := r.stores.Users.Exists(ctx, fromUserID)
	if err != nil {
		return fmt.Errorf("check user %d: %w", fromUserID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrUserNotFound, fromUserID)
	}

	switch t := target.(type) {
	case ListingTarget:
		listing, err := r.stores.Listings.Get(ctx, t.ListingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrListingNotFound, t.ListingID)
		}
		if err != nil {
			return fmt.Errorf("load listing %d: %w", t.ListingID, err)
		}
		if listing.OwnerID == fromUserID {
			return ErrSelfLike
		}
	case UserTarget:
		if t.UserID == fromUserID {
			return ErrSelfLike
		}
		ok, err := r.stores.Users.Exists(ctx, t.UserID)
		if err != nil {
			return fmt.Errorf("check user %d: %w", t.UserID, err)
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrUserNotFound, t.UserID)
		}
	default:
		return ErrInvalidTarget
	}
	return nil
}
