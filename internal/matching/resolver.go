package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/logger"
	"github.com/stecc88/roommatch/internal/notify"
)

// Resolver turns reciprocal likes into matches.
//
// Per (pair, listing) the state only moves forward:
// NO_LIKE -> ONE_SIDED_LIKE -> MATCHED.
type Resolver struct {
	stores   Stores
	notifier notify.Publisher
	counters CounterInvalidator // optional
	log      *slog.Logger
}

func NewResolver(stores Stores, notifier notify.Publisher, counters CounterInvalidator, log *slog.Logger) *Resolver {
	return &Resolver{stores: stores, notifier: notifier, counters: counters, log: log}
}

// Resolve checks whether the like fromUserID -> target is reciprocated and,
// if so, makes sure the match exists.
//
// Behavior:
//   - ListingTarget: the listing owner must have liked fromUserID directly.
//     A missing listing is a non-match, not an error.
//   - UserTarget: the target must have liked one of fromUserID's listings;
//     the earliest such like decides the listing of the match.
//   - The pair is stored as (min, max).
//   - created is true only when this call inserted the row; only then are
//     both users notified.
//
// Returns (nil, false, nil) when there is nothing to match.
func (r *Resolver) Resolve(ctx context.Context, fromUserID uint64, target Target) (*db.Match, bool, error) {
	var (
		otherID   uint64
		listingID uint64
		err       error
	)

	switch t := target.(type) {
	case ListingTarget:
		otherID, listingID, err = r.reciprocateListing(ctx, fromUserID, t)
	case UserTarget:
		otherID, listingID, err = r.reciprocateUser(ctx, fromUserID, t)
	default:
		return nil, false, ErrInvalidTarget
	}
	if err != nil {
		return nil, false, err
	}
	if otherID == 0 || otherID == fromUserID {
		return nil, false, nil
	}

	user1, user2 := canonical(fromUserID, otherID)
	match, created, err := r.stores.Matches.CreateOnce(ctx, user1, user2, listingID)
	if err != nil {
		return nil, false, fmt.Errorf("create match: %w", err)
	}

	log := logger.FromContext(ctx, r.log)
	if !created {
		log.Debug("match already exists", "match_id", match.ID)
		return &match, false, nil
	}
	log.Info("match created", "match_id", match.ID, "user1", user1, "user2", user2, "listing_id", listingID)

	r.invalidateCounters(ctx, user1, user2)
	r.announce(ctx, match)
	return &match, true, nil
}

// reciprocateListing is path A: fromUserID liked a listing. Returns the
// owner and the listing if the owner liked fromUserID back.
func (r *Resolver) reciprocateListing(ctx context.Context, fromUserID uint64, t ListingTarget) (uint64, uint64, error) {
	listing, err := r.stores.Listings.Get(ctx, t.ListingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("load listing %d: %w", t.ListingID, err)
	}

	like, err := r.stores.Likes.FindUserLike(ctx, listing.OwnerID, fromUserID)
	if err != nil {
		return 0, 0, fmt.Errorf("find owner like: %w", err)
	}
	if like == nil {
		return 0, 0, nil
	}
	return listing.OwnerID, listing.ID, nil
}

// reciprocateUser is path B: fromUserID (an owner) liked a user. Returns the
// user and the listing they liked if they liked one of fromUserID's rooms.
func (r *Resolver) reciprocateUser(ctx context.Context, fromUserID uint64, t UserTarget) (uint64, uint64, error) {
	owned, err := r.stores.Listings.IDsByOwner(ctx, fromUserID)
	if err != nil {
		return 0, 0, fmt.Errorf("list owned listings: %w", err)
	}

	like, err := r.stores.Likes.FindListingLike(ctx, t.UserID, owned)
	if err != nil {
		return 0, 0, fmt.Errorf("find seeker like: %w", err)
	}
	if like == nil || like.ToListingID == nil {
		return 0, 0, nil
	}
	return t.UserID, *like.ToListingID, nil
}

// announce sends new_match to both users, each naming the other side.
// The match is already committed, so nothing here fails the call: if the
// profiles cannot be loaded the events carry ids only, and publish
// failures are logged.
func (r *Resolver) announce(ctx context.Context, match db.Match) {
	log := logger.FromContext(ctx, r.log)

	summaries, err := r.stores.Users.Summaries(ctx, match.User1ID, match.User2ID)
	if err != nil {
		log.Warn("failed to load match profiles, announcing ids only", "match_id", match.ID, "err", err)
		summaries = nil
	}

	for _, recipient := range []uint64{match.User1ID, match.User2ID} {
		otherID := match.Other(recipient)
		other := summaries[otherID]
		ev, err := notify.NewEvent(notify.EventNewMatch, notify.MatchPayload{
			WithUser: notify.UserSummary{ID: otherID, Name: other.Name, Avatar: other.Avatar},
			MatchID:  match.ID,
		})
		if err != nil {
			log.Error("failed to build new_match", "match_id", match.ID, "err", err)
			return
		}
		if err := r.notifier.Publish(ctx, recipient, ev); err != nil {
			log.Warn("failed to publish new_match", "user_id", recipient, "match_id", match.ID, "err", err)
		}
	}
}

func (r *Resolver) invalidateCounters(ctx context.Context, userIDs ...uint64) {
	if r.counters == nil {
		return
	}
	if err := r.counters.InvalidateIncomingLikeCount(ctx, userIDs...); err != nil {
		logger.FromContext(ctx, r.log).Warn("failed to invalidate like counters", "users", userIDs, "err", err)
	}
}

func canonical(a, b uint64) (uint64, uint64) {
	if a < b {
		return a, b
	}
	return b, a
}
