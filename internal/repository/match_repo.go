package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/utils/pagination"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateOnce materializes the match (user1, user2, listingID) unless it
// already exists. user1 must be lower than user2.
//
// Behavior:
//   - The existence check and the insert run in one transaction.
//   - If a concurrent caller inserts the same triple first, the unique index
//     rejects ours with gorm.ErrDuplicatedKey; that is treated as "already
//     matched" and the winner's row is returned.
//   - created reports whether this call inserted the row.
//
// Example:
//
//	m, created, err := repo.CreateOnce(ctx, 3, 9, 12)
func (r *MatchRepository) CreateOnce(
	ctx context.Context,
	user1, user2, listingID uint64,
) (match db.Match, created bool, err error) {
	if user1 >= user2 {
		return db.Match{}, false, fmt.Errorf("match pair (%d, %d) is not canonical", user1, user2)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findMatch(tx, user1, user2, listingID)
		if err != nil {
			return err
		}
		if existing != nil {
			match = *existing
			return nil
		}

		match = db.Match{User1ID: user1, User2ID: user2, ListingID: listingID}
		if err := tx.Create(&match).Error; err != nil {
			return err
		}
		created = true
		return nil
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, findErr := findMatch(r.db.WithContext(ctx), user1, user2, listingID)
		if findErr != nil {
			return db.Match{}, false, findErr
		}
		if existing == nil {
			return db.Match{}, false, err
		}
		return *existing, false, nil
	}
	if err != nil {
		return db.Match{}, false, err
	}
	return match, created, nil
}

// Find returns the match for the exact triple, or nil when there is none.
func (r *MatchRepository) Find(ctx context.Context, user1, user2, listingID uint64) (*db.Match, error) {
	return findMatch(r.db.WithContext(ctx), user1, user2, listingID)
}

// CounterpartIDs returns every user that userID is matched with.
func (r *MatchRepository) CounterpartIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var matches []db.Match
	if err := r.db.WithContext(ctx).
		Select("user1_id", "user2_id").
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&matches).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(matches))
	ids := make([]uint64, 0, len(matches))
	for _, m := range matches {
		other := m.Other(userID)
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}

// ListForUser returns the matches userID takes part in, newest first, with
// cursor-based pagination.
func (r *MatchRepository) ListForUser(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Match, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?)", userID, userID)
	if !cursor.IsZero() {
		query = query.Where("id < ?", cursor.LastID)
	}

	var matches []db.Match
	if err := query.
		Order("id DESC").
		Limit(limit + 1).
		Find(&matches).Error; err != nil {
		return nil, nil, err
	}

	matches, next := pagination.Page(matches, limit, func(m db.Match) pagination.Cursor {
		return pagination.Cursor{LastID: m.ID}
	})
	return matches, next, nil
}

func findMatch(tx *gorm.DB, user1, user2, listingID uint64) (*db.Match, error) {
	var matches []db.Match
	err := tx.
		Where("user1_id = ? AND user2_id = ? AND listing_id = ?", user1, user2, listingID).
		Limit(1).
		Find(&matches).Error
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return &matches[0], nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
