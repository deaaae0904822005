package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/utils/pagination"
)

// notMatchedWith excludes like rows whose counterpart column (%[1]s) is
// already matched with the given user, whichever side of the pair they sit on.
const notMatchedWith = `
	NOT EXISTS (
		SELECT 1 FROM matches m
		WHERE (m.user1_id = ? AND m.user2_id = %[1]s)
		   OR (m.user2_id = ? AND m.user1_id = %[1]s)
	)`

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries related to likes between users and listings.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// Create appends a like row. No dedup: repeating a like stores a new row.
//
// Example:
//
//	repo.Create(ctx, &db.Like{FromUserID: 1, ToListingID: &listingID})
func (r *LikeRepository) Create(ctx context.Context, like *db.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// FindUserLike returns the earliest like from fromUserID to toUserID, or nil
// when there is none.
//
// Example:
//
//	repo.FindUserLike(ctx, ownerID, seekerID) // did the owner like the seeker?
func (r *LikeRepository) FindUserLike(ctx context.Context, fromUserID, toUserID uint64) (*db.Like, error) {
	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Order("id ASC").
		Limit(1).
		Find(&likes).Error
	if err != nil || len(likes) == 0 {
		return nil, err
	}
	return &likes[0], nil
}

// FindListingLike returns the earliest like from fromUserID to any of
// listingIDs, or nil when there is none.
//
// Example:
//
//	repo.FindListingLike(ctx, seekerID, []uint64{3, 8}) // did the seeker like one of my rooms?
func (r *LikeRepository) FindListingLike(ctx context.Context, fromUserID uint64, listingIDs []uint64) (*db.Like, error) {
	if len(listingIDs) == 0 {
		return nil, nil
	}

	var likes []db.Like
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_listing_id IN ?", fromUserID, listingIDs).
		Order("id ASC").
		Limit(1).
		Find(&likes).Error
	if err != nil || len(likes) == 0 {
		return nil, err
	}
	return &likes[0], nil
}

// LikedUserIDs returns the distinct users fromUserID has liked directly.
// Listing likes are not included.
func (r *LikeRepository) LikedUserIDs(ctx context.Context, fromUserID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Distinct("to_user_id").
		Where("from_user_id = ? AND to_user_id IS NOT NULL", fromUserID).
		Pluck("to_user_id", &ids).Error
	return ids, err
}

// ListIncoming returns likes that target userID directly, skipping likers the
// user is already matched with.
//
// Behavior:
//   - Only user-targeted likes (to_user_id = X) are considered.
//   - Ordered by id DESC (newest first).
//   - Supports cursor-based pagination via paginationToken.
func (r *LikeRepository) ListIncoming(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ?", userID).
		Where(fmt.Sprintf(notMatchedWith, "l.from_user_id"), userID, userID)

	return r.page(query, paginationToken, limit)
}

// ListOutgoing returns the user-targeted likes made by userID, skipping
// targets the user is already matched with.
func (r *LikeRepository) ListOutgoing(
	ctx context.Context,
	userID uint64,
	paginationToken *string,
	limit int,
) ([]db.Like, *string, error) {
	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.from_user_id = ? AND l.to_user_id IS NOT NULL", userID).
		Where(fmt.Sprintf(notMatchedWith, "l.to_user_id"), userID, userID)

	return r.page(query, paginationToken, limit)
}

// CountIncoming counts the rows ListIncoming would return, without paging.
// Used in conjunction with the Redis counter cache (DB is the fallback).
func (r *LikeRepository) CountIncoming(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.to_user_id = ?", userID).
		Where(fmt.Sprintf(notMatchedWith, "l.from_user_id"), userID, userID).
		Count(&count).Error
	return count, err
}

func (r *LikeRepository) page(query *gorm.DB, paginationToken *string, limit int) ([]db.Like, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}
	if !cursor.IsZero() {
		query = query.Where("l.id < ?", cursor.LastID)
	}

	var likes []db.Like
	if err := query.
		Select("l.*").
		Order("l.id DESC").
		Limit(limit + 1).
		Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	likes, next := pagination.Page(likes, limit, func(l db.Like) pagination.Cursor {
		return pagination.Cursor{LastID: l.ID}
	})
	return likes, next, nil
}
