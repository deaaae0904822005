package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
)

// ListingRepository provides data access methods for the Listing model.
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new repository bound to the given DB connection.
func NewListingRepository(database *gorm.DB) *ListingRepository {
	return &ListingRepository{db: database}
}

// Create inserts a new listing and fills in its ID.
func (r *ListingRepository) Create(ctx context.Context, listing *db.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// Get loads a listing. Returns gorm.ErrRecordNotFound when missing.
func (r *ListingRepository) Get(ctx context.Context, id uint64) (*db.Listing, error) {
	var l db.Listing
	if err := r.db.WithContext(ctx).Take(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// IDsByOwner returns the ids of every listing owned by ownerID.
func (r *ListingRepository) IDsByOwner(ctx context.Context, ownerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Listing{}).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
