package matching

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTarget   = errors.New("exactly one of listing or target user must be set")
	ErrSelfLike        = errors.New("cannot like yourself or your own listing")
	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
)

// Target is what a like points at: a ListingTarget or a UserTarget.
// The set of variants is closed.
type Target interface {
	isTarget()
	fmt.Stringer
}

// ListingTarget is a seeker liking a room.
type ListingTarget struct {
	ListingID uint64
}

// UserTarget is a user (usually an owner) liking another user.
type UserTarget struct {
	UserID uint64
}

func (ListingTarget) isTarget() {}
func (UserTarget) isTarget()    {}

func (t ListingTarget) String() string { return fmt.Sprintf("listing:%d", t.ListingID) }
func (t UserTarget) String() string    { return fmt.Sprintf("user:%d", t.UserID) }

// NewTarget builds a Target from the two optional wire fields.
// Exactly one must be set and non-zero.
func NewTarget(listingID, userID *uint64) (Target, error) {
	hasListing := listingID != nil && *listingID != 0
	hasUser := userID != nil && *userID != 0

	switch {
	case hasListing && !hasUser:
		return ListingTarget{ListingID: *listingID}, nil
	case hasUser && !hasListing:
		return UserTarget{UserID: *userID}, nil
	default:
		return nil, ErrInvalidTarget
	}
}
