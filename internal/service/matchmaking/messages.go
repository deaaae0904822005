package matchmaking

import (
	"time"

	"github.com/stecc88/roommatch/internal/notify"
)

// Wire messages, JSON encoded (see internal/codec).

type SubmitLikeRequest struct {
	FromUserID   uint64  `json:"fromUserId" validate:"required"`
	ListingID    *uint64 `json:"listingId,omitempty"`
	TargetUserID *uint64 `json:"targetUserId,omitempty"`
}

type Match struct {
	ID        uint64    `json:"id"`
	User1ID   uint64    `json:"user1Id"`
	User2ID   uint64    `json:"user2Id"`
	ListingID uint64    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubmitLikeResponse struct {
	Success bool   `json:"success"`
	Match   *Match `json:"match"` // null until the like is reciprocated
}

type DiscoverRequest struct {
	RequesterID   uint64 `json:"requesterId" validate:"required"`
	Limit         int    `json:"limit" validate:"gte=0"`
	Offset        int    `json:"offset" validate:"gte=0"`
	CityFilter    string `json:"cityFilter,omitempty" validate:"max=128"`
	RoleFilter    string `json:"roleFilter,omitempty" validate:"omitempty,oneof=OWNER SEEKER BOTH"`
	AppModeFilter string `json:"appModeFilter,omitempty" validate:"omitempty,oneof=SOLO_COMPARTIR_PISO PISO_Y_AMISTADES PISO_Y_CITAS"`
}

type Candidate struct {
	ID            uint64         `json:"id"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar"`
	TargetCity    string         `json:"targetCity"`
	MoveInDate    *time.Time     `json:"moveInDate"`
	Budget        *float64       `json:"budget"`
	Occupation    string         `json:"occupation"`
	School        string         `json:"school"`
	Bio           string         `json:"bio"`
	Lifestyle     map[string]any `json:"lifestyle"`
	Interests     []string       `json:"interests"`
	Languages     []string       `json:"languages"`
	Compatibility int            `json:"compatibility"`
	Photos        []string       `json:"photos"`
}

type DiscoverResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// ListRequest pages through a user's matches or likes.
type ListRequest struct {
	UserID          uint64  `json:"userId" validate:"required"`
	Limit           int     `json:"limit" validate:"gte=0"`
	PaginationToken *string `json:"paginationToken,omitempty"`
}

type MatchEntry struct {
	ID        uint64             `json:"id"`
	OtherUser notify.UserSummary `json:"otherUser"`
	ListingID uint64             `json:"listingId"`
	CreatedAt time.Time          `json:"createdAt"`
}

type ListMatchesResponse struct {
	Matches             []MatchEntry `json:"matches"`
	NextPaginationToken *string      `json:"nextPaginationToken,omitempty"`
}

type LikeEntry struct {
	ID        uint64             `json:"id"`
	User      notify.UserSummary `json:"user"` // the liker, or the liked user for outgoing likes
	CreatedAt time.Time          `json:"createdAt"`
}

type ListLikesResponse struct {
	Likes               []LikeEntry `json:"likes"`
	NextPaginationToken *string     `json:"nextPaginationToken,omitempty"`
}

type CountIncomingLikesRequest struct {
	UserID uint64 `json:"userId" validate:"required"`
}

type CountIncomingLikesResponse struct {
	Count int64 `json:"count"`
}

type SubscribeEventsRequest struct {
	UserID uint64 `json:"userId" validate:"required"`
}
