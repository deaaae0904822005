package db

import (
	"time"

	"gorm.io/datatypes"
)

// Role is what a user does on the platform.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleSeeker Role = "SEEKER"
	RoleBoth   Role = "BOTH"
)

// Gender values as stored by the clients.
type Gender string

const (
	GenderMale         Gender = "HOMBRE"
	GenderFemale       Gender = "MUJER"
	GenderPreferNotSay Gender = "PREFIERO_NO_DECIR"
	GenderNonBinary    Gender = "NO_BINARIO"
)

// SharePreference is who a user is willing to share a home with.
type SharePreference string

const (
	ShareWithAnyone    SharePreference = "INDISTINTO"
	ShareWithMenOnly   SharePreference = "SOLO_HOMBRES"
	ShareWithWomenOnly SharePreference = "SOLO_MUJERES"
)

// AppMode is one of the ways a user can use the app.
type AppMode string

const (
	AppModeRoomOnly       AppMode = "SOLO_COMPARTIR_PISO"
	AppModeRoomAndFriends AppMode = "PISO_Y_AMISTADES"
	AppModeRoomAndDating  AppMode = "PISO_Y_CITAS"
)

// User table. Set-like profile attributes are stored as JSON arrays.
type User struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Name         string `gorm:"size:128"`
	Avatar       string `gorm:"size:512"`
	Role         Role   `gorm:"size:16;not null;index"`

	BirthDate         *time.Time
	Gender            Gender `gorm:"size:32"`
	Bio               string `gorm:"type:text"`
	Photos            datatypes.JSONSlice[string]
	CurrentCity       string          `gorm:"size:128"`
	TargetCity        string          `gorm:"size:128"`
	SharePreference   SharePreference `gorm:"size:32"`
	AppModes          datatypes.JSONSlice[AppMode]
	CohabitationGoals datatypes.JSONSlice[string]
	Interests         datatypes.JSONSlice[string]
	Languages         datatypes.JSONSlice[string]
	Budget            *float64
	MoveInFrom        *time.Time
	Lifestyle         datatypes.JSONMap
	Occupation        string `gorm:"size:128"`
	School            string `gorm:"size:128"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Listing is a room offered by its owner.
type Listing struct {
	ID            uint64  `gorm:"primaryKey;autoIncrement"`
	OwnerID       uint64  `gorm:"not null;index"`
	Title         string  `gorm:"size:255"`
	Description   string  `gorm:"type:text"`
	Price         float64 `gorm:"not null"`
	Location      string  `gorm:"size:255"`
	Amenities     datatypes.JSONSlice[string]
	Rules         datatypes.JSONSlice[string]
	AvailableFrom *time.Time
	RoomType      string    `gorm:"size:64"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Like is a directed expression of interest from a user toward either a
// listing or another user. Exactly one of ToListingID / ToUserID is set.
//
// Rows are never updated and never deduplicated: repeated likes on the same
// target are stored as separate rows.
//
// Indexes:
//   - idx_like_from_user(from_user_id, to_user_id)
//     Reciprocity lookups "did X like user Y".
//   - idx_like_from_listing(from_user_id, to_listing_id)
//     Reciprocity lookups "did X like any of these listings".
//   - idx_like_to_user(to_user_id, created_at)
//     Incoming likes lists and counters.
type Like struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	FromUserID  uint64    `gorm:"not null;index:idx_like_from_user,priority:1;index:idx_like_from_listing,priority:1"`
	ToListingID *uint64   `gorm:"index:idx_like_from_listing,priority:2"`
	ToUserID    *uint64   `gorm:"index:idx_like_from_user,priority:2;index:idx_like_to_user,priority:1"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_like_to_user,priority:2"`
}

// Match is a mutually confirmed pairing of two users, scoped to the listing
// that mediated it.
//
// User1ID is always strictly lower than User2ID. Together with ListingID the
// ordered pair forms a unique key, so concurrent reciprocal likes cannot
// produce two rows.
type Match struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	User1ID   uint64    `gorm:"not null;uniqueIndex:idx_match_pair_listing,priority:1;check:chk_match_order,user1_id < user2_id"`
	User2ID   uint64    `gorm:"not null;uniqueIndex:idx_match_pair_listing,priority:2;index"`
	ListingID uint64    `gorm:"not null;uniqueIndex:idx_match_pair_listing,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Other returns the participant that is not userID.
func (m Match) Other(userID uint64) uint64 {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// Models lists every table in migration order.
func Models() []any {
	return []any{&User{}, &Listing{}, &Like{}, &Match{}}
}
