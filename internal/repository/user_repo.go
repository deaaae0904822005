package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/db"
)

// PoolFilter holds the structural predicates of a discovery query.
// Zero values disable the corresponding predicate.
type PoolFilter struct {
	City    string
	Role    db.Role
	AppMode db.AppMode
}

// UserRepository provides data access methods for the User model.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// Create inserts a new user and fills in its ID.
func (r *UserRepository) Create(ctx context.Context, user *db.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Get loads a full profile. Returns gorm.ErrRecordNotFound when missing.
func (r *UserRepository) Get(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user row with the given id exists.
func (r *UserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Summaries loads the public minimum (id, name, avatar) of the given users,
// keyed by id. Unknown ids are simply absent from the result.
func (r *UserRepository) Summaries(ctx context.Context, ids ...uint64) (map[uint64]db.User, error) {
	out := make(map[uint64]db.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []db.User
	if err := r.db.WithContext(ctx).
		Select("id", "name", "avatar").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// DiscoverPool returns a page of candidate profiles for requesterID.
//
// Behavior:
//   - Excludes the requester.
//   - City filter matches current or target city, case-insensitive substring.
//   - Role filter is an exact match.
//   - App-mode filter keeps users whose app-mode set contains the mode.
//   - Ordered by id so offset paging is stable.
//
// Liked/matched exclusion is NOT applied here; the ranker does it after
// paging, so a page can come back shorter than limit.
func (r *UserRepository) DiscoverPool(
	ctx context.Context,
	requesterID uint64,
	filter PoolFilter,
	limit, offset int,
) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id <> ?", requesterID)

	if city := strings.ToLower(strings.TrimSpace(filter.City)); city != "" {
		like := "%" + escapeLike(city) + "%"
		query = query.Where("(LOWER(target_city) LIKE ? ESCAPE '!' OR LOWER(current_city) LIKE ? ESCAPE '!')", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.AppMode != "" {
		// app_modes is a JSON array of strings; match the quoted element.
		query = query.Where("app_modes LIKE ?", `%"`+string(filter.AppMode)+`"%`)
	}

	var users []db.User
	err := query.
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

// MySQL and SQLite disagree on '\\' literals; '!' works on both.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// escapeLike makes s match literally inside a LIKE ... ESCAPE '!' pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
