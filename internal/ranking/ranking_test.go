package ranking

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/logger"
	"github.com/stecc88/roommatch/internal/repository"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func bornIn(year int) *time.Time {
	t := time.Date(year, time.October, 10, 0, 0, 0, 0, time.UTC)
	return &t
}

// Roles are left empty so the role bonus does not apply.
func blank() *db.User { return &db.User{} }

func TestScore_AgeGapOnly(t *testing.T) {
	a := blank()
	a.BirthDate = bornIn(2006) // 20 at now
	b := blank()
	b.BirthDate = bornIn(1991) // 35 at now

	assert.Equal(t, float64(5), agePenalty(a.BirthDate, b.BirthDate, now))
	assert.Equal(t, 0, Score(a, b, now))
}

func TestScore_SameCityAndMode(t *testing.T) {
	a := &db.User{
		Role:            db.RoleSeeker,
		CurrentCity:     "Madrid - Centro",
		SharePreference: db.ShareWithAnyone,
		AppModes:        []db.AppMode{db.AppModeRoomOnly},
		BirthDate:       bornIn(1998),
	}
	b := &db.User{
		Role:       db.RoleOwner,
		TargetCity: "Madrid - Sol",
		Gender:     db.GenderMale,
		AppModes:   []db.AppMode{db.AppModeRoomOnly, db.AppModeRoomAndFriends},
		BirthDate:  bornIn(1998),
	}

	assert.Equal(t, 60, Score(a, b, now))
}

func TestScore_SubScores(t *testing.T) {
	tests := []struct {
		name string
		me   db.User
		c    db.User
		want int
	}{
		{"nothing in common", db.User{}, db.User{}, 0},
		{"city reverse direction", db.User{TargetCity: " madrid"}, db.User{CurrentCity: "MADRID - Sol"}, 20},
		{"city needs both sides", db.User{CurrentCity: "Madrid"}, db.User{CurrentCity: "Madrid"}, 0},
		{"unknown role", db.User{Role: db.RoleOwner}, db.User{}, 0},
		{"same role", db.User{Role: db.RoleSeeker}, db.User{Role: db.RoleSeeker}, 15},
		{"prefers women, candidate female", db.User{SharePreference: db.ShareWithWomenOnly}, db.User{Gender: db.GenderFemale}, 10},
		{"prefers women, candidate male", db.User{SharePreference: db.ShareWithWomenOnly}, db.User{Gender: db.GenderMale}, 0},
		{"prefers men, candidate male", db.User{SharePreference: db.ShareWithMenOnly}, db.User{Gender: db.GenderMale}, 10},
		{"candidate prefers not to say", db.User{SharePreference: db.ShareWithMenOnly}, db.User{Gender: db.GenderPreferNotSay}, 10},
		{"no preference set", db.User{}, db.User{Gender: db.GenderMale}, 0},
		{"app modes flat", db.User{AppModes: []db.AppMode{db.AppModeRoomOnly, db.AppModeRoomAndDating}},
			db.User{AppModes: []db.AppMode{db.AppModeRoomOnly, db.AppModeRoomAndDating}}, 15},
		{"goals capped", db.User{CohabitationGoals: []string{"a", "b", "c"}}, db.User{CohabitationGoals: []string{"a", "b", "c"}}, 10},
		{"one goal", db.User{CohabitationGoals: []string{"a"}}, db.User{CohabitationGoals: []string{"a", "z"}}, 5},
		{"interests", db.User{Interests: []string{"cine", "yoga"}}, db.User{Interests: []string{"yoga", "cine"}}, 4},
		{"interests capped", db.User{Interests: []string{"1", "2", "3", "4", "5", "6"}},
			db.User{Interests: []string{"1", "2", "3", "4", "5", "6"}}, 10},
		{"duplicates count once", db.User{Interests: []string{"cine", "cine"}}, db.User{Interests: []string{"cine"}}, 2},
		{"one language rounds up", db.User{Languages: []string{"es"}}, db.User{Languages: []string{"es"}}, 2},
		{"languages capped", db.User{Languages: []string{"es", "en", "fr", "it"}},
			db.User{Languages: []string{"es", "en", "fr", "it"}}, 5},
		{"one birth date missing", db.User{BirthDate: bornIn(1950)}, db.User{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(&tt.me, &tt.c, now))
		})
	}
}

func TestScore_AgePenaltyCapped(t *testing.T) {
	a := &db.User{Role: db.RoleBoth, BirthDate: bornIn(2000)}
	b := &db.User{Role: db.RoleBoth, BirthDate: bornIn(1950)}
	assert.Equal(t, 5, Score(a, b, now)) // 15 - 10
}

func TestScore_Bounds(t *testing.T) {
	full := &db.User{
		Role:              db.RoleBoth,
		CurrentCity:       "Madrid - Centro",
		TargetCity:        "Madrid",
		SharePreference:   db.ShareWithAnyone,
		Gender:            db.GenderPreferNotSay,
		AppModes:          []db.AppMode{db.AppModeRoomOnly, db.AppModeRoomAndFriends, db.AppModeRoomAndDating},
		CohabitationGoals: []string{"a", "b", "c"},
		Interests:         []string{"1", "2", "3", "4", "5", "6"},
		Languages:         []string{"es", "en", "fr", "it"},
		BirthDate:         bornIn(1990),
	}
	assert.Equal(t, 85, Score(full, full, now)) // every bonus at its cap

	for gap := 0; gap <= 60; gap += 3 {
		other := *full
		other.BirthDate = bornIn(1990 - gap)
		s := Score(full, &other, now)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestScore_Monotonicity(t *testing.T) {
	me := &db.User{Interests: []string{"1", "2", "3", "4", "5", "6", "7"}, BirthDate: bornIn(1990)}
	c := &db.User{BirthDate: bornIn(1990), Role: db.RoleOwner}

	prev := Score(me, c, now)
	for _, i := range me.Interests {
		c.Interests = append(c.Interests, i)
		s := Score(me, c, now)
		assert.GreaterOrEqual(t, s, prev, "adding interest %s", i)
		prev = s
	}

	c.Interests = nil
	prev = Score(me, c, now)
	for gap := 11; gap <= 30; gap++ {
		c.BirthDate = bornIn(1990 - gap)
		s := Score(me, c, now)
		assert.LessOrEqual(t, s, prev, "gap %d", gap)
		prev = s
	}
}

func TestCityPrefix(t *testing.T) {
	assert.Equal(t, "madrid", cityPrefix(" Madrid - Centro "))
	assert.Equal(t, "barcelona", cityPrefix("Barcelona"))
	assert.Equal(t, "", cityPrefix(""))
	assert.False(t, sameCity("", ""))
}

func TestRank_ExcludesLikedAndMatched(t *testing.T) {
	me := &db.User{ID: 1}
	pool := []db.User{{ID: 5}, {ID: 2}, {ID: 3}, {ID: 4}}

	got := Rank(me, pool, []uint64{3}, []uint64{4, 9}, now)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(5), got[0].User.ID, "pool order is kept")
	assert.Equal(t, uint64(2), got[1].User.ID)

	all := Rank(me, pool, nil, nil, now)
	assert.Len(t, all, 4)
}

//
// Ranker over SQLite
//

func setupRanker(t *testing.T) (*Ranker, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), gormlogger.Silent)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.SeedMinimalTestData(gdb))

	// user1 liked user4 directly and is matched with user2
	toUser := uint64(4)
	require.NoError(t, gdb.Create(&db.Like{FromUserID: 1, ToUserID: &toUser}).Error)
	require.NoError(t, gdb.Create(&db.Match{User1ID: 1, User2ID: 2, ListingID: 1}).Error)

	r := NewRankerFromDB(gdb, logger.Discard())
	r.now = func() time.Time { return now }
	return r, gdb
}

func TestDiscover_ExcludesLikedAndMatched(t *testing.T) {
	r, _ := setupRanker(t)

	got, err := r.Discover(context.Background(), 1, repository.PoolFilter{}, 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(3), got[0].User.ID)
	// user3 lives in Barcelona and only wants women; Ana's preference is open
	assert.Equal(t, 15+10-8, got[0].Compatibility)
}

func TestDiscover_ListingLikesDoNotExclude(t *testing.T) {
	r, gdb := setupRanker(t)

	// listing 2 shares its id with user 2; a listing like must not hide the user
	listingID := uint64(2)
	require.NoError(t, gdb.Create(&db.Like{FromUserID: 3, ToListingID: &listingID}).Error)

	got, err := r.Discover(context.Background(), 3, repository.PoolFilter{}, 20, 0)
	require.NoError(t, err)
	ids := make([]uint64, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.User.ID)
	}
	// user1 is hidden by user3's direct like from the seed
	assert.Equal(t, []uint64{2, 4}, ids)
}

func TestDiscover_Filters(t *testing.T) {
	r, _ := setupRanker(t)

	got, err := r.Discover(context.Background(), 3, repository.PoolFilter{City: "madrid", Role: db.RoleOwner}, 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].User.ID)
}

func TestDiscover_UnknownRequester(t *testing.T) {
	r, _ := setupRanker(t)

	_, err := r.Discover(context.Background(), 42, repository.PoolFilter{}, 20, 0)
	assert.Error(t, err)
}
