package matching_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stecc88/roommatch/internal/db"
	"github.com/stecc88/roommatch/internal/logger"
	"github.com/stecc88/roommatch/internal/matching"
	"github.com/stecc88/roommatch/internal/notify"
)

//
// Test helpers
//

type sent struct {
	To      uint64
	Event   string
	Payload notify.MatchPayload
}

// fakeNotifier records every publish. With fail set, it records nothing and
// returns an error instead.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sent
	fail bool
}

func (f *fakeNotifier) Publish(_ context.Context, userID uint64, ev notify.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("channel down")
	}
	var p notify.MatchPayload
	_ = json.Unmarshal(ev.Payload, &p)
	f.sent = append(f.sent, sent{To: userID, Event: ev.Name, Payload: p})
	return nil
}

type fakeCounters struct {
	invalidated []uint64
}

func (f *fakeCounters) InvalidateIncomingLikeCount(_ context.Context, ids ...uint64) error {
	f.invalidated = append(f.invalidated, ids...)
	return nil
}

type fixture struct {
	db       *gorm.DB
	recorder *matching.Recorder
	resolver *matching.Resolver
	notifier *fakeNotifier
	counters *fakeCounters
}

// setup opens an in-memory SQLite DB seeded with db.SeedMinimalTestData:
//   - user1 Ana (seeker) liked listing1 of user2 Bruno (owner)
//   - user3 Carla (seeker) liked user1
//   - user4 Dario (owner) owns listing2
func setup(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), gormlogger.Silent)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.SeedMinimalTestData(gdb))

	f := &fixture{db: gdb, notifier: &fakeNotifier{}, counters: &fakeCounters{}}
	stores := matching.NewStores(gdb)
	f.resolver = matching.NewResolver(stores, f.notifier, f.counters, logger.Discard())
	f.recorder = matching.NewRecorder(stores, f.resolver, f.counters, logger.Discard())
	return f
}

func (f *fixture) matchCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&db.Match{}).Count(&n).Error)
	return n
}

func (f *fixture) likeCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&db.Like{}).Count(&n).Error)
	return n
}

//
// Target
//

func TestNewTarget(t *testing.T) {
	id := func(v uint64) *uint64 { return &v }

	tg, err := matching.NewTarget(id(3), nil)
	require.NoError(t, err)
	assert.Equal(t, matching.ListingTarget{ListingID: 3}, tg)

	tg, err = matching.NewTarget(nil, id(8))
	require.NoError(t, err)
	assert.Equal(t, matching.UserTarget{UserID: 8}, tg)

	tg, err = matching.NewTarget(id(0), id(8))
	require.NoError(t, err, "zero counts as unset")
	assert.Equal(t, matching.UserTarget{UserID: 8}, tg)

	_, err = matching.NewTarget(nil, nil)
	assert.ErrorIs(t, err, matching.ErrInvalidTarget)

	_, err = matching.NewTarget(id(3), id(8))
	assert.ErrorIs(t, err, matching.ErrInvalidTarget)
}

//
// Scenarios
//

// A seeker liking a listing whose owner never liked them back gets no match.
func TestRecordLike_OneSidedListingLike(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	res, err := f.recorder.RecordLike(ctx, 3, matching.ListingTarget{ListingID: 2})
	require.NoError(t, err)

	assert.NotZero(t, res.Like.ID)
	require.NotNil(t, res.Like.ToListingID)
	assert.Equal(t, uint64(2), *res.Like.ToListingID)
	assert.Nil(t, res.Like.ToUserID)
	assert.Nil(t, res.Match)
	assert.False(t, res.Created)
	assert.Zero(t, f.matchCount(t))
	assert.Empty(t, f.notifier.sent)
}

// The owner liking back the seeker creates the match on the seeker's
// listing and notifies both sides with the other's summary.
func TestRecordLike_OwnerLikesBack_CreatesMatch(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	res, err := f.recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 1})
	require.NoError(t, err)

	require.NotNil(t, res.Match)
	assert.True(t, res.Created)
	assert.Equal(t, uint64(1), res.Match.User1ID)
	assert.Equal(t, uint64(2), res.Match.User2ID)
	assert.Equal(t, uint64(1), res.Match.ListingID)
	assert.Equal(t, int64(1), f.matchCount(t))

	require.Len(t, f.notifier.sent, 2)
	byUser := map[uint64]sent{}
	for _, s := range f.notifier.sent {
		assert.Equal(t, notify.EventNewMatch, s.Event)
		assert.Equal(t, res.Match.ID, s.Payload.MatchID)
		byUser[s.To] = s
	}
	assert.Equal(t, uint64(2), byUser[1].Payload.WithUser.ID)
	assert.Equal(t, "Bruno", byUser[1].Payload.WithUser.Name)
	assert.Equal(t, "b.png", byUser[1].Payload.WithUser.Avatar)
	assert.Equal(t, uint64(1), byUser[2].Payload.WithUser.ID)
	assert.Equal(t, "Ana", byUser[2].Payload.WithUser.Name)

	assert.Contains(t, f.counters.invalidated, uint64(1))
	assert.Contains(t, f.counters.invalidated, uint64(2))
}

// Submitting the same reciprocal like again returns the existing match,
// writes no second row and sends nothing.
func TestRecordLike_RepeatedLikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, first.Match)

	second, err := f.recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, second.Match)
	assert.False(t, second.Created)
	assert.Equal(t, first.Match.ID, second.Match.ID)

	// the seeker repeating their listing like is the same pair and listing
	third, err := f.recorder.RecordLike(ctx, 1, matching.ListingTarget{ListingID: 1})
	require.NoError(t, err)
	require.NotNil(t, third.Match)
	assert.Equal(t, first.Match.ID, third.Match.ID)

	assert.Equal(t, int64(1), f.matchCount(t))
	assert.Len(t, f.notifier.sent, 2)
	assert.Equal(t, int64(5), f.likeCount(t), "likes are not deduplicated")
}

// Path A: owner liked first, seeker likes the listing second.
func TestRecordLike_SeekerCompletesMatch(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	res, err := f.recorder.RecordLike(ctx, 4, matching.UserTarget{UserID: 3})
	require.NoError(t, err)
	assert.Nil(t, res.Match, "user3 has not liked any of user4's listings yet")

	res, err = f.recorder.RecordLike(ctx, 3, matching.ListingTarget{ListingID: 2})
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.True(t, res.Created)
	assert.Equal(t, uint64(3), res.Match.User1ID)
	assert.Equal(t, uint64(4), res.Match.User2ID)
	assert.Equal(t, uint64(2), res.Match.ListingID)
}

// The lower id ends up in user1 whichever side likes last.
func TestRecordLike_CanonicalOrdering(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 3})
	require.NoError(t, err)

	res, err := f.recorder.RecordLike(ctx, 3, matching.ListingTarget{ListingID: 1})
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, uint64(2), res.Match.User1ID)
	assert.Equal(t, uint64(3), res.Match.User2ID)

	var all []db.Match
	require.NoError(t, f.db.Find(&all).Error)
	for _, m := range all {
		assert.Less(t, m.User1ID, m.User2ID)
	}
}

// Path B picks the listing from the seeker's earliest like on the owner's
// rooms, not an arbitrary one.
func TestRecordLike_UsesListingTheSeekerLiked(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	third := db.Listing{OwnerID: 2, Title: "Attic", Price: 300}
	require.NoError(t, f.db.Create(&third).Error)

	_, err := f.recorder.RecordLike(ctx, 3, matching.ListingTarget{ListingID: third.ID})
	require.NoError(t, err)
	_, err = f.recorder.RecordLike(ctx, 3, matching.ListingTarget{ListingID: 1})
	require.NoError(t, err)

	res, err := f.recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 3})
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.Equal(t, third.ID, res.Match.ListingID)
}

// One-sided likes in either direction never produce a match.
func TestRecordLike_ReciprocityRequired(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	// user1 likes user3 back, but neither owns a listing
	res, err := f.recorder.RecordLike(ctx, 1, matching.UserTarget{UserID: 3})
	require.NoError(t, err)
	assert.Nil(t, res.Match)

	// user4 likes user1, but user1 never liked listing2
	res, err = f.recorder.RecordLike(ctx, 4, matching.UserTarget{UserID: 1})
	require.NoError(t, err)
	assert.Nil(t, res.Match)

	assert.Zero(t, f.matchCount(t))
}

// A failing notification channel does not fail the like.
func TestRecordLike_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.notifier.fail = true

	res, err := f.recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.True(t, res.Created)
}

// brokenSummaries fails profile lookups and delegates the rest.
type brokenSummaries struct {
	matching.UserStore
}

func (brokenSummaries) Summaries(context.Context, ...uint64) (map[uint64]db.User, error) {
	return nil, errors.New("profiles unavailable")
}

func TestRecordLike_ProfileLookupFailureStillAnnounces(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	stores := matching.NewStores(f.db)
	stores.Users = brokenSummaries{UserStore: stores.Users}
	resolver := matching.NewResolver(stores, f.notifier, f.counters, logger.Discard())
	recorder := matching.NewRecorder(stores, resolver, f.counters, logger.Discard())

	res, err := recorder.RecordLike(ctx, 2, matching.UserTarget{UserID: 1})
	require.NoError(t, err)
	require.NotNil(t, res.Match)
	assert.True(t, res.Created)

	require.Len(t, f.notifier.sent, 2)
	byUser := map[uint64]sent{}
	for _, s := range f.notifier.sent {
		byUser[s.To] = s
	}
	assert.Equal(t, uint64(2), byUser[1].Payload.WithUser.ID)
	assert.Equal(t, uint64(1), byUser[2].Payload.WithUser.ID)
	assert.Empty(t, byUser[1].Payload.WithUser.Name)
	assert.Equal(t, res.Match.ID, byUser[2].Payload.MatchID)
}

func TestRecordLike_UserTargetInvalidatesCounter(t *testing.T) {
	f := setup(t)

	_, err := f.recorder.RecordLike(context.Background(), 4, matching.UserTarget{UserID: 3})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, f.counters.invalidated)
}

//
// Validation
//

func TestRecordLike_Validation(t *testing.T) {
	tests := []struct {
		name   string
		from   uint64
		target matching.Target
		want   error
	}{
		{"nil target", 1, nil, matching.ErrInvalidTarget},
		{"unknown liker", 99, matching.UserTarget{UserID: 1}, matching.ErrUserNotFound},
		{"unknown user target", 1, matching.UserTarget{UserID: 99}, matching.ErrUserNotFound},
		{"unknown listing", 1, matching.ListingTarget{ListingID: 99}, matching.ErrListingNotFound},
		{"self like", 1, matching.UserTarget{UserID: 1}, matching.ErrSelfLike},
		{"own listing", 2, matching.ListingTarget{ListingID: 1}, matching.ErrSelfLike},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			before := f.likeCount(t)

			_, err := f.recorder.RecordLike(context.Background(), tt.from, tt.target)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, f.likeCount(t), "nothing written on invalid input")
		})
	}
}

// A listing that vanished between recording and resolving is a non-match.
func TestResolve_MissingListing(t *testing.T) {
	f := setup(t)

	m, created, err := f.resolver.Resolve(context.Background(), 1, matching.ListingTarget{ListingID: 404})
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.False(t, created)
}

func TestResolve_NilTarget(t *testing.T) {
	f := setup(t)

	_, _, err := f.resolver.Resolve(context.Background(), 1, nil)
	assert.ErrorIs(t, err, matching.ErrInvalidTarget)
}
