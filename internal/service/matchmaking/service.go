package matchmaking

import (
	"context"

	"google.golang.org/grpc"

	"github.com/stecc88/roommatch/internal/app"
	"github.com/stecc88/roommatch/internal/db"
	svcErr "github.com/stecc88/roommatch/internal/errors"
	"github.com/stecc88/roommatch/internal/logger"
	"github.com/stecc88/roommatch/internal/matching"
	"github.com/stecc88/roommatch/internal/notify"
	"github.com/stecc88/roommatch/internal/ranking"
	"github.com/stecc88/roommatch/internal/repository"
)

// Service implements the Matchmaking gRPC API on top of the matching and
// ranking cores, the repositories and the Redis cache.
type Service struct {
	appCtx    *app.AppContext
	recorder  *matching.Recorder
	ranker    *ranking.Ranker
	userRepo  *repository.UserRepository
	likeRepo  *repository.LikeRepository
	matchRepo *repository.MatchRepository

	UnimplementedMatchmakingServiceServer
}

// NewMatchmakingService wires the service from AppContext. RedisCache is
// required.
// Dependencies include:
//   - DB connection (repositories, recorder, ranker)
//   - RedisCache for like counters and Notifier for new_match events
func NewMatchmakingService(appCtx *app.AppContext) *Service {
	stores := matching.NewStores(appCtx.DB)

	resolver := matching.NewResolver(stores, appCtx.Notifier, appCtx.RedisCache, appCtx.Logger)

	return &Service{
		appCtx:    appCtx,
		recorder:  matching.NewRecorder(stores, resolver, appCtx.RedisCache, appCtx.Logger),
		ranker:    ranking.NewRankerFromDB(appCtx.DB, appCtx.Logger),
		userRepo:  repository.NewUserRepository(appCtx.DB),
		likeRepo:  repository.NewLikeRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

// fail logs the cause and returns the mapped status.
func (s *Service) fail(ctx context.Context, msg string, err error) error {
	mapped := svcErr.Map(err)
	logger.FromContext(ctx, s.appCtx.Logger).Error(msg, "err", err)
	return mapped
}

func (s *Service) validate(ctx context.Context, req any) error {
	if err := s.appCtx.Validator.StructCtx(ctx, req); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// limit applies the configured default and ceiling.
func (s *Service) limit(requested int) int {
	d := s.appCtx.Config.Discovery
	if requested <= 0 {
		return d.DefaultLimit
	}
	return min(requested, d.MaxLimit)
}

// SubmitLike records a like and reports the match it completed, if any.
//
// Behavior:
//   - Exactly one of listingId / targetUserId must be set.
//   - success is always true once the like is stored; match is null while
//     the interest is one-sided.
//   - A repeated reciprocal like returns the existing match.
//
// Example:
//
//	svc.SubmitLike(ctx, &SubmitLikeRequest{FromUserID: 1, ListingID: &listingID})
func (s *Service) SubmitLike(ctx context.Context, req *SubmitLikeRequest) (*SubmitLikeResponse, error) {
	log := logger.FromContext(ctx, s.appCtx.Logger)
	log.Debug("SubmitLike called", "from", req.FromUserID, "listing", req.ListingID, "target_user", req.TargetUserID)

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	target, err := matching.NewTarget(req.ListingID, req.TargetUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	res, err := s.recorder.RecordLike(ctx, req.FromUserID, target)
	if err != nil {
		return nil, s.fail(ctx, "RecordLike failed", err)
	}

	resp := &SubmitLikeResponse{Success: true}
	if res.Match != nil {
		resp.Match = &Match{
			ID:        res.Match.ID,
			User1ID:   res.Match.User1ID,
			User2ID:   res.Match.User2ID,
			ListingID: res.Match.ListingID,
			CreatedAt: res.Match.CreatedAt,
		}
	}
	return resp, nil
}

// Discover returns a page of scored candidates in pool order.
//
// Behavior:
//   - limit defaults to DISCOVER_DEFAULT_LIMIT and is capped at
//     DISCOVER_MAX_LIMIT.
//   - Users already liked or matched are dropped from the page.
func (s *Service) Discover(ctx context.Context, req *DiscoverRequest) (*DiscoverResponse, error) {
	logger.FromContext(ctx, s.appCtx.Logger).Debug("Discover called",
		"requester", req.RequesterID, "limit", req.Limit, "offset", req.Offset,
		"city", req.CityFilter, "role", req.RoleFilter, "mode", req.AppModeFilter)

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	filter := repository.PoolFilter{
		City:    req.CityFilter,
		Role:    db.Role(req.RoleFilter),
		AppMode: db.AppMode(req.AppModeFilter),
	}
	candidates, err := s.ranker.Discover(ctx, req.RequesterID, filter, s.limit(req.Limit), req.Offset)
	if err != nil {
		return nil, s.fail(ctx, "Discover failed", err)
	}

	resp := &DiscoverResponse{Candidates: make([]Candidate, 0, len(candidates))}
	for _, c := range candidates {
		u := c.User
		resp.Candidates = append(resp.Candidates, Candidate{
			ID:            u.ID,
			Name:          u.Name,
			Avatar:        u.Avatar,
			TargetCity:    u.TargetCity,
			MoveInDate:    u.MoveInFrom,
			Budget:        u.Budget,
			Occupation:    u.Occupation,
			School:        u.School,
			Bio:           u.Bio,
			Lifestyle:     u.Lifestyle,
			Interests:     u.Interests,
			Languages:     u.Languages,
			Compatibility: c.Compatibility,
			Photos:        u.Photos,
		})
	}
	return resp, nil
}

// ListMatches returns the user's matches, newest first, each with the
// other participant's summary.
func (s *Service) ListMatches(ctx context.Context, req *ListRequest) (*ListMatchesResponse, error) {
	logger.FromContext(ctx, s.appCtx.Logger).Debug("ListMatches called", "user", req.UserID, "token", req.PaginationToken)

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	matches, next, err := s.matchRepo.ListForUser(ctx, req.UserID, req.PaginationToken, s.limit(req.Limit))
	if err != nil {
		return nil, s.fail(ctx, "ListForUser failed", err)
	}

	others := make([]uint64, 0, len(matches))
	for _, m := range matches {
		others = append(others, m.Other(req.UserID))
	}
	summaries, err := s.userRepo.Summaries(ctx, others...)
	if err != nil {
		return nil, s.fail(ctx, "Summaries failed", err)
	}

	resp := &ListMatchesResponse{Matches: make([]MatchEntry, 0, len(matches)), NextPaginationToken: next}
	for _, m := range matches {
		other := m.Other(req.UserID)
		resp.Matches = append(resp.Matches, MatchEntry{
			ID:        m.ID,
			OtherUser: summaryOf(other, summaries),
			ListingID: m.ListingID,
			CreatedAt: m.CreatedAt,
		})
	}
	return resp, nil
}

// ListIncomingLikes returns who liked the user directly, newest first.
// Likers the user is already matched with are left out.
func (s *Service) ListIncomingLikes(ctx context.Context, req *ListRequest) (*ListLikesResponse, error) {
	logger.FromContext(ctx, s.appCtx.Logger).Debug("ListIncomingLikes called", "user", req.UserID, "token", req.PaginationToken)

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	likes, next, err := s.likeRepo.ListIncoming(ctx, req.UserID, req.PaginationToken, s.limit(req.Limit))
	if err != nil {
		return nil, s.fail(ctx, "ListIncoming failed", err)
	}
	return s.likesResponse(ctx, likes, next, func(l db.Like) uint64 { return l.FromUserID })
}

// ListOutgoingLikes returns the users the user liked directly, newest first,
// leaving out those already matched.
func (s *Service) ListOutgoingLikes(ctx context.Context, req *ListRequest) (*ListLikesResponse, error) {
	logger.FromContext(ctx, s.appCtx.Logger).Debug("ListOutgoingLikes called", "user", req.UserID, "token", req.PaginationToken)

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	likes, next, err := s.likeRepo.ListOutgoing(ctx, req.UserID, req.PaginationToken, s.limit(req.Limit))
	if err != nil {
		return nil, s.fail(ctx, "ListOutgoing failed", err)
	}
	return s.likesResponse(ctx, likes, next, func(l db.Like) uint64 { return *l.ToUserID })
}

// CountIncomingLikes returns how many users liked the user and are not yet
// matched with them.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:incoming:count:userID).
//  2. On a miss or a Redis error, falls back to DB via CountIncoming.
//  3. On DB fetch, updates Redis with the configured TTL.
//
// The counter is dropped whenever a like or a match changes it.
func (s *Service) CountIncomingLikes(ctx context.Context, req *CountIncomingLikesRequest) (*CountIncomingLikesResponse, error) {
	log := logger.FromContext(ctx, s.appCtx.Logger)
	log.Debug("CountIncomingLikes called", "user", req.UserID)

	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	// try cache first
	count, ok, err := s.appCtx.RedisCache.GetIncomingLikeCount(ctx, req.UserID)
	if err != nil {
		log.Warn("like counter cache read failed", "err", err)
	}
	if ok {
		return &CountIncomingLikesResponse{Count: count}, nil
	}

	// fallback: DB
	count, err = s.likeRepo.CountIncoming(ctx, req.UserID)
	if err != nil {
		return nil, s.fail(ctx, "CountIncoming failed", err)
	}
	if err := s.appCtx.RedisCache.SetIncomingLikeCount(ctx, req.UserID, count); err != nil {
		log.Warn("like counter cache write failed", "err", err)
	}
	return &CountIncomingLikesResponse{Count: count}, nil
}

// SubscribeEvents streams the user's notification topic until the client
// goes away or the server stops.
func (s *Service) SubscribeEvents(req *SubscribeEventsRequest, stream grpc.ServerStreamingServer[notify.Event]) error {
	ctx := stream.Context()
	log := logger.FromContext(ctx, s.appCtx.Logger)
	log.Debug("SubscribeEvents called", "user", req.UserID)

	if err := s.validate(ctx, req); err != nil {
		return err
	}

	sub, err := s.appCtx.Notifier.Subscribe(ctx, req.UserID)
	if err != nil {
		return s.fail(ctx, "Subscribe failed", err)
	}
	defer sub.Close()

	// headers go out now so the client knows the subscription is live
	if err := stream.SendHeader(nil); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		}
	}
}

func summaryOf(id uint64, users map[uint64]db.User) notify.UserSummary {
	u := users[id]
	return notify.UserSummary{ID: id, Name: u.Name, Avatar: u.Avatar}
}

func (s *Service) likesResponse(ctx context.Context, likes []db.Like, next *string, counterpart func(db.Like) uint64) (*ListLikesResponse, error) {
	ids := make([]uint64, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, counterpart(l))
	}
	summaries, err := s.userRepo.Summaries(ctx, ids...)
	if err != nil {
		return nil, s.fail(ctx, "Summaries failed", err)
	}

	resp := &ListLikesResponse{Likes: make([]LikeEntry, 0, len(likes)), NextPaginationToken: next}
	for _, l := range likes {
		resp.Likes = append(resp.Likes, LikeEntry{
			ID:        l.ID,
			User:      summaryOf(counterpart(l), summaries),
			CreatedAt: l.CreatedAt,
		})
	}
	return resp, nil
}
