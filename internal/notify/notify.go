package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stecc88/roommatch/internal/cache"
)

// EventNewMatch is emitted to both participants of a freshly created match.
const EventNewMatch = "new_match"

// Event is what travels on a user's topic.
type Event struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// UserSummary is the public minimum of a profile shown to the other side.
type UserSummary struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// MatchPayload is the payload of a new_match event.
type MatchPayload struct {
	WithUser UserSummary `json:"withUser"`
	MatchID  uint64      `json:"matchId"`
}

// NewEvent marshals payload into an Event named name.
func NewEvent(name string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}
	return Event{Name: name, Payload: b}, nil
}

// Publisher delivers events to a single user's topic.
type Publisher interface {
	Publish(ctx context.Context, userID uint64, event Event) error
}

// Topic is the pub/sub channel that carries userID's events.
func Topic(userID uint64) string {
	return fmt.Sprintf("notify:user:%d", userID)
}

// RedisNotifier fans events out over Redis pub/sub, one channel per user.
// Delivery is fire-and-forget: a user with no live subscriber misses it.
type RedisNotifier struct {
	cache *cache.RedisCache
}

func NewRedisNotifier(c *cache.RedisCache) *RedisNotifier {
	return &RedisNotifier{cache: c}
}

func (n *RedisNotifier) Publish(ctx context.Context, userID uint64, event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.cache.Publish(ctx, Topic(userID), b); err != nil {
		return fmt.Errorf("publish %s to user %d: %w", event.Name, userID, err)
	}
	return nil
}

// Subscription is a live feed of one user's events.
type Subscription struct {
	events <-chan Event
	close  func() error
}

// Events yields decoded events until the subscription is closed.
// Malformed messages are skipped.
func (s *Subscription) Events() <-chan Event { return s.events }

func (s *Subscription) Close() error { return s.close() }

// Subscribe opens userID's topic. The subscription is confirmed by Redis
// before Subscribe returns, so later publishes are not missed.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID uint64) (*Subscription, error) {
	ps, err := n.cache.Subscribe(ctx, Topic(userID))
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	msgs := ps.Channel()
	done := make(chan struct{})

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	return &Subscription{
		events: out,
		close: func() (err error) {
			once.Do(func() {
				close(done)
				err = ps.Close()
			})
			return err
		},
	}, nil
}
