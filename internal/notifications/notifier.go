package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	broadcastChannel  = "notifications:broadcast"
	userChannelPrefix = "notifications:user:"
)

// Event is the envelope published for every feed notification.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Notifier publishes feed notifications into Redis channels. A nil Redis
// client turns every method into a no-op so the app runs without Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// PublishNewPost broadcasts that a post was published.
func (n *Notifier) PublishNewPost(ctx context.Context, postID uint, title, author string) error {
	return n.publishEvent(ctx, Event{
		Type: "new_post",
		Payload: map[string]any{
			"post_id": postID,
			"title":   title,
			"author":  author,
		},
	})
}

// PublishNewComment broadcasts that a comment landed on a post.
func (n *Notifier) PublishNewComment(ctx context.Context, postID, commentID uint, author string) error {
	return n.publishEvent(ctx, Event{
		Type: "new_comment",
		Payload: map[string]any{
			"post_id":    postID,
			"comment_id": commentID,
			"author":     author,
		},
	})
}

func (n *Notifier) publishEvent(ctx context.Context, event Event) error {
	if n.rdb == nil {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.PublishBroadcast(ctx, string(data))
}

// StartPatternSubscriber subscribes to the notification channels and calls
// onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in pattern subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}
