package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/stagefive/notebook/internal/domain"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func channelFor(notebook string) string {
	return "notebook:" + notebook
}

func (s *SignalService) Publish(ctx context.Context, notebook string, event domain.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channelFor(notebook), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime relays events for the notebooks received on input until the
// context is done or input closes. Each input message replaces the
// current subscription set.
func (s *SignalService) Realtime(ctx context.Context, input chan []string, output chan domain.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	var current []string

	for {
		select {
		case <-ctx.Done():
			return
		case notebooks, ok := <-input:
			if !ok {
				return
			}
			if len(current) > 0 {
				if err := pubsub.Unsubscribe(ctx, channels(current)...); err != nil {
					slog.ErrorContext(
						ctx, "Failed to unsubscribe",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
				}
			}
			current = notebooks
			if len(current) > 0 {
				if err := pubsub.Subscribe(ctx, channels(current)...); err != nil {
					slog.ErrorContext(
						ctx, "Failed to subscribe",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
					return
				}
			}
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(
					ctx, "Dropping malformed event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func channels(notebooks []string) []string {
	out := make([]string, 0, len(notebooks))
	for _, n := range notebooks {
		out = append(out, channelFor(n))
	}
	return out
}
