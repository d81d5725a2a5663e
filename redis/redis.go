package redis

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nucares/booking-gateway/models"
	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// reservationTTL covers the booking window: a reservation older than a day
// can no longer collide with anything still bookable.
const reservationTTL = 24 * time.Hour

// InitRedis connects the duplicate-submission guard. When REDIS_ADDR is not
// set the guard stays disabled and submissions rely on the upstream API's own
// conflict handling.
func InitRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return fmt.Errorf("redis: connect: %w", err)
	}
	Client = client
	return nil
}

func reservationKey(userID uint, service models.ServiceType, date string, slot models.TimeSlot) string {
	return fmt.Sprintf("booking:%d:%s:%s:%s", userID, service, date, slot)
}

// Reserve claims a (user, service, date, time) tuple before the booking POST
// fires, so the same slot cannot be double-submitted from two tabs. Returns
// true when the claim is fresh or the guard is disabled.
func Reserve(ctx context.Context, userID uint, service models.ServiceType, date string, slot models.TimeSlot) (bool, error) {
	if Client == nil {
		return true, nil
	}
	return Client.SetNX(ctx, reservationKey(userID, service, date, slot), 1, reservationTTL).Result()
}

// Release gives a reservation back after the upstream rejected the booking,
// so the user can retry the same slot.
func Release(ctx context.Context, userID uint, service models.ServiceType, date string, slot models.TimeSlot) error {
	if Client == nil {
		return nil
	}
	return Client.Del(ctx, reservationKey(userID, service, date, slot)).Err()
}
