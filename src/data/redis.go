package data

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	permPrefix     = "perms:"
	linkPrefix     = "link:"
	permCacheTTL   = 5 * time.Minute
	linkSessionTTL = 10 * time.Minute
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// CachePermissions stores a user's Overseerr permission bits for a short TTL
// so interaction handlers do not hammer the user listing endpoint.
func CachePermissions(ctx context.Context, rdb *redis.Client, discordUserID string, perms int64) error {
	return rdb.Set(ctx, permPrefix+discordUserID, strconv.FormatInt(perms, 10), permCacheTTL).Err()
}

// GetCachedPermissions returns (perms, true) on a cache hit.
func GetCachedPermissions(ctx context.Context, rdb *redis.Client, discordUserID string) (int64, bool, error) {
	val, err := rdb.Get(ctx, permPrefix+discordUserID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	perms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return perms, true, nil
}

func InvalidatePermissions(ctx context.Context, rdb *redis.Client, discordUserID string) error {
	return rdb.Del(ctx, permPrefix+discordUserID).Err()
}

// SetLinkSession stores the discord user id behind an account-link session.
// Sessions expire after ten minutes.
func SetLinkSession(ctx context.Context, rdb *redis.Client, sessionID, discordUserID string) error {
	return rdb.Set(ctx, linkPrefix+sessionID, discordUserID, linkSessionTTL).Err()
}

// GetAndDelLinkSession consumes a link session, returning the discord user id
// it was issued for. A session can only be completed once.
func GetAndDelLinkSession(ctx context.Context, rdb *redis.Client, sessionID string) (string, error) {
	val, err := rdb.GetDel(ctx, linkPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}
