package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	trendingKey   = "trending_properties"
	historyMaxLen = 20
	historyTTL    = 30 * 24 * time.Hour
)

// TrendingRepo tracks property popularity and per-user view history in
// Redis. Views bump a sorted-set score under trending_properties and
// prepend the property to the viewer's history:{userID} list.
type TrendingRepo struct{ rdb *redis.Client }

// NewTrendingRepo returns a new TrendingRepo on the given Redis client.
func NewTrendingRepo(rdb *redis.Client) *TrendingRepo { return &TrendingRepo{rdb: rdb} }

func historyKey(userID uint64) string { return fmt.Sprintf("history:%d", userID) }

// RecordView increments the property's trending score and, when the
// viewer is known, records the view in their history. Duplicate
// consecutive views collapse to a single history entry.
func (r *TrendingRepo) RecordView(ctx context.Context, propertyID, userID uint64) error {
	member := strconv.FormatUint(propertyID, 10)
	if err := r.rdb.ZIncrBy(ctx, trendingKey, 1, member).Err(); err != nil {
		return err
	}
	if userID == 0 {
		return nil
	}
	key := historyKey(userID)
	pipe := r.rdb.TxPipeline()
	pipe.LRem(ctx, key, 0, member)
	pipe.LPush(ctx, key, member)
	pipe.LTrim(ctx, key, 0, historyMaxLen-1)
	pipe.Expire(ctx, key, historyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Top returns the highest-scoring property IDs, best first.
func (r *TrendingRepo) Top(ctx context.Context, limit int) ([]uint64, error) {
	members, err := r.rdb.ZRevRange(ctx, trendingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	return parseIDs(members), nil
}

// History returns the user's recently viewed property IDs, newest first.
func (r *TrendingRepo) History(ctx context.Context, userID uint64, limit int) ([]uint64, error) {
	members, err := r.rdb.LRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	return parseIDs(members), nil
}

func parseIDs(members []string) []uint64 {
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
