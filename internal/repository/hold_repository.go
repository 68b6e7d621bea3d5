package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lrotelli01/largebnb/internal/model"
)

// HoldRepo stores pending-payment holds in Redis.
//
// Keys:
//
//	temp_res:{holdID}    JSON-encoded model.Hold, expires with the hold TTL
//	room_holds:{roomID}  set of hold IDs active on the room
//	room_mutex:{roomID}  short-lived SETNX lock taken while a hold is created
//
// The per-room set makes the availability check an O(holds-on-room)
// lookup instead of a keyspace scan. Entries in the set may outlive
// their hold key (Redis sets cannot expire members individually), so
// readers prune dangling IDs as they encounter them.
type HoldRepo struct{ rdb *redis.Client }

// NewHoldRepo returns a new HoldRepo on the given Redis client.
func NewHoldRepo(rdb *redis.Client) *HoldRepo { return &HoldRepo{rdb: rdb} }

func holdKey(id string) string          { return "temp_res:" + id }
func roomHoldsKey(roomID uint64) string { return fmt.Sprintf("room_holds:%d", roomID) }
func roomMutexKey(roomID uint64) string { return fmt.Sprintf("room_mutex:%d", roomID) }

// Put writes the hold and registers it in the room's index. The index
// key expires one minute after the hold so it can never pin stale IDs
// forever even if pruning is missed.
func (r *HoldRepo) Put(ctx context.Context, h *model.Hold, ttl time.Duration) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, holdKey(h.ID), raw, ttl).Err(); err != nil {
		return err
	}
	idx := roomHoldsKey(h.RoomID)
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, idx, h.ID)
	pipe.Expire(ctx, idx, ttl+time.Minute)
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns the hold, or (nil, nil) when it is absent or expired.
func (r *HoldRepo) Get(ctx context.Context, holdID string) (*model.Hold, error) {
	raw, err := r.rdb.Get(ctx, holdKey(holdID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var h model.Hold
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Delete removes the hold and its index entry. Deleting an absent hold
// is not an error.
func (r *HoldRepo) Delete(ctx context.Context, holdID string) error {
	h, err := r.Get(ctx, holdID)
	if err != nil {
		return err
	}
	if h != nil {
		if err := r.rdb.SRem(ctx, roomHoldsKey(h.RoomID), holdID).Err(); err != nil {
			return err
		}
	}
	return r.rdb.Del(ctx, holdKey(holdID)).Err()
}

// ActiveByRoom returns the live holds on a room, pruning index entries
// whose hold key has already expired.
func (r *HoldRepo) ActiveByRoom(ctx context.Context, roomID uint64) ([]model.Hold, error) {
	idx := roomHoldsKey(roomID)
	ids, err := r.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return nil, err
	}
	holds := make([]model.Hold, 0, len(ids))
	for _, id := range ids {
		h, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if h == nil {
			// expired hold, drop the dangling index entry
			_ = r.rdb.SRem(ctx, idx, id).Err()
			continue
		}
		holds = append(holds, *h)
	}
	return holds, nil
}

// AcquireRoomLock takes the short-lived per-room mutex. It returns
// false when another request holds it.
func (r *HoldRepo) AcquireRoomLock(ctx context.Context, roomID uint64, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, roomMutexKey(roomID), "1", ttl).Result()
}

// ReleaseRoomLock frees the per-room mutex.
func (r *HoldRepo) ReleaseRoomLock(ctx context.Context, roomID uint64) error {
	return r.rdb.Del(ctx, roomMutexKey(roomID)).Err()
}
