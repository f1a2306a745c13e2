package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	OnlineUsersTTL  = 90 * time.Second // Match pong timeout
	LastLocationTTL = 10 * time.Minute
)

// PresenceCache tracks which users hold a live notification connection and
// their most recent reported coordinate.
type PresenceCache struct {
	redis *RedisCache
}

// NewPresenceCache creates a new presence cache
func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

type cachedLocation struct {
	Latitude  float64 `msgpack:"lat"`
	Longitude float64 `msgpack:"lng"`
	UpdatedAt int64   `msgpack:"at"`
}

// SetUserOnline adds a user to the online users set
func (pc *PresenceCache) SetUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("online:users", userID); err != nil {
		return err
	}

	// Set individual user key with TTL for auto-expiration
	userKey := fmt.Sprintf("online:%d", userID)
	return pc.redis.Set(userKey, []byte("1"), OnlineUsersTTL)
}

// SetUserOffline removes a user from the online users set
func (pc *PresenceCache) SetUserOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("online:users", userID); err != nil {
		return err
	}
	return pc.redis.Delete(fmt.Sprintf("online:%d", userID))
}

// IsUserOnline checks if a user is online
func (pc *PresenceCache) IsUserOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(fmt.Sprintf("online:%d", userID))
}

// GetOnlineUsers returns all online user IDs
func (pc *PresenceCache) GetOnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("online:users")
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}

// GetOnlineCount returns the number of online users
func (pc *PresenceCache) GetOnlineCount() (int64, error) {
	if pc == nil || pc.redis == nil {
		return 0, nil
	}
	return pc.redis.SetCard("online:users")
}

// RefreshUserOnline extends the TTL for an online user
func (pc *PresenceCache) RefreshUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Set(fmt.Sprintf("online:%d", userID), []byte("1"), OnlineUsersTTL)
}

// SetLastLocation caches a user's most recent coordinate. The database holds
// the durable copy; this one only feeds presence lookups.
func (pc *PresenceCache) SetLastLocation(userID uint, latitude, longitude float64) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(cachedLocation{
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	return pc.redis.Set(fmt.Sprintf("location:%d", userID), data, LastLocationTTL)
}

// GetLastLocation returns a user's cached coordinate, if fresh enough.
func (pc *PresenceCache) GetLastLocation(userID uint) (latitude, longitude float64, ok bool) {
	if pc == nil || pc.redis == nil {
		return 0, 0, false
	}
	data, err := pc.redis.Get(fmt.Sprintf("location:%d", userID))
	if err != nil || data == nil {
		return 0, 0, false
	}
	var loc cachedLocation
	if err := msgpack.Unmarshal(data, &loc); err != nil {
		return 0, 0, false
	}
	return loc.Latitude, loc.Longitude, true
}
