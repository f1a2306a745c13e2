package cache

import (
	"time"

	"github.com/smurfolan/likkle-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotTTL       = 30 * time.Second
	snapshotAreasKey  = "snapshot:areas"
	snapshotGroupsKey = "snapshot:groups"
)

// SnapshotCache holds the full area/group read between reconciliations. The
// short TTL bounds staleness for writes happening on other instances; local
// writes invalidate explicitly.
type SnapshotCache struct {
	redis *RedisCache
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(redis *RedisCache) *SnapshotCache {
	return &SnapshotCache{redis: redis}
}

// Get returns the cached snapshot. Both keys must be present; a partial hit
// counts as a miss.
func (sc *SnapshotCache) Get() ([]models.Area, []models.Group, bool) {
	if sc == nil || sc.redis == nil {
		return nil, nil, false
	}
	areaData, err := sc.redis.Get(snapshotAreasKey)
	if err != nil || areaData == nil {
		return nil, nil, false
	}
	groupData, err := sc.redis.Get(snapshotGroupsKey)
	if err != nil || groupData == nil {
		return nil, nil, false
	}

	var areas []models.Area
	if err := msgpack.Unmarshal(areaData, &areas); err != nil {
		return nil, nil, false
	}
	var groups []models.Group
	if err := msgpack.Unmarshal(groupData, &groups); err != nil {
		return nil, nil, false
	}
	return areas, groups, true
}

// Set caches a snapshot.
func (sc *SnapshotCache) Set(areas []models.Area, groups []models.Group) {
	if sc == nil || sc.redis == nil {
		return
	}
	areaData, err := msgpack.Marshal(areas)
	if err != nil {
		return
	}
	groupData, err := msgpack.Marshal(groups)
	if err != nil {
		return
	}
	if err := sc.redis.Set(snapshotAreasKey, areaData, snapshotTTL); err != nil {
		return
	}
	_ = sc.redis.Set(snapshotGroupsKey, groupData, snapshotTTL)
}

// Invalidate drops the cached snapshot.
func (sc *SnapshotCache) Invalidate() {
	if sc == nil || sc.redis == nil {
		return
	}
	_ = sc.redis.Delete(snapshotAreasKey)
	_ = sc.redis.Delete(snapshotGroupsKey)
}
