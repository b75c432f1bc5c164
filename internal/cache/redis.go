package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/redis/go-redis/v9"
)

const (
	// StatusKey is the hash holding one cached device per id
	StatusKey = "cybercafe:device:status"
	// VersionKey is the hash holding the version of each cached device
	VersionKey = "cybercafe:device:version"
)

// setIfNewer writes a device only when its version is above the cached one, so a
// slow writer holding an old snapshot cannot overwrite a newer status.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[2], ARGV[1])
if current and tonumber(current) >= tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
redis.call('HSET', KEYS[2], ARGV[1], ARGV[2])
return 1
`)

// entry is the cached form of a device
type entry struct {
	ID      int                 `json:"id"`
	Name    string              `json:"name"`
	Type    models.DeviceType   `json:"type"`
	Status  models.DeviceStatus `json:"status"`
	Version int64               `json:"version"`
}

// StatusCache mirrors device status in Redis. The store stays the source of truth;
// the cache is written after every committed change and read by the dashboard.
type StatusCache struct {
	rdb        redis.Cmdable
	statusKey  string
	versionKey string
}

func NewStatusCache(rdb redis.Cmdable) *StatusCache {
	return &StatusCache{rdb: rdb, statusKey: StatusKey, versionKey: VersionKey}
}

// Warm replaces the cached hashes with the given devices. It runs at startup, when the
// store is the only authority, so it resets versions instead of comparing them.
func (c *StatusCache) Warm(ctx context.Context, devices []models.Device) error {
	statuses := make(map[string]interface{}, len(devices))
	versions := make(map[string]interface{}, len(devices))
	for _, d := range devices {
		v, err := encode(d)
		if err != nil {
			return err
		}
		field := strconv.Itoa(d.ID)
		statuses[field] = v
		versions[field] = d.Version
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.statusKey, c.versionKey)
		if len(statuses) > 0 {
			pipe.HSet(ctx, c.statusKey, statuses)
			pipe.HSet(ctx, c.versionKey, versions)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to warm status cache: %w", err)
	}
	return nil
}

// SetStatus writes one device unless the cache already holds the same or a newer version
func (c *StatusCache) SetStatus(ctx context.Context, device models.Device) error {
	_, err := c.setStatus(ctx, device)
	return err
}

func (c *StatusCache) setStatus(ctx context.Context, device models.Device) (bool, error) {
	v, err := encode(device)
	if err != nil {
		return false, err
	}
	written, err := setIfNewer.Run(ctx, c.rdb,
		[]string{c.statusKey, c.versionKey},
		strconv.Itoa(device.ID), device.Version, v,
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache device %d: %w", device.ID, err)
	}
	return written == 1, nil
}

// Summary counts cached devices. An empty hash yields a zero summary, which callers
// treat as a miss.
func (c *StatusCache) Summary(ctx context.Context) (*models.AvailabilitySummary, error) {
	raw, err := c.rdb.HGetAll(ctx, c.statusKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read status cache: %w", err)
	}
	devices, err := decodeAll(raw)
	if err != nil {
		return nil, err
	}
	summary := models.SummarizeDevices(devices)
	return &summary, nil
}

func encode(d models.Device) (string, error) {
	data, err := json.Marshal(entry{ID: d.ID, Name: d.Name, Type: d.Type, Status: d.Status, Version: d.Version})
	if err != nil {
		return "", fmt.Errorf("failed to encode device %d: %w", d.ID, err)
	}
	return string(data), nil
}

func decodeAll(raw map[string]string) ([]models.Device, error) {
	devices := make([]models.Device, 0, len(raw))
	for field, v := range raw {
		var e entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("failed to decode cached device %s: %w", field, err)
		}
		devices = append(devices, models.Device{ID: e.ID, Name: e.Name, Type: e.Type, Status: e.Status, Version: e.Version})
	}
	return devices, nil
}
