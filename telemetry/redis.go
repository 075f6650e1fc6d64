package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore mirrors robot snapshots into Redis so dashboards and
// sibling services can read them without touching the robot API.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func stateKey(robotID string) string {
	return fmt.Sprintf("missioncore:robot:%s:state", robotID)
}

const allRobotsKey = "missioncore:robots"

func (r *RedisStore) SetSnapshot(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, stateKey(snap.RobotID), data, 0)
	pipe.SAdd(ctx, allRobotsKey, snap.RobotID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisStore) GetSnapshot(ctx context.Context, robotID string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, stateKey(robotID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	return &snap, json.Unmarshal(data, &snap)
}

func (r *RedisStore) ListRobotIDs(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, allRobotsKey).Result()
}

func (r *RedisStore) RemoveRobot(ctx context.Context, robotID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, stateKey(robotID))
	pipe.SRem(ctx, allRobotsKey, robotID)
	_, err := pipe.Exec(ctx)
	return err
}
