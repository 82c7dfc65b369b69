package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ethicscore/internal/model"
)

// ProjectScoreCache handles Redis read-through storage for project rollups.
// All roles of a project share one hash so a new submission can drop them
// together.
type ProjectScoreCache interface {
	Get(ctx context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error)
	Set(ctx context.Context, score *model.ProjectScore) error
	Invalidate(ctx context.Context, projectID string) error
}

type projectScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProjectScoreCache creates a new project score cache
func NewProjectScoreCache(client *redis.Client, ttl time.Duration) ProjectScoreCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &projectScoreCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *projectScoreCache) key(projectID string) string {
	return fmt.Sprintf("project:%s:scores", projectID)
}

// projectScoreField names the hash field of one rollup. The all-roles
// rollup maps to a non-empty field.
func projectScoreField(role string, includeCombined bool) string {
	if role == "" {
		role = "_all"
	}
	if includeCombined {
		return role + ":combined"
	}
	return role
}

func (c *projectScoreCache) Get(ctx context.Context, projectID, role string, includeCombined bool) (*model.ProjectScore, error) {
	data, err := c.client.HGet(ctx, c.key(projectID), projectScoreField(role, includeCombined)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var score model.ProjectScore
	if err := json.Unmarshal([]byte(data), &score); err != nil {
		return nil, err
	}
	return &score, nil
}

func (c *projectScoreCache) Set(ctx context.Context, score *model.ProjectScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return err
	}
	key := c.key(score.ProjectID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, projectScoreField(score.Role, score.IncludesCombined), data)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}

func (c *projectScoreCache) Invalidate(ctx context.Context, projectID string) error {
	return c.client.Del(ctx, c.key(projectID)).Err()
}
