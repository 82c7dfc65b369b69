package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"ethicscore/internal/model"
)

// HotspotIndex keeps the latest hotspot ranking of a project in a Redis ZSET
// scored by mean risk, so dashboards can read the top entries cheaply.
type HotspotIndex interface {
	Replace(ctx context.Context, projectID string, hotspots []model.HotspotQuestion) error
	GetTop(ctx context.Context, projectID string, limit int) ([]HotspotEntry, error)
}

// HotspotEntry is one ranked hotspot
type HotspotEntry struct {
	QuestionID   string  `json:"questionId"`
	QuestionCode string  `json:"questionCode"`
	MeanRisk     float64 `json:"meanRisk"`
	Rank         int     `json:"rank"`
}

// hotspotMember is the ZSET member; it carries the code so ties rank the
// same way they do in the hotspot detector
type hotspotMember struct {
	QuestionID   string `json:"id"`
	QuestionCode string `json:"code"`
}

type hotspotIndex struct {
	client *redis.Client
}

// NewHotspotIndex creates a new hotspot index
func NewHotspotIndex(client *redis.Client) HotspotIndex {
	return &hotspotIndex{
		client: client,
	}
}

func (c *hotspotIndex) key(projectID string) string {
	return fmt.Sprintf("project:%s:hotspots", projectID)
}

func (c *hotspotIndex) Replace(ctx context.Context, projectID string, hotspots []model.HotspotQuestion) error {
	members := make([]redis.Z, len(hotspots))
	for i, h := range hotspots {
		data, err := json.Marshal(hotspotMember{QuestionID: h.QuestionID, QuestionCode: h.QuestionCode})
		if err != nil {
			return err
		}
		members[i] = redis.Z{Score: h.MeanRisk, Member: string(data)}
	}

	key := c.key(projectID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
		}
		return nil
	})
	return err
}

// GetTop reads the whole ranking and cuts it after ordering, because the ZSET
// itself breaks equal scores by member bytes
func (c *hotspotIndex) GetTop(ctx context.Context, projectID string, limit int) ([]HotspotEntry, error) {
	if limit <= 0 {
		return []HotspotEntry{}, nil
	}
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(projectID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return rankEntries(results, limit)
}

func rankEntries(results []redis.Z, limit int) ([]HotspotEntry, error) {
	ranked := make([]model.HotspotQuestion, 0, len(results))
	for _, z := range results {
		raw, ok := z.Member.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected hotspot member %T", z.Member)
		}
		var m hotspotMember
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decode hotspot member: %w", err)
		}
		ranked = append(ranked, model.HotspotQuestion{
			QuestionID:   m.QuestionID,
			QuestionCode: m.QuestionCode,
			MeanRisk:     z.Score,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RanksBefore(ranked[j])
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]HotspotEntry, len(ranked))
	for i, h := range ranked {
		entries[i] = HotspotEntry{
			QuestionID:   h.QuestionID,
			QuestionCode: h.QuestionCode,
			MeanRisk:     h.MeanRisk,
			Rank:         i + 1,
		}
	}
	return entries, nil
}
