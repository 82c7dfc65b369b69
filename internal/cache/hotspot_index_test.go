package cache

import (
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(t *testing.T, id, code string) string {
	t.Helper()
	data, err := json.Marshal(hotspotMember{QuestionID: id, QuestionCode: code})
	require.NoError(t, err)
	return string(data)
}

func TestRankEntries_TiesFollowQuestionCode(t *testing.T) {
	// ZREVRANGE order: equal scores come back with the larger member first
	results := []redis.Z{
		{Score: 4, Member: member(t, "tech-v1:T09", "T09")},
		{Score: 3, Member: member(t, "tech-v1:T03", "T03")},
		{Score: 3, Member: member(t, "tech-v1:T02", "T02")},
		{Score: 3, Member: member(t, "legal-v1:L20", "L20")},
		{Score: 1, Member: member(t, "tech-v1:T01", "T01")},
	}

	entries, err := rankEntries(results, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, HotspotEntry{QuestionID: "tech-v1:T09", QuestionCode: "T09", MeanRisk: 4, Rank: 1}, entries[0])
	assert.Equal(t, HotspotEntry{QuestionID: "legal-v1:L20", QuestionCode: "L20", MeanRisk: 3, Rank: 2}, entries[1])
	assert.Equal(t, HotspotEntry{QuestionID: "tech-v1:T02", QuestionCode: "T02", MeanRisk: 3, Rank: 3}, entries[2])
}

func TestRankEntries_LimitAboveSize(t *testing.T) {
	entries, err := rankEntries([]redis.Z{{Score: 2, Member: member(t, "q1", "Q1")}}, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)

	entries, err = rankEntries(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRankEntries_BadMember(t *testing.T) {
	_, err := rankEntries([]redis.Z{{Score: 2, Member: "not json"}}, 1)
	assert.Error(t, err)
}
