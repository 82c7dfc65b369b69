package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"ethicscore/internal/model"
)

func TestSubmitUpdate(t *testing.T) {
	at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	set, ok := submitUpdate(at)["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, model.ResponseSubmitted, set["status"])
	assert.Equal(t, at, set["updatedAt"])

	submittedAt, ok := set["submittedAt"].(*time.Time)
	require.True(t, ok)
	assert.Equal(t, at, *submittedAt)
}
