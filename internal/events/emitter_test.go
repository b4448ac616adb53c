package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taletable/internal/models"
)

func TestPublish_UsesCanonicalNamesAndProjectScope(t *testing.T) {
	var names []string
	var got []ChatEvent
	SetCustomEmitter(func(ctx context.Context, name string, evt ChatEvent) {
		names = append(names, name)
		got = append(got, evt)
	})
	t.Cleanup(func() { SetCustomEmitter(nil) })

	ctx := WithProject(context.Background(), "novel")
	Publish(ctx, NewChunk("t1", "he"))
	Publish(ctx, NewDone("t1", "hello", models.UsageMetadata{TotalTokens: 4}))
	Publish(ctx, NewError("t2", "quota", "slow down"))
	Publish(ctx, NewCancelled("t3"))
	Publish(context.Background(), NewWarn("save failed"))

	assert.Equal(t, []string{ChatChunk, ChatDone, ChatError, ChatCancelled, ChatNotice}, names)
	require.Len(t, got, 5)
	assert.Equal(t, "novel", got[0].ProjectKey)
	assert.Equal(t, 4, got[1].Usage.TotalTokens)
	assert.Equal(t, "quota", got[2].ErrorKind)
	assert.Empty(t, got[4].ProjectKey)
	assert.NotEmpty(t, got[0].ID)
}

func TestWithProject_IgnoresBlankKey(t *testing.T) {
	ctx := WithProject(context.Background(), "  ")
	assert.Empty(t, ProjectFromContext(ctx))
	assert.Empty(t, ProjectFromContext(nil)) //nolint:staticcheck
}

func TestDescribe_OmitsReplyText(t *testing.T) {
	evt := NewDone("turn-1", "a secret reply", models.UsageMetadata{TotalTokens: 9})
	evt.ProjectKey = "novel"

	line := describe(ChatDone, evt)
	assert.Contains(t, line, "turn=turn-1")
	assert.Contains(t, line, "project=novel")
	assert.Contains(t, line, "chars=14")
	assert.Contains(t, line, "tokens=9")
	assert.NotContains(t, line, "secret")

	line = describe(ChatError, NewError("turn-2", "quota", "slow down"))
	assert.Contains(t, line, `kind=quota message="slow down"`)
}
