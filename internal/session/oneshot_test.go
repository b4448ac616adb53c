package session

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taletable/internal/conversation"
	"taletable/internal/llm/client"
)

func TestOneShot_UsesOverride(t *testing.T) {
	fm := newFakeModel()
	fm.generateOut = chunkWithUsage("rewritten", 5, 2, 7)
	src := &fakeSource{model: fm}

	res, err := NewOneShot(src).Generate(context.Background(), "gemini-1.5-pro-latest", "edit", "fix this", "gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", res.Text)
	assert.Equal(t, "gpt-4o", res.ModelID)
	assert.Equal(t, 7, res.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o", src.last())

	in := fm.input()
	require.Len(t, in, 2)
	assert.Equal(t, schema.System, in[0].Role)
	assert.Equal(t, "fix this", in[1].Content)
}

func TestOneShot_FallsBackToSessionModel(t *testing.T) {
	fm := newFakeModel()
	fm.generateOut = chunk("ok")
	src := &fakeSource{model: fm}

	res, err := NewOneShot(src).Generate(context.Background(), "gemini-1.5-pro-latest", "", "p", "  ")
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro-latest", res.ModelID)
	assert.Len(t, fm.input(), 1)
}

func TestOneShot_Failures(t *testing.T) {
	fm := newFakeModel()
	fm.generateErr = errors.New("permission denied")
	_, err := NewOneShot(&fakeSource{model: fm}).Generate(context.Background(), "m", "", "p", "")
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, client.KindAuth, pe.Kind)

	empty := newFakeModel()
	empty.generateOut = chunk("   ")
	_, err = NewOneShot(&fakeSource{model: empty}).Generate(context.Background(), "m", "", "p", "")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, client.KindEmptyResponse, pe.Kind)

	_, err = NewOneShot(&fakeSource{model: fm}).Generate(context.Background(), "m", "", "", "")
	assert.ErrorIs(t, err, conversation.ErrEmptyRequest)
}
