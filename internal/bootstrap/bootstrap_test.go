package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taletable/internal/config"
	"taletable/internal/events"
	"taletable/internal/llm/client"
	"taletable/internal/models"
	"taletable/internal/tests/mocks"
)

func testConfig(t *testing.T, backend string) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		DataDir:           filepath.Join(dir, "data"),
		DatabasePath:      filepath.Join(dir, "taletable.db"),
		LogLevel:          "debug",
		TranscriptBackend: backend,
		DefaultModel:      "gemini-2.5-flash",
		Generation:        client.DefaultGenerationConfig(),
		DefaultWindow:     3,
	}
}

func TestRuntime_TurnSurvivesRestart(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			ring := keyring.NewArrayKeyring(nil)

			var builtWith []string
			fake := &mocks.ChatModelMock{
				StreamFunc: func(ctx context.Context, in []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
					return mocks.StreamOf(ctx, "Hello ", "there."), nil
				},
			}
			opts := Options{
				Keyring: ring,
				Builders: map[string]client.Builder{
					client.ProviderGemini: func(ctx context.Context, apiName, apiKey string, gen client.GenerationConfig) (model.BaseChatModel, error) {
						builtWith = append(builtWith, apiName+":"+apiKey)
						return fake, nil
					},
				},
			}

			done := make(chan events.ChatEvent, 8)
			events.SetCustomEmitter(func(_ context.Context, _ string, evt events.ChatEvent) {
				if evt.Type == events.EventDone || evt.Type == events.EventError {
					done <- evt
				}
			})
			t.Cleanup(func() { events.SetCustomEmitter(nil) })

			ctx := context.Background()
			rt, err := New(cfg, opts)
			require.NoError(t, err)
			rt.Startup(ctx)
			require.NoError(t, rt.Keys.StoreApiKey(client.ProviderGemini, []byte("secret")))
			require.NoError(t, rt.Open("novel"))

			_, err = rt.Chat.StartTurn("Hi", -1, models.TransientBundle{})
			require.NoError(t, err)
			select {
			case evt := <-done:
				require.Equal(t, events.EventDone, evt.Type, evt.Message)
			case <-time.After(2 * time.Second):
				t.Fatal("turn did not finish")
			}
			assert.Equal(t, []string{"gemini-2.5-flash:secret"}, builtWith)
			require.NoError(t, rt.Close(ctx))

			rt2, err := New(cfg, opts)
			require.NoError(t, err)
			rt2.Startup(ctx)
			t.Cleanup(func() { _ = rt2.Close(ctx) })

			assert.Equal(t, "novel", rt2.Store.Project())
			turns := rt2.Chat.GetTranscriptSnapshot()
			require.Len(t, turns, 2)
			assert.Equal(t, "Hi", turns[0].Text)
			assert.Equal(t, "Hello there.", turns[1].Text)

			keys, err := rt2.Chat.ListProjects()
			require.NoError(t, err)
			assert.Equal(t, []string{"novel"}, keys)
		})
	}
}

func TestRuntime_StoringKeyResetsCachedModels(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := testConfig(t, config.BackendFile)
	var keysSeen []string
	opts := Options{
		Keyring: keyring.NewArrayKeyring(nil),
		Builders: map[string]client.Builder{
			client.ProviderGemini: func(ctx context.Context, apiName, apiKey string, gen client.GenerationConfig) (model.BaseChatModel, error) {
				keysSeen = append(keysSeen, apiKey)
				return &mocks.ChatModelMock{}, nil
			},
		},
	}
	rt, err := New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	ctx := context.Background()
	_, err = rt.Factory.ChatModel(ctx, "gemini-2.5-flash")
	assert.Error(t, err)

	require.NoError(t, rt.Keys.StoreApiKey(client.ProviderGemini, []byte("one")))
	_, err = rt.Factory.ChatModel(ctx, "gemini-2.5-flash")
	require.NoError(t, err)
	_, err = rt.Factory.ChatModel(ctx, "gemini-2.5-flash")
	require.NoError(t, err)

	require.NoError(t, rt.Keys.StoreApiKey(client.ProviderGemini, []byte("two")))
	_, err = rt.Factory.ChatModel(ctx, "gemini-2.5-flash")
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two"}, keysSeen)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}
