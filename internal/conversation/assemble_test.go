package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taletable/internal/models"
)

type turns []models.Turn

func (t turns) Window(n int) []models.Turn {
	if n <= 0 {
		return nil
	}
	start := len(t) - 2*n
	if start < 0 {
		start = 0
	}
	return t[start:]
}

var cfg = models.SessionConfig{ModelID: "gemini-1.5-pro-latest", SystemInstruction: "Be terse.", ProjectKey: "p"}

func bundle(mode models.InjectionMode, snippets ...models.ContextSnippet) models.TransientBundle {
	return models.TransientBundle{Snippets: snippets, Mode: mode}
}

func history() turns {
	return turns{
		{ID: "1", Role: models.RoleUser, Text: "u1"},
		{ID: "2", Role: models.RoleModel, Text: "m1"},
		{ID: "3", Role: models.RoleUser, Text: "u2"},
		{ID: "4", Role: models.RoleModel, Text: "m2"},
		{ID: "5", Role: models.RoleUser, Text: "u3"},
	}
}

func TestAssemble_EmptyTranscriptOnlyUserText(t *testing.T) {
	req, err := Assemble(turns{}, 3, models.TransientBundle{}, "hello", cfg, ContextOptions{})
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, Message{Role: models.RoleUser, Text: "hello"}, req.Messages[0])
	assert.Equal(t, cfg.ModelID, req.ModelID)
	assert.Equal(t, cfg.SystemInstruction, req.SystemInstruction)
	assert.Zero(t, req.InjectedMessages)
}

func TestAssemble_WindowIsTrailingSuffix(t *testing.T) {
	req, err := Assemble(history(), 1, models.TransientBundle{}, "next", cfg, ContextOptions{})
	require.NoError(t, err)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "m2", req.Messages[0].Text)
	assert.Equal(t, "u3", req.Messages[1].Text)
	assert.Equal(t, "next", req.Messages[2].Text)
}

func TestAssemble_ZeroWindowSendsNoHistory(t *testing.T) {
	req, err := Assemble(history(), 0, models.TransientBundle{}, "next", cfg, ContextOptions{})
	require.NoError(t, err)
	assert.Len(t, req.Messages, 1)
}

func TestAssemble_EmptyRequest(t *testing.T) {
	_, err := Assemble(history(), 2, models.TransientBundle{}, "  ", cfg, ContextOptions{})
	assert.ErrorIs(t, err, ErrEmptyRequest)
}

func TestAssemble_FormattedUser(t *testing.T) {
	b := bundle(models.InjectionFormattedUser, models.ContextSnippet{Label: "Hero", Text: "brave"})
	req, err := Assemble(history(), 1, b, "go", cfg, ContextOptions{Template: "[[default]]\n{label}: {text}"})
	require.NoError(t, err)

	require.Len(t, req.Messages, 4)
	assert.Equal(t, Message{Role: models.RoleUser, Text: "Hero: brave"}, req.Messages[0])
	assert.Equal(t, "m2", req.Messages[1].Text)
	assert.Equal(t, 1, req.InjectedMessages)
	assert.Equal(t, cfg.SystemInstruction, req.SystemInstruction)
}

func TestAssemble_DummyResponseAddsAcknowledgement(t *testing.T) {
	b := bundle(models.InjectionDummyResponse, models.ContextSnippet{Label: "A", Text: "x"})
	req, err := Assemble(history(), 1, b, "go", cfg, ContextOptions{Template: "{text}", DummyResponse: "Noted."})
	require.NoError(t, err)

	require.Len(t, req.Messages, 5)
	assert.Equal(t, Message{Role: models.RoleUser, Text: "x"}, req.Messages[0])
	assert.Equal(t, Message{Role: models.RoleModel, Text: "Noted."}, req.Messages[1])
	assert.Equal(t, 2, req.InjectedMessages)
}

func TestAssemble_DummyResponseEmptyBundleInjectsNothing(t *testing.T) {
	req, err := Assemble(history(), 1, bundle(models.InjectionDummyResponse), "go", cfg, ContextOptions{})
	require.NoError(t, err)
	assert.Zero(t, req.InjectedMessages)
	assert.Len(t, req.Messages, 3)
}

func TestAssemble_DummyResponseDefaultText(t *testing.T) {
	b := bundle(models.InjectionDummyResponse, models.ContextSnippet{Label: "A", Text: "x"})
	req, err := Assemble(turns{}, 1, b, "go", cfg, ContextOptions{Template: "{text}"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDummyResponse, req.Messages[1].Text)
}

func TestAssemble_SystemRoleAppendsToInstruction(t *testing.T) {
	b := bundle(models.InjectionSystemRole, models.ContextSnippet{Label: "World", Text: "rainy"})
	req, err := Assemble(history(), 1, b, "go", cfg, ContextOptions{Template: "{label}={text}"})
	require.NoError(t, err)

	assert.Equal(t, "Be terse.\n\nWorld=rainy", req.SystemInstruction)
	assert.Len(t, req.Messages, 3)
	assert.Zero(t, req.InjectedMessages)
}

func TestAssemble_SystemRoleWithoutBaseInstruction(t *testing.T) {
	b := bundle(models.InjectionSystemRole, models.ContextSnippet{Label: "W", Text: "r"})
	req, err := Assemble(turns{}, 1, b, "go", models.SessionConfig{ModelID: "m"}, ContextOptions{Template: "{text}"})
	require.NoError(t, err)
	assert.Equal(t, "r", req.SystemInstruction)
}

func TestAssemble_BlockRenderingEmptyIsOmitted(t *testing.T) {
	b := bundle(models.InjectionFormattedUser, models.ContextSnippet{Label: "L", Text: "t", Category: "lore"})
	req, err := Assemble(turns{}, 1, b, "go", cfg, ContextOptions{Template: "[[other]]\n{text}"})
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "go", req.Messages[0].Text)
}

func TestAssemble_ContextOnlyTurn(t *testing.T) {
	b := bundle(models.InjectionFormattedUser, models.ContextSnippet{Label: "L", Text: "t"})
	req, err := Assemble(turns{}, 1, b, "", cfg, ContextOptions{Template: "{text}"})
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "t", req.Messages[0].Text)
}

func TestAssemble_CategoryTemplateSelection(t *testing.T) {
	doc := "[[default]]\nD {label}\n[[character]]\nC {label}: {text}"
	b := bundle(models.InjectionFormattedUser,
		models.ContextSnippet{Label: "Ann", Text: "spy", Category: "character"},
		models.ContextSnippet{Label: "Rome", Text: "city", Category: "place"},
	)
	req, err := Assemble(turns{}, 0, b, "go", cfg, ContextOptions{Template: doc})
	require.NoError(t, err)
	assert.Equal(t, "C Ann: spy\n\nD Rome", req.Messages[0].Text)
}

func TestAssemble_ModelOverride(t *testing.T) {
	b := bundle(models.InjectionFormattedUser, models.ContextSnippet{Label: "L", Text: "t"})
	b.ModelOverride = "claude-3-5-sonnet-latest"
	req, err := Assemble(turns{}, 1, b, "go", cfg, ContextOptions{})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-5-sonnet-latest", req.ModelID)
}

func TestAssemble_UnknownModeFallsBackToFormattedUser(t *testing.T) {
	b := bundle(models.InjectionMode("weird"), models.ContextSnippet{Label: "L", Text: "t"})
	req, err := Assemble(turns{}, 1, b, "go", cfg, ContextOptions{Template: "{text}"})
	require.NoError(t, err)
	assert.Equal(t, 1, req.InjectedMessages)
}
