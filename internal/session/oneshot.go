package session

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"taletable/internal/conversation"
	"taletable/internal/models"
)

// OneShotResult is the final text of a single-shot request.
type OneShotResult struct {
	Text    string               `json:"text"`
	ModelID string               `json:"modelId"`
	Usage   models.UsageMetadata `json:"usage"`
}

// OneShot issues history-independent prompt/response calls. It holds no
// session state and may run concurrently with a streaming turn.
type OneShot struct {
	models ModelSource
}

func NewOneShot(models ModelSource) *OneShot {
	return &OneShot{models: models}
}

// Generate sends prompt with systemInstruction to modelOverride, or to
// sessionModel when no override is given. Failures are returned as *ProviderError.
func (o *OneShot) Generate(ctx context.Context, sessionModel, systemInstruction, prompt, modelOverride string) (OneShotResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return OneShotResult{}, conversation.ErrEmptyRequest
	}
	modelID := strings.TrimSpace(modelOverride)
	if modelID == "" {
		modelID = sessionModel
	}

	cm, err := o.models.ChatModel(ctx, modelID)
	if err != nil {
		return OneShotResult{}, newProviderError(err)
	}

	msgs := toSchemaMessages(systemInstruction, []conversation.Message{{Role: models.RoleUser, Text: prompt}})
	out, err := cm.Generate(ctx, msgs)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return OneShotResult{}, ErrCancelled
		}
		log.Warn().Err(err).Str("model", modelID).Msg("single-shot request failed")
		return OneShotResult{}, newProviderError(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return OneShotResult{}, emptyResponseError()
	}

	res := OneShotResult{Text: out.Content, ModelID: modelID}
	if u := usageOf(out); u != nil {
		res.Usage = *u
	}
	return res, nil
}
