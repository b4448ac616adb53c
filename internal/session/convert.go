package session

import (
	"github.com/cloudwego/eino/schema"

	"taletable/internal/conversation"
	"taletable/internal/models"
)

func toSchemaMessages(systemInstruction string, msgs []conversation.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs)+1)
	if systemInstruction != "" {
		out = append(out, schema.SystemMessage(systemInstruction))
	}
	for _, m := range msgs {
		if m.Role == models.RoleModel {
			out = append(out, schema.AssistantMessage(m.Text, nil))
			continue
		}
		out = append(out, schema.UserMessage(m.Text))
	}
	return out
}

func usageOf(msg *schema.Message) *models.UsageMetadata {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return nil
	}
	u := msg.ResponseMeta.Usage
	total := u.TotalTokens
	if total == 0 {
		total = u.PromptTokens + u.CompletionTokens
	}
	return &models.UsageMetadata{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      total,
	}
}
