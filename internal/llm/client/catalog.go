package client

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"taletable/internal/assets"
	"taletable/internal/models"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Catalog is the parsed model list shipped with the application.
type Catalog struct {
	mu            sync.RWMutex
	providerOrder []string
	providerNames map[string]string
	models        map[string]models.LLMModel
}

type rawModelFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	Models      []rawModel `json:"models"`
}

type rawModel struct {
	DisplayName string `json:"displayName"`
	APIName     string `json:"apiName"`
}

// DefaultCatalog parses the embedded models asset.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(assets.ModelsData)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var parsed rawModelFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse models asset: %w", err)
	}

	c := &Catalog{
		providerNames: make(map[string]string),
		models:        make(map[string]models.LLMModel),
	}
	for _, provider := range parsed.Providers {
		providerID := strings.TrimSpace(provider.ID)
		if providerID == "" {
			continue
		}
		providerName := strings.TrimSpace(provider.DisplayName)
		c.providerNames[providerID] = providerName
		c.providerOrder = append(c.providerOrder, providerID)
		for _, mdl := range provider.Models {
			apiName := strings.TrimSpace(mdl.APIName)
			if apiName == "" {
				continue
			}
			c.models[apiName] = models.LLMModel{
				Key:          apiName,
				DisplayName:  strings.TrimSpace(mdl.DisplayName),
				APIName:      apiName,
				ProviderID:   providerID,
				ProviderName: providerName,
			}
		}
	}
	return c, nil
}

// Resolve maps a model id to its catalog entry. Ids missing from the catalog
// are resolved by name prefix so user-typed model names keep working.
func (c *Catalog) Resolve(modelID string) (models.LLMModel, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return models.LLMModel{}, fmt.Errorf("model id is required")
	}

	c.mu.RLock()
	mdl, ok := c.models[modelID]
	c.mu.RUnlock()
	if ok {
		return mdl, nil
	}

	providerID := InferProvider(modelID)
	if providerID == "" {
		return models.LLMModel{}, fmt.Errorf("unknown model %q", modelID)
	}
	return models.LLMModel{
		Key:          modelID,
		DisplayName:  modelID,
		APIName:      modelID,
		ProviderID:   providerID,
		ProviderName: c.providerName(providerID),
	}, nil
}

// InferProvider guesses the provider from the model name. It returns "" when no rule matches.
func InferProvider(modelID string) string {
	id := strings.ToLower(strings.TrimSpace(modelID))
	id = strings.TrimPrefix(id, "models/")
	switch {
	case strings.HasPrefix(id, "gemini"), strings.HasPrefix(id, "gemma"):
		return ProviderGemini
	case strings.HasPrefix(id, "gpt"), strings.HasPrefix(id, "chatgpt"),
		len(id) > 1 && id[0] == 'o' && id[1] >= '0' && id[1] <= '9':
		return ProviderOpenAI
	case strings.HasPrefix(id, "claude"):
		return ProviderAnthropic
	}
	return ""
}

// Groups lists the catalog models per provider, in catalog provider order.
func (c *Catalog) Groups() []models.LLMModelGroup {
	c.mu.RLock()
	defer c.mu.RUnlock()

	groups := make([]models.LLMModelGroup, 0, len(c.providerOrder))
	for _, providerID := range c.providerOrder {
		group := models.LLMModelGroup{
			ProviderID:   providerID,
			ProviderName: c.providerName(providerID),
		}
		for _, mdl := range c.models {
			if mdl.ProviderID == providerID {
				group.Models = append(group.Models, mdl)
			}
		}
		sort.SliceStable(group.Models, func(i, j int) bool {
			return strings.ToLower(group.Models[i].DisplayName) < strings.ToLower(group.Models[j].DisplayName)
		})
		groups = append(groups, group)
	}
	return groups
}

// Add registers extra model ids, typically from configuration.
func (c *Catalog) Add(modelIDs ...string) {
	for _, id := range modelIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		c.mu.RLock()
		_, exists := c.models[id]
		c.mu.RUnlock()
		if exists {
			continue
		}
		mdl, err := c.Resolve(id)
		if err != nil {
			continue
		}
		c.mu.Lock()
		c.models[id] = mdl
		c.mu.Unlock()
	}
}

func (c *Catalog) providerName(providerID string) string {
	if name, ok := c.providerNames[providerID]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	return providerID
}
