package services

import (
	"fmt"
	"strings"

	"taletable/internal/llm/client"
	"taletable/internal/models"
)

type ModelService interface {
	ListModelGroups() ([]models.LLMModelGroup, error)
	GetModel(modelID string) (*models.LLMModel, error)
}

type modelService struct {
	catalog *client.Catalog
}

func NewModelService(catalog *client.Catalog) ModelService {
	return &modelService{catalog: catalog}
}

func (s *modelService) ListModelGroups() ([]models.LLMModelGroup, error) {
	if s.catalog == nil {
		return nil, fmt.Errorf("model catalog not loaded")
	}
	return s.catalog.Groups(), nil
}

func (s *modelService) GetModel(modelID string) (*models.LLMModel, error) {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, fmt.Errorf("model key is required")
	}
	if s.catalog == nil {
		return nil, fmt.Errorf("model catalog not loaded")
	}
	mdl, err := s.catalog.Resolve(modelID)
	if err != nil {
		return nil, err
	}
	return &mdl, nil
}
