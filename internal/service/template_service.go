package service

import (
	"fmt"

	"go.uber.org/zap"

	"saga-server/internal/catalog"
	"saga-server/internal/models"
)

// TemplateService exposes the read-only template catalog to the route
// layer.
type TemplateService struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewTemplateService(c *catalog.Catalog, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		catalog: c,
		logger:  logger.Named("TemplateService"),
	}
}

// ListTemplates returns every template in the catalog.
func (s *TemplateService) ListTemplates() []models.StoryTemplate {
	return s.catalog.GetAll()
}

// GetTemplate returns one template by id.
func (s *TemplateService) GetTemplate(id string) (*models.StoryTemplate, error) {
	tpl := s.catalog.GetByID(id)
	if tpl == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTemplateNotFound, id)
	}
	return tpl, nil
}

// GetTemplatesForUser returns templates matching the filter. An empty
// result is a valid answer, never an error.
func (s *TemplateService) GetTemplatesForUser(filter catalog.Filter) []models.StoryTemplate {
	return s.catalog.GetForUser(filter)
}

// GetRecommendedTemplates returns the editorial recommendation list.
func (s *TemplateService) GetRecommendedTemplates() []models.StoryTemplate {
	return s.catalog.GetRecommended()
}

// CatalogVersion reports the embedded catalog data version.
func (s *TemplateService) CatalogVersion() int {
	return s.catalog.Version()
}
