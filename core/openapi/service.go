package openapi

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
	"github.com/swaggo/swag"
)

// InstanceName is the swag registry name the Swagger UI reads from.
const InstanceName = "hyperapi"

// Service serves the generated spec. The router and registry are immutable
// once composed, so the document is rendered once and cached.
type Service struct {
	gen    *Generator
	logger zerolog.Logger

	once sync.Once
	doc  []byte
	err  error
}

// NewService creates a spec service around gen.
func NewService(gen *Generator, logger zerolog.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// JSON returns the rendered spec.
func (s *Service) JSON() ([]byte, error) {
	s.once.Do(func() {
		s.doc, s.err = json.MarshalIndent(s.gen.Generate(), "", "  ")
		if s.err != nil {
			s.logger.Error().Err(s.err).Msg("failed to render OpenAPI spec")
			return
		}
		s.logger.Debug().Int("bytes", len(s.doc)).Msg("OpenAPI spec rendered")
	})
	return s.doc, s.err
}

// ReadDoc implements swag.Swagger.
func (s *Service) ReadDoc() string {
	doc, err := s.JSON()
	if err != nil {
		return "{}"
	}
	return string(doc)
}

// Register publishes the service in the swag registry under InstanceName.
// Registering twice keeps the first service.
func (s *Service) Register() {
	if swag.GetSwagger(InstanceName) != nil {
		s.logger.Debug().Str("instance", InstanceName).Msg("swagger instance already registered")
		return
	}
	swag.Register(InstanceName, s)
}
