package constraint_gpt

import (
	"context"
	"strings"

	"github.com/turtacn/MatGen-Intelligence/internal/domain/material"
	"github.com/turtacn/MatGen-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MatGen-Intelligence/pkg/errors"
)

// Extractor converts a natural-language query into complete generation
// constraints.  Resolution order: model extraction, rule-based extraction,
// defaults for whatever remains unbound.
type Extractor struct {
	backend Backend
	logger  logging.Logger
}

// NewExtractor builds an extractor.  A nil backend is allowed and degrades
// to rule-based extraction only.
func NewExtractor(backend Backend, logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{backend: backend, logger: logger}
}

// ProcessQuery extracts constraints for query.  The result always bounds all
// three supported properties; an unreachable or unparsable model is not an
// error, only an empty query is.
func (e *Extractor) ProcessQuery(ctx context.Context, query string) (material.Constraints, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.ErrCodeAIInputInvalid, "query is empty")
	}
	e.logger.Info("processing constraint query", logging.String("query", query))

	var extracted material.Constraints
	if e.backend != nil {
		response, err := e.backend.Complete(ctx, BuildPrompt(query))
		if err != nil {
			e.logger.Warn("model extraction unavailable, falling back to rules",
				logging.Err(err))
		} else if c, ok := ExtractConstraints(response); ok {
			extracted = c
		} else {
			e.logger.Warn("model response not parsable, falling back to rules")
		}
	}

	if extracted == nil {
		extracted = RuleBasedConstraints(query)
	}

	final := PrepareConstraints(extracted)
	for _, name := range material.PropertyNames {
		if _, found := extracted[name]; found {
			e.logger.Info("using extracted constraint",
				logging.String("property", name),
				logging.Float64("min", final[name].Min),
				logging.Float64("max", final[name].Max))
		} else {
			e.logger.Info("property not found in query, using default range",
				logging.String("property", name))
		}
	}
	return final, nil
}
