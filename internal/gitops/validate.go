package gitops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gen3utils/internal/diagnostic"
	"gen3utils/internal/dictionary"
	"gen3utils/internal/document"
	"gen3utils/internal/mapping"
)

var (
	// ErrSyntax is returned when a required gitops field is missing.
	ErrSyntax = errors.New("gitops failed to validate due to syntax error")
	// ErrDictionary is returned when gitops names nodes the dictionary lacks.
	ErrDictionary = errors.New("gitops validation against the dictionary failed")
)

// Validate runs the syntax, dictionary and ETL stages against cfg. The
// returned diagnostics come from the ETL stage only; the first two stages
// report through the error, as does a mapping document without "mappings".
func Validate(ctx context.Context, log *slog.Logger, graph *dictionary.Graph, mappingDoc, cfg document.Value) (diagnostic.Diagnostics, error) {
	var out diagnostic.Diagnostics

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if graph == nil {
		return out, errors.New("dictionary graph is nil")
	}

	if d := ValidateSyntax(cfg); d != nil {
		return out, fmt.Errorf("%w: %s", ErrSyntax, d)
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	if failures := ValidateAgainstDictionary(cfg, graph); len(failures) > 0 {
		for _, f := range failures {
			log.Error(f)
		}

		return out, fmt.Errorf("%w: %d node(s) not found", ErrDictionary, len(failures))
	}

	log.Debug("gitops syntax and dictionary checks passed")

	if _, err := mapping.Mappings(mappingDoc); err != nil {
		return out, err
	}

	out.Add(ValidateAgainstETL(cfg, mapping.PropertyMap(mappingDoc))...)

	return out, nil
}
