package sequence

import (
	"context"
	"log/slog"

	"kiln/internal/convert"
	"kiln/internal/logging"
	"kiln/internal/services"
)

// ExportBatch converts each source file to the target described by template,
// substituting every source's frame number. A frame-bearing source paired
// with a template that has no frame token is a configuration error: the
// frame would land on the literal template path and overwrite whatever
// sibling frames produce there. Sources without a frame number pass through
// to the literal template path unchanged. Individual conversion failures are
// logged and skipped; the returned slice holds only the targets that were
// actually produced.
func ExportBatch(ctx context.Context, logger *slog.Logger, client convert.Client, sources []string, template string) ([]string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(sources) == 0 {
		return nil, nil
	}

	targets := make([]string, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return targets, err
		}
		target := template
		if frame, ok := FrameNumber(source); ok {
			if !HasFrameToken(template) {
				return nil, services.Wrap(services.ErrConfiguration, "export", "sequence",
					source+" carries a frame number but target template "+template+" has no frame token", nil)
			}
			target = PathForFrame(template, frame)
		}

		if err := client.Convert(ctx, source, target); err != nil {
			logger.Warn(
				"conversion failed, skipping frame",
				logging.String("source_file", source),
				logging.String("target_file", target),
				logging.Error(err),
			)
			continue
		}
		targets = append(targets, target)
	}
	return targets, nil
}
