package service

import (
	"context"
	"log/slog"

	"threads/internal/assets"
	"threads/internal/middleware"
	"threads/internal/models"
	"threads/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// uploadAsset stores payload on the asset host. Rejected payloads stay
// validation errors; every other failure becomes an internal error.
func uploadAsset(ctx context.Context, host assets.Host, payload string) (string, error) {
	span, ctx := observability.NewSpan(ctx, "assets.upload")
	defer span.End()

	url, err := host.Upload(ctx, payload)
	if err != nil {
		span.SetError(err)
		if models.IsCode(err, models.CodeValidation) {
			return "", err
		}
		observability.AssetHostFailures.WithLabelValues("upload").Inc()
		return "", models.NewInternalError(err)
	}
	span.AddAttributes(attribute.String("asset.url", url))
	return url, nil
}

// destroyAsset removes url from the asset host. Failures are logged and
// counted, never returned.
func destroyAsset(ctx context.Context, host assets.Host, url string) {
	if url == "" {
		return
	}
	span, ctx := observability.NewSpan(ctx, "assets.destroy", attribute.String("asset.url", url))
	defer span.End()

	if err := host.Destroy(ctx, url); err != nil {
		span.SetError(err)
		observability.AssetHostFailures.WithLabelValues("destroy").Inc()
		middleware.Logger.WarnContext(ctx, "failed to destroy hosted asset",
			slog.String("url", url), slog.String("error", err.Error()))
	}
}
