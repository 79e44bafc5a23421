package observability

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		NewHTTPMetrics,
		NewTracerProvider,
	),
	fx.Invoke(func(_ trace.TracerProvider) {}),
)
