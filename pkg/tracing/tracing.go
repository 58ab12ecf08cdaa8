package tracing

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

var Tracer = otel.Tracer("tutorhub-assignments")

// 作业相关的 span 属性
const (
	AssignmentIDKey = attribute.Key("assignment.id")
	AttemptIDKey    = attribute.Key("assignment.attempt_id")
	OutcomeKey      = attribute.Key("assignment.outcome")
)

func InitTracer(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp, nil
}

// StartAssignmentSpan starts a child span tagged with the assignment it works on.
func StartAssignmentSpan(ctx context.Context, name, assignmentID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, AssignmentIDKey.String(assignmentID))
	return Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// TagAssignment adds the assignment id to the span already carried by ctx,
// for spans started before the token was resolved.
func TagAssignment(ctx context.Context, assignmentID string) {
	trace.SpanFromContext(ctx).SetAttributes(AssignmentIDKey.String(assignmentID))
}

// GinMiddleware names spans after the matched route so share tokens and ids
// stay out of span names.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := Tracer.Start(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
