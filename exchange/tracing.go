package exchange

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"go-moneta"
)

// Span attributes recorded by the tracing Service.
const (
	AttrBase     = "moneta.base"
	AttrTerm     = "moneta.term"
	AttrProvider = "moneta.provider"
	AttrFactor   = "moneta.factor"
)

// tracingService decorates an exchange.Service with spans
type tracingService struct {
	tracer trace.Tracer
	next   Service
}

// NewTracingService returns a Service recording a span per rate lookup and
// conversion. A nil tracer returns s unchanged.
func NewTracingService(tracer trace.Tracer, s Service) Service {
	if tracer == nil {
		return s
	}
	return &tracingService{
		tracer: tracer,
		next:   s,
	}
}

func (s *tracingService) Rate(ctx context.Context, q moneta.ConversionQuery) (moneta.ExchangeRate, error) {
	ctx, span := s.tracer.Start(ctx, "exchange.rate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(queryAttributes(q)...)

	rate, err := s.next.Rate(ctx, q)
	record(span, rate, err)
	return rate, err
}

func (s *tracingService) Convert(ctx context.Context, amount moneta.MonetaryAmount, term moneta.CurrencyUnit, providers ...string) (moneta.Exchanged, error) {
	ctx, span := s.tracer.Start(ctx, "exchange.convert", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	if amount != nil && amount.Currency() != nil {
		span.SetAttributes(attribute.String(AttrBase, amount.Currency().CurrencyCode()))
	}
	if term != nil {
		span.SetAttributes(attribute.String(AttrTerm, term.CurrencyCode()))
	}

	ex, err := s.next.Convert(ctx, amount, term, providers...)
	record(span, ex.Rate, err)
	return ex, err
}

func (s *tracingService) IsAvailable(ctx context.Context, q moneta.ConversionQuery) bool {
	return s.next.IsAvailable(ctx, q)
}

func (s *tracingService) ProviderNames() []string {
	return s.next.ProviderNames()
}

func (s *tracingService) DefaultProviderChain() []string {
	return s.next.DefaultProviderChain()
}

func queryAttributes(q moneta.ConversionQuery) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if base, ok := q.BaseCurrency(); ok {
		attrs = append(attrs, attribute.String(AttrBase, base.CurrencyCode()))
	}
	if term, ok := q.TermCurrency(); ok {
		attrs = append(attrs, attribute.String(AttrTerm, term.CurrencyCode()))
	}
	return attrs
}

func record(span trace.Span, rate moneta.ExchangeRate, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String(AttrProvider, rate.Context().ProviderName()),
		attribute.String(AttrFactor, rate.Factor().String()),
	)
	span.SetStatus(codes.Ok, "")
}
