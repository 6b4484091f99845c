// Package engine sequences one event through the reconciliation pipeline:
// filter, identity resolution, control-plane lookup, tag reconcile, tag merge.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/cloudstamp/pkg/engine/azure"
	"github.com/DrSkyle/cloudstamp/pkg/engine/event"
	"github.com/DrSkyle/cloudstamp/pkg/engine/filter"
	"github.com/DrSkyle/cloudstamp/pkg/engine/identity"
	"github.com/DrSkyle/cloudstamp/pkg/engine/notifier"
	"github.com/DrSkyle/cloudstamp/pkg/engine/tags"
)

// Result classifies an invocation's outcome.
type Result string

const (
	// ResultSkipped: the event did not qualify; no write happened.
	ResultSkipped Result = "skipped"
	// ResultClaimed: first qualifying event; all five provenance tags written.
	ResultClaimed Result = "claimed"
	// ResultUpdated: already-claimed resource; mutable tags refreshed.
	ResultUpdated Result = "updated"
	// ResultFailed: a gateway call failed; the delivery layer should retry.
	ResultFailed Result = "failed"
)

// Engine is the per-invocation orchestrator. Stateless between invocations;
// the tag store on the resource is the only state it touches.
type Engine struct {
	Gateway  azure.TagGateway
	Filter   *filter.Filter
	Rules    *filter.RuleSet
	Notifier *notifier.SlackClient
	Logger   *slog.Logger
	Tracer   trace.Tracer

	// now is injectable for deterministic tests.
	now func() time.Time
}

// Option defines a functional configuration override.
type Option func(*Engine)

// New initializes the engine with safe defaults.
func New(gw azure.TagGateway, f *filter.Filter, opts ...Option) *Engine {
	e := &Engine{
		Gateway: gw,
		Filter:  f,
		Logger:  slog.Default(),
		Tracer:  otel.Tracer("cloudstamp/engine"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithRules sets the compiled skip rules.
func WithRules(rs *filter.RuleSet) Option {
	return func(e *Engine) {
		e.Rules = rs
	}
}

// WithNotifier sets the first-claim notifier.
func WithNotifier(n *notifier.SlackClient) Option {
	return func(e *Engine) {
		e.Notifier = n
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Process runs one change event through the pipeline. Skips return
// (ResultSkipped, nil): a non-qualifying event is a successful invocation.
// Errors are returned only for gateway failures, where redelivery is the
// recovery path; reprocessing is idempotent because the claimed branch never
// rewrites immutable tags and duplicate patches carry identical values.
func (e *Engine) Process(ctx context.Context, ev event.ChangeEvent) (Result, error) {
	ctx, span := e.Tracer.Start(ctx, "Engine.Process", trace.WithAttributes(
		attribute.String("resource.id", ev.ResourceID),
		attribute.String("event.operation", ev.Operation),
		attribute.String("event.principal_type", string(ev.Principal)),
	))
	defer span.End()

	if v := e.Filter.PreScreen(ev); !v.Process {
		return e.skip(span, ev, v.Reason), nil
	}
	if ruleID := e.Rules.Match(ev); ruleID != "" {
		return e.skip(span, ev, filter.ReasonSkipRule+": "+ruleID), nil
	}

	desc, err := e.Gateway.Describe(ctx, ev.ResourceID)
	if err != nil {
		if errors.Is(err, azure.ErrNotFound) {
			// Deleted between event emission and now. Nothing to stamp.
			return e.skip(span, ev, "resource not found"), nil
		}
		return e.fail(span, ev, err)
	}
	span.SetAttributes(attribute.String("resource.type", desc.Type))

	if v := e.Filter.AllowsType(desc.Type); !v.Process {
		return e.skip(span, ev, v.Reason), nil
	}

	actor := identity.ResolveActor(ev.Claims, ev.Principal)

	current, err := e.Gateway.GetTags(ctx, ev.ResourceID)
	if err != nil {
		return e.fail(span, ev, err)
	}

	now := e.now()
	patch, firstClaim := tags.Reconcile(current, actor, now)

	if err := e.Gateway.MergeTags(ctx, ev.ResourceID, patch); err != nil {
		return e.fail(span, ev, err)
	}

	result := ResultUpdated
	if firstClaim {
		result = ResultClaimed
		e.notifyClaim(desc, actor, now)
	}

	span.SetAttributes(attribute.String("result", string(result)))
	e.Logger.Info("Stamped resource",
		"resource", ev.ResourceID,
		"type", desc.Type,
		"actor", actor,
		"result", string(result),
	)
	return result, nil
}

func (e *Engine) skip(span trace.Span, ev event.ChangeEvent, reason string) Result {
	span.SetAttributes(attribute.String("skip.reason", reason))
	e.Logger.Info("Skipping event", "resource", ev.ResourceID, "operation", ev.Operation, "reason", reason)
	return ResultSkipped
}

func (e *Engine) fail(span trace.Span, ev event.ChangeEvent, err error) (Result, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.Logger.Error("Reconciliation failed", "resource", ev.ResourceID, "error", err)
	return ResultFailed, err
}

// notifyClaim is best-effort: a lost notification never fails the invocation.
func (e *Engine) notifyClaim(desc azure.ResourceDescriptor, actor string, now time.Time) {
	if e.Notifier == nil {
		return
	}
	err := e.Notifier.SendClaim(notifier.Claim{
		ResourceID:   desc.ID,
		ResourceType: desc.Type,
		Actor:        actor,
		Date:         tags.FormatDate(now),
	})
	if err != nil {
		e.Logger.Warn("Claim notification failed", "resource", desc.ID, "error", err)
	}
}
