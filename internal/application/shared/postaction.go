// Package shared holds application helpers used by several services.
package shared

import (
	"context"

	"github.com/retail/storefront/internal/infrastructure/logger"
	"github.com/retail/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PostAction is a follow-up step whose failure must not change the outcome
// of the primary action that preceded it.
type PostAction struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outcome records how one post-action went
type Outcome struct {
	Name string
	Err  error
}

// Failed reports whether the action returned an error
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// FailureObserver is told about every failed post-action
type FailureObserver interface {
	ObservePostActionFailure(action string)
}

// RunBestEffort runs the actions in order. Failures are logged and counted,
// never returned, and never stop the remaining actions.
func RunBestEffort(ctx context.Context, observer FailureObserver, actions ...PostAction) []Outcome {
	outcomes := make([]Outcome, 0, len(actions))
	for _, action := range actions {
		err := action.Run(ctx)
		outcomes = append(outcomes, Outcome{Name: action.Name, Err: err})
		if err == nil {
			continue
		}
		logger.L(ctx).Warn("Best-effort action failed",
			zap.String("action", action.Name),
			zap.Error(err),
		)
		telemetry.AddEvent(trace.SpanFromContext(ctx), telemetry.EventPostActionFailed,
			telemetry.SpanAttrAction, action.Name)
		if observer != nil {
			observer.ObservePostActionFailure(action.Name)
		}
	}
	return outcomes
}
