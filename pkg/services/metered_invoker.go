package services

import (
	"context"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/llm"
	"github.com/ekaya-inc/ekaya-nl2sql/pkg/observability"
)

// MeteredInvoker counts model invocations by model and outcome.
type MeteredInvoker struct {
	inner llm.Invoker
}

var _ llm.Invoker = (*MeteredInvoker)(nil)

// NewMeteredInvoker wraps inner with invocation metrics.
func NewMeteredInvoker(inner llm.Invoker) *MeteredInvoker {
	return &MeteredInvoker{inner: inner}
}

func (m *MeteredInvoker) Invoke(ctx context.Context, spec llm.PromptSpec) (string, error) {
	out, err := m.inner.Invoke(ctx, spec)
	outcome := "ok"
	if err != nil {
		outcome = string(llm.GetErrorType(err))
	}
	observability.IncrementModelInvocation(spec.Model, outcome)
	return out, err
}

func (m *MeteredInvoker) Provider() string {
	return m.inner.Provider()
}
