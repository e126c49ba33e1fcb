package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline stage names.
const (
	StageClassify = "classify"
	StageExtract  = "extract"
	StageRetrieve = "retrieve"
	StageGenerate = "generate"
	StageExecute  = "execute"
	StageInsight  = "insight"
)

var (
	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nl2sql_stage_duration_seconds",
			Help:    "Pipeline stage latency.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	modelInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_model_invocations_total",
			Help: "Total number of model invocations by model and outcome.",
		},
		[]string{"model", "outcome"},
	)
	intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_intents_total",
			Help: "Classified questions by intent.",
		},
		[]string{"intent"},
	)
	retrievedExamples = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nl2sql_retrieved_examples",
			Help:    "Number of examples injected into a generation prompt.",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)
	generatedSQLTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_generated_sql_total",
			Help: "Generated statements by routed model.",
		},
		[]string{"model"},
	)
	insightTemplatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nl2sql_insight_templates_total",
			Help: "Insight prompts by template.",
		},
		[]string{"template"},
	)
)

func init() {
	prometheus.MustRegister(
		stageDurationSeconds,
		modelInvocationsTotal,
		intentsTotal,
		retrievedExamples,
		generatedSQLTotal,
		insightTemplatesTotal,
	)
}

// ObserveStage records the latency of one pipeline stage.
func ObserveStage(stage string, elapsed time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// IncrementModelInvocation counts one model call. outcome is "ok" or an
// llm error type.
func IncrementModelInvocation(model, outcome string) {
	modelInvocationsTotal.WithLabelValues(model, outcome).Inc()
}

func IncrementIntent(intent string) {
	intentsTotal.WithLabelValues(intent).Inc()
}

func ObserveRetrievedExamples(n int) {
	retrievedExamples.Observe(float64(n))
}

func IncrementGeneratedSQL(model string) {
	generatedSQLTotal.WithLabelValues(model).Inc()
}

func IncrementInsightTemplate(template string) {
	insightTemplatesTotal.WithLabelValues(template).Inc()
}
