package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-nl2sql/pkg/models"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "list top 5 providers", Normalize("  List TOP 5 Providers \n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     models.Intent
	}{
		{"aggregate top", "list top 5 providers by total_claim_charge in 2023", models.IntentAggregate},
		{"aggregate average", "average paid amount for cpt 99213", models.IntentAggregate},
		{"aggregate max", "max claim charge", models.IntentAggregate},
		{"aggregate substring", "minimum age of patients", models.IntentAggregate},
		{"time series trend", "claims trend for 2022", models.IntentTimeSeries},
		{"time series per month", "claims per month in ohio", models.IntentTimeSeries},
		{"time series over time", "payments over time", models.IntentTimeSeries},
		{"time series per year", "new patients per year", models.IntentTimeSeries},
		{"list default", "list providers in texas", models.IntentList},
		{"empty", "", models.IntentList},
		{"aggregate wins over time series", "total claims per month", models.IntentAggregate},
		{"aggregate wins over trend", "trend of the max payment", models.IntentAggregate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.question))
		})
	}
}

func TestClassify_EveryKeyword(t *testing.T) {
	for _, w := range aggregateKeywords {
		assert.Equal(t, models.IntentAggregate, Classify("show "+w+" of claims"), w)
	}
	for _, w := range timeSeriesKeywords {
		assert.Equal(t, models.IntentTimeSeries, Classify("claims "+w), w)
		for _, agg := range aggregateKeywords {
			assert.Equal(t, models.IntentAggregate, Classify(agg+" claims "+w), agg+"+"+w)
		}
	}
}
