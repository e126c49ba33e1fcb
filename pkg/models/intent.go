package models

// Intent is the coarse analytical shape of a question.
type Intent string

const (
	IntentList       Intent = "list"
	IntentAggregate  Intent = "aggregate"
	IntentTimeSeries Intent = "timeseries"
)

// String returns the intent value as shown to the extraction model.
func (i Intent) String() string {
	return string(i)
}
