package sqlgen

// Default generation models.
const (
	DefaultModel   = "gpt-4o"
	ReasoningModel = "o4-mini"
)

// Router picks the generation model from query complexity. Two- and
// three-table questions go to the reasoning model; everything else goes to the
// default model.
type Router struct {
	DefaultModel   string
	ReasoningModel string
}

// NewRouter creates a router, filling empty model names with the defaults.
func NewRouter(defaultModel, reasoningModel string) Router {
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	if reasoningModel == "" {
		reasoningModel = ReasoningModel
	}
	return Router{DefaultModel: defaultModel, ReasoningModel: reasoningModel}
}

// Route returns the model for a question touching tableCount tables.
func (r Router) Route(tableCount int) string {
	if tableCount >= 2 && tableCount <= 3 {
		return r.ReasoningModel
	}
	return r.DefaultModel
}
