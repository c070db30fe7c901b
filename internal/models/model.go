package models

type Model interface {
	Fit(instances []Instance) error
	Predict(instances []UnlabeledInstance) ([]Prediction, error)
	GetName() string
	GetParams() map[string]any
	Reset()
}

type BaseModel struct {
	Name   string
	Params map[string]any
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

// DecisionTree wraps Builder and the tree it produced behind Model.
type DecisionTree struct {
	BaseModel
	Builder Builder
	Tree    *Tree
}

func NewDecisionTree(builder Builder) *DecisionTree {
	attrs := builder.Attributes
	if len(attrs) == 0 {
		attrs = ContinuousAttributes()
	}
	names := make([]string, len(attrs))
	for i, a := range attrs {
		names[i] = a.Key()
	}

	return &DecisionTree{
		Builder: builder,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"ranking":    builder.Ranking.String(),
				"attributes": names,
			},
		},
	}
}

func (dt *DecisionTree) Fit(instances []Instance) error {
	tree, err := dt.Builder.Build(instances)
	if err != nil {
		return err
	}
	dt.Tree = tree
	return nil
}

// Predict classifies every instance in order. The first malformed-tree
// error aborts the whole batch.
func (dt *DecisionTree) Predict(instances []UnlabeledInstance) ([]Prediction, error) {
	predictions := make([]Prediction, 0, len(instances))
	for _, inst := range instances {
		p, err := Classify(dt.Tree, inst)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

func (dt *DecisionTree) Reset() {
	dt.Tree = nil
}
