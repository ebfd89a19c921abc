package model

// Operation is the high-level intent attached to a request context.
type Operation string

const (
	OpCreate  Operation = "create"
	OpModify  Operation = "modify"
	OpMerge   Operation = "merge"
	OpAnalyze Operation = "analyze"
	OpExtract Operation = "extract"
	OpSelect  Operation = "select"
)

// DataFilter is a field/operator/value predicate passed to the model.
type DataFilter struct {
	Field    string `json:"field" yaml:"field"`
	Operator string `json:"operator" yaml:"operator"`
	Value    any    `json:"value" yaml:"value"`
}

// ModificationAction names what a ModificationInstruction does to its target.
type ModificationAction string

const (
	ActionUpdate    ModificationAction = "update"
	ActionDelete    ModificationAction = "delete"
	ActionMerge     ModificationAction = "merge"
	ActionAppend    ModificationAction = "append"
	ActionReplace   ModificationAction = "replace"
	ActionTransform ModificationAction = "transform"
)

type ModificationInstruction struct {
	Action      ModificationAction `json:"action" yaml:"action"`
	Target      string             `json:"target" yaml:"target"`
	Value       any                `json:"value,omitempty" yaml:"value,omitempty"`
	TransformFn string             `json:"transform_fn,omitempty" yaml:"transform_fn,omitempty"`
	Conditions  []DataFilter       `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// MergeStrategy controls how MergeEntities resolves conflicts.
type MergeStrategy string

const (
	MergePreferPrimary   MergeStrategy = "prefer_primary"
	MergePreferSecondary MergeStrategy = "prefer_secondary"
	MergePreferNewer     MergeStrategy = "prefer_newer"
	MergeAll             MergeStrategy = "merge_all"
)

// DataContext describes what the current request is about. It shapes the
// prompts built for recognition and modification.
type DataContext struct {
	Operation    Operation
	EntityType   string
	ExistingData any
	Filters      []DataFilter
	SearchTerms  []string
	Priority     Level
}
