package model

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CurrentVersion stamps a record with the active schema and codec versions.
func CurrentVersion() VersionedRecord {
	return VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

// NodeKind is the tagged node type of a GNP graph node.
type NodeKind string

const (
	KindStart      NodeKind = "start"
	KindJudgment   NodeKind = "judgment"
	KindProcessing NodeKind = "processing"
)

// Node is the snapshot form of a single graph node.
type Node struct {
	ID             int       `json:"id"`
	Kind           NodeKind  `json:"kind"`
	Function       int       `json:"function"`
	Edges          []int     `json:"edges"`
	Boundaries     []float64 `json:"boundaries,omitempty"`
	ProductionRule []float64 `json:"production_rule,omitempty"`
	K              int       `json:"k,omitempty"`
	D              int       `json:"d,omitempty"`
	Used           bool      `json:"used"`
}

// Network is the snapshot form of one individual.
type Network struct {
	VersionedRecord
	ID              string  `json:"id"`
	JudgmentCount   int     `json:"judgment_count"`
	JudgmentFuncs   int     `json:"judgment_funcs"`
	ProcessingCount int     `json:"processing_count"`
	ProcessingFuncs int     `json:"processing_funcs"`
	FractalJudgment bool    `json:"fractal_judgment"`
	Start           Node    `json:"start"`
	Inner           []Node  `json:"inner"`
	Fitness         float64 `json:"fitness"`
	Invalid         bool    `json:"invalid"`
	Decisions       []int   `json:"decisions,omitempty"`
}

// Population is the snapshot form of a whole population.
type Population struct {
	VersionedRecord
	ID          string    `json:"id"`
	Size        int       `json:"size"`
	BestFitness float64   `json:"best_fitness"`
	MeanFitness float64   `json:"mean_fitness"`
	MinFitness  float64   `json:"min_fitness"`
	EliteIDs    []int     `json:"elite_ids,omitempty"`
	Individuals []Network `json:"individuals"`
}

// GenerationDiagnostics is one row of per-generation statistics.
type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	MeanSize    float64 `json:"mean_size"`
	LargestSize int     `json:"largest_size"`
}

// RunRecord summarizes one completed engine run for listings.
type RunRecord struct {
	VersionedRecord
	RunID        string  `json:"run_id"`
	CreatedAtUTC string  `json:"created_at_utc"`
	Scape        string  `json:"scape"`
	Seed         int64   `json:"seed"`
	Population   int     `json:"population"`
	Generations  int     `json:"generations"`
	BestFitness  float64 `json:"best_fitness"`
}
