package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// FluctuatorRecord is the serializable state of one adaptive parameter.
type FluctuatorRecord struct {
	Center    float64 `json:"center"`
	Amplitude float64 `json:"amplitude"`
	Period    float64 `json:"period"`
	Time      float64 `json:"time"`
}

// NetworkRecord is the serializable state of a reinforcement-adaptive network:
// the full Fluctuator set, not just the centers, so a restored network resumes
// its search where it left off.
type NetworkRecord struct {
	VersionedRecord
	ID            string               `json:"id"`
	Nodes         int                  `json:"nodes"`
	Activation    string               `json:"activation"`
	Biases        []FluctuatorRecord   `json:"biases"`
	TimeConstants []FluctuatorRecord   `json:"time_constants"`
	Weights       [][]FluctuatorRecord `json:"weights"`
}

type RunRecord struct {
	VersionedRecord
	ID             string  `json:"id"`
	Scape          string  `json:"scape"`
	NetworkID      string  `json:"network_id"`
	Nodes          int     `json:"nodes"`
	Episodes       int     `json:"episodes"`
	Steps          int     `json:"steps"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers"`
	BestMeanReward float64 `json:"best_mean_reward"`
	GoalReached    bool    `json:"goal_reached"`
	CreatedAt      string  `json:"created_at_utc"`
}

// EpisodeDiagnostics summarizes one training episode: the reward the network
// earned and how far its exploration has annealed.
type EpisodeDiagnostics struct {
	Episode       int     `json:"episode"`
	Steps         int     `json:"steps"`
	MeanReward    float64 `json:"mean_reward"`
	MinReward     float64 `json:"min_reward"`
	MaxReward     float64 `json:"max_reward"`
	MeanAmplitude float64 `json:"mean_amplitude"`
}

type ScapeSummary struct {
	VersionedRecord
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	BestMeanReward float64 `json:"best_mean_reward"`
}
