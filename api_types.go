package main

// InitRequest is the payload for /api/init.
// LayerSizes is [inputs, hidden..., outputs]; Seed makes parameter
// initialization reproducible.
type InitRequest struct {
	LayerSizes   []int   `json:"layer_sizes"`
	Activation   string  `json:"activation"`
	Seed         int64   `json:"seed"`
	LearningRate float64 `json:"learning_rate"`
}

// InitResponse reports the freshly built network.
type InitResponse struct {
	Status     string `json:"status"`
	Params     int    `json:"params"`
	Activation string `json:"activation"`
}

// TrainRequest controls how much work /api/train performs in one call.
//
// Steps is optional; the server uses a safe default when omitted.
type TrainRequest struct {
	Samples []Sample `json:"samples"`
	Steps   int      `json:"steps"`
}

// TrainResponse reports a training run summary.
type TrainResponse struct {
	Steps     int       `json:"steps"`
	Losses    []float64 `json:"losses"`
	FinalLoss float64   `json:"final_loss"`
}

// PredictRequest is one input vector for /api/predict.
type PredictRequest struct {
	Inputs []float64 `json:"inputs"`
}

// PredictResponse carries the network outputs.
type PredictResponse struct {
	Outputs []float64 `json:"outputs"`
}

// ParamInfo is one parameter leaf's current state.
type ParamInfo struct {
	Value float64 `json:"value"`
	Grad  float64 `json:"grad"`
}

// InspectResponse is returned by /api/inspect: node counts by role over the
// last training loss graph, plus every parameter's value and gradient.
type InspectResponse struct {
	RoleCounts map[string]int `json:"role_counts"`
	Parameters []ParamInfo    `json:"parameters"`
}
