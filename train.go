package main

import "fmt"

// Sample is one training example: an input vector and the desired outputs.
type Sample struct {
	Inputs  []float64 `json:"inputs"`
	Targets []float64 `json:"targets"`
}

// MSELoss builds sum_i (pred_i - target_i)^2 out of engine operations, so
// the loss itself is a graph node and Backward can start from it.
//
// Subtraction is spelled pred + (-target): targets are constants, so folding
// the negation into the literal leaf stays inside the Add/Mul operator set.
func MSELoss(preds []*Value, targets []float64) (*Value, error) {
	if len(preds) != len(targets) {
		return nil, fmt.Errorf("loss needs %d targets for %d predictions", len(preds), len(targets))
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("loss needs at least one prediction")
	}
	loss := NewValue(0)
	for i, p := range preds {
		diff := p.Add(NewValue(-targets[i]))
		loss = loss.Add(diff.Mul(diff))
	}
	loss.Role = RoleOutput
	return loss, nil
}

// SGDStep applies one gradient-descent update: data -= lr * grad.
// It reads and writes the leaves directly; the engine never mutates Data.
func SGDStep(params []*Value, lr float64) {
	for _, p := range params {
		p.Data -= lr * p.Grad
	}
}

// Trainer runs gradient descent on a network. It owns the zero-grad reset
// and the update step; the engine only ever sees forward ops and Backward.
type Trainer struct {
	Net          *MLP
	LearningRate float64
}

func NewTrainer(net *MLP, lr float64) (*Trainer, error) {
	if net == nil {
		return nil, fmt.Errorf("trainer needs a network")
	}
	if lr <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", lr)
	}
	return &Trainer{Net: net, LearningRate: lr}, nil
}

// Step performs one optimization step over the whole batch:
// 1) clear parameter gradients,
// 2) for each sample, build a private forward graph and backpropagate its
//    loss — parameter leaves are shared across samples, so their gradients
//    accumulate additively, while inputs and intermediates are never shared,
// 3) apply one SGD update.
//
// It returns the summed batch loss and the last sample's loss root, which
// the server keeps around for graph introspection.
func (t *Trainer) Step(samples []Sample) (float64, *Value, error) {
	if len(samples) == 0 {
		return 0, nil, fmt.Errorf("training batch is empty")
	}

	t.Net.ZeroGrad()

	total := 0.0
	var lastRoot *Value
	for _, s := range samples {
		preds, err := t.Net.Forward(s.Inputs)
		if err != nil {
			return 0, nil, err
		}
		loss, err := MSELoss(preds, s.Targets)
		if err != nil {
			return 0, nil, err
		}
		loss.Backward()
		total += loss.Data
		lastRoot = loss
	}

	SGDStep(t.Net.Parameters(), t.LearningRate)
	return total, lastRoot, nil
}

// Run performs steps full-batch updates and returns the loss trajectory.
func (t *Trainer) Run(samples []Sample, steps int) ([]float64, *Value, error) {
	if steps <= 0 {
		return nil, nil, fmt.Errorf("step count must be positive, got %d", steps)
	}
	losses := make([]float64, 0, steps)
	var lastRoot *Value
	for i := 0; i < steps; i++ {
		loss, root, err := t.Step(samples)
		if err != nil {
			return nil, nil, err
		}
		losses = append(losses, loss)
		lastRoot = root
	}
	return losses, lastRoot, nil
}
