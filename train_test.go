package main

import (
	"math/rand"
	"testing"
)

func TestMSELossValue(t *testing.T) {
	preds := []*Value{NewValue(2), NewValue(-1)}
	loss, err := MSELoss(preds, []float64{1, 1})
	if err != nil {
		t.Fatalf("MSELoss: %v", err)
	}
	// (2-1)^2 + (-1-1)^2 = 5
	if loss.Data != 5 {
		t.Errorf("expected loss 5, got %f", loss.Data)
	}
	if loss.Role != RoleOutput {
		t.Errorf("loss root should carry RoleOutput")
	}
}

func TestMSELossGradient(t *testing.T) {
	p := NewValue(3)
	loss, err := MSELoss([]*Value{p}, []float64{1})
	if err != nil {
		t.Fatalf("MSELoss: %v", err)
	}
	loss.Backward()
	// d/dp (p-1)^2 = 2(p-1) = 4
	if p.Grad != 4 {
		t.Errorf("expected grad 4, got %f", p.Grad)
	}
}

func TestMSELossMismatch(t *testing.T) {
	if _, err := MSELoss([]*Value{NewValue(1)}, []float64{1, 2}); err == nil {
		t.Error("prediction/target length mismatch should fail fast")
	}
	if _, err := MSELoss(nil, nil); err == nil {
		t.Error("empty loss should fail fast")
	}
}

func TestSGDStep(t *testing.T) {
	p := NewLeaf(1.0, RoleParameter)
	p.Grad = 0.5
	SGDStep([]*Value{p}, 0.1)
	if p.Grad != 0.5 {
		t.Errorf("SGD must not touch gradients, got %f", p.Grad)
	}
	if p.Data != 1.0-0.1*0.5 {
		t.Errorf("expected data %f, got %f", 1.0-0.1*0.5, p.Data)
	}
}

func TestNewTrainerValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, _ := NewMLP(rng, 1, []int{1}, ActTanh)
	if _, err := NewTrainer(nil, 0.1); err == nil {
		t.Error("nil network should be rejected")
	}
	if _, err := NewTrainer(net, 0); err == nil {
		t.Error("non-positive learning rate should be rejected")
	}
	if _, err := NewTrainer(net, -1); err == nil {
		t.Error("negative learning rate should be rejected")
	}
}

func TestTrainerEmptyBatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, _ := NewMLP(rng, 1, []int{1}, ActTanh)
	trainer, _ := NewTrainer(net, 0.1)
	if _, _, err := trainer.Step(nil); err == nil {
		t.Error("empty batch should fail fast")
	}
}

// Parameter leaves are shared across the samples of one batch, so the batch
// gradient must equal the sum of the per-sample gradients.
func TestBatchGradientIsSumOfSampleGradients(t *testing.T) {
	samples := []Sample{
		{Inputs: []float64{1, 2}, Targets: []float64{1}},
		{Inputs: []float64{-1, 0.5}, Targets: []float64{-1}},
	}

	build := func() *MLP {
		rng := rand.New(rand.NewSource(42))
		net, _ := NewMLP(rng, 2, []int{3, 1}, ActTanh)
		return net
	}

	// Per-sample gradients, measured one at a time on an identical network.
	perSample := make([][]float64, len(samples))
	for si, s := range samples {
		net := build()
		preds, err := net.Forward(s.Inputs)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		loss, err := MSELoss(preds, s.Targets)
		if err != nil {
			t.Fatalf("MSELoss: %v", err)
		}
		loss.Backward()
		grads := []float64{}
		for _, p := range net.Parameters() {
			grads = append(grads, p.Grad)
		}
		perSample[si] = grads
	}

	// Batched: both samples backward onto the same parameters.
	net := build()
	for _, s := range samples {
		preds, _ := net.Forward(s.Inputs)
		loss, _ := MSELoss(preds, s.Targets)
		loss.Backward()
	}
	for i, p := range net.Parameters() {
		want := perSample[0][i] + perSample[1][i]
		if diff := p.Grad - want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("param %d: batch grad %f, want sum %f", i, p.Grad, want)
		}
	}
}

func TestTrainerLossDecreases(t *testing.T) {
	rng := rand.New(rand.NewSource(1337))
	net, err := NewMLP(rng, 3, []int{4, 4, 1}, ActTanh)
	if err != nil {
		t.Fatalf("NewMLP: %v", err)
	}
	trainer, err := NewTrainer(net, 0.05)
	if err != nil {
		t.Fatalf("NewTrainer: %v", err)
	}

	losses, root, err := trainer.Run(demoSamples(), 50)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(losses) != 50 {
		t.Fatalf("expected 50 loss entries, got %d", len(losses))
	}
	if losses[len(losses)-1] >= losses[0] {
		t.Errorf("loss should decrease: first %f, last %f", losses[0], losses[len(losses)-1])
	}
	if root == nil {
		t.Fatal("Run should return the last loss root")
	}

	counts := RoleCounts(root)
	if counts[RoleParameter] != len(net.Parameters()) {
		t.Errorf("loss graph should reach all %d parameters, got %d",
			len(net.Parameters()), counts[RoleParameter])
	}
	if counts[RoleInput] != 3 {
		t.Errorf("one sample's graph should hold 3 input leaves, got %d", counts[RoleInput])
	}
}

func TestTrainerStepZerosBeforeAccumulating(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	net, _ := NewMLP(rng, 1, []int{1}, ActTanh)
	trainer, _ := NewTrainer(net, 0.01)
	samples := []Sample{{Inputs: []float64{1}, Targets: []float64{0.5}}}

	// Poison the gradients; Step must reset them before its backward pass.
	for _, p := range net.Parameters() {
		p.Grad = 1e6
	}
	if _, _, err := trainer.Step(samples); err != nil {
		t.Fatalf("Step: %v", err)
	}
	for i, p := range net.Parameters() {
		if p.Grad >= 1e6 {
			t.Errorf("param %d grad was not reset before accumulation: %f", i, p.Grad)
		}
	}
}

func TestTrainerRunValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	net, _ := NewMLP(rng, 1, []int{1}, ActTanh)
	trainer, _ := NewTrainer(net, 0.1)
	if _, _, err := trainer.Run(demoSamples(), 0); err == nil {
		t.Error("non-positive step count should fail fast")
	}
}
