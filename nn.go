package main

import (
	"fmt"
	"math/rand"
)

// The network layer composes engine operations only. It owns the parameter
// leaves, the zero-grad reset between optimization steps, and nothing else:
// values flow through Add/Mul/Tanh/Relu and come back out as *Value.

// Activation selects the nonlinearity applied by hidden neurons.
type Activation int

const (
	// ActNone leaves the weighted sum untouched (output layers).
	ActNone Activation = iota
	ActTanh
	ActRelu
)

// ParseActivation maps a config string to an Activation.
func ParseActivation(s string) (Activation, error) {
	switch s {
	case "", "tanh":
		return ActTanh, nil
	case "relu":
		return ActRelu, nil
	case "none", "linear":
		return ActNone, nil
	default:
		return ActNone, fmt.Errorf("unknown activation %q", s)
	}
}

func (a Activation) String() string {
	switch a {
	case ActTanh:
		return "tanh"
	case ActRelu:
		return "relu"
	default:
		return "none"
	}
}

// Neuron is one unit: nin weights, one bias, an activation.
type Neuron struct {
	W   []*Value
	B   *Value
	Act Activation
}

// NewNeuron initializes weights and bias uniformly in [-1, 1) from the
// provided generator, so runs seeded the same way are reproducible.
func NewNeuron(rng *rand.Rand, nin int, act Activation) (*Neuron, error) {
	if nin <= 0 {
		return nil, fmt.Errorf("neuron needs at least one input, got %d", nin)
	}
	w := make([]*Value, nin)
	for i := range w {
		w[i] = NewLeaf(rng.Float64()*2-1, RoleParameter)
	}
	return &Neuron{
		W:   w,
		B:   NewLeaf(rng.Float64()*2-1, RoleParameter),
		Act: act,
	}, nil
}

// Forward computes act(sum_i w_i*x_i + b), allocating fresh graph nodes.
func (n *Neuron) Forward(xs []*Value) (*Value, error) {
	if len(xs) != len(n.W) {
		return nil, fmt.Errorf("neuron expects %d inputs, got %d", len(n.W), len(xs))
	}
	sum := n.B
	for i, x := range xs {
		sum = sum.Add(n.W[i].Mul(x))
	}
	switch n.Act {
	case ActTanh:
		return sum.Tanh(), nil
	case ActRelu:
		return sum.Relu(), nil
	default:
		return sum, nil
	}
}

// Parameters returns the neuron's weight and bias leaves.
func (n *Neuron) Parameters() []*Value {
	return append(append([]*Value{}, n.W...), n.B)
}

// Layer fans the same inputs out to every neuron.
type Layer struct {
	Neurons []*Neuron
}

func NewLayer(rng *rand.Rand, nin, nout int, act Activation) (*Layer, error) {
	if nout <= 0 {
		return nil, fmt.Errorf("layer needs at least one neuron, got %d", nout)
	}
	neurons := make([]*Neuron, nout)
	for i := range neurons {
		n, err := NewNeuron(rng, nin, act)
		if err != nil {
			return nil, err
		}
		neurons[i] = n
	}
	return &Layer{Neurons: neurons}, nil
}

func (l *Layer) Forward(xs []*Value) ([]*Value, error) {
	out := make([]*Value, len(l.Neurons))
	for i, n := range l.Neurons {
		y, err := n.Forward(xs)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

func (l *Layer) Parameters() []*Value {
	params := []*Value{}
	for _, n := range l.Neurons {
		params = append(params, n.Parameters()...)
	}
	return params
}

// MLP chains layers sequentially: each layer's outputs become the next
// layer's inputs. Hidden layers use the requested activation; the final
// layer is linear.
type MLP struct {
	Nin    int
	Layers []*Layer
}

// NewMLP builds a network with nin inputs and one layer per entry of nouts.
func NewMLP(rng *rand.Rand, nin int, nouts []int, act Activation) (*MLP, error) {
	if nin <= 0 {
		return nil, fmt.Errorf("network needs at least one input, got %d", nin)
	}
	if len(nouts) == 0 {
		return nil, fmt.Errorf("network needs at least one layer")
	}
	layers := make([]*Layer, len(nouts))
	prev := nin
	for i, nout := range nouts {
		layerAct := act
		if i == len(nouts)-1 {
			layerAct = ActNone
		}
		l, err := NewLayer(rng, prev, nout, layerAct)
		if err != nil {
			return nil, err
		}
		layers[i] = l
		prev = nout
	}
	return &MLP{Nin: nin, Layers: layers}, nil
}

// Forward promotes raw inputs to leaf nodes and runs them through every
// layer. Each call builds a fresh graph over the same parameter leaves.
func (m *MLP) Forward(inputs []float64) ([]*Value, error) {
	if len(inputs) != m.Nin {
		return nil, fmt.Errorf("network expects %d inputs, got %d", m.Nin, len(inputs))
	}
	xs := make([]*Value, len(inputs))
	for i, x := range inputs {
		xs[i] = NewLeaf(x, RoleInput)
	}
	var err error
	for _, l := range m.Layers {
		xs, err = l.Forward(xs)
		if err != nil {
			return nil, err
		}
	}
	for _, out := range xs {
		out.Role = RoleOutput
	}
	return xs, nil
}

// Parameters flattens every layer's weights and biases into one list, the
// shape the optimizer wants.
func (m *MLP) Parameters() []*Value {
	params := []*Value{}
	for _, l := range m.Layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// ZeroGrad clears all parameter gradients before a new forward/backward pass.
func (m *MLP) ZeroGrad() {
	ZeroGrad(m.Parameters())
}
