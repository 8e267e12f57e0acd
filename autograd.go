package main

import "math"

// Op identifies which operation produced a Value. The set is closed: the
// backward pass dispatches on it exhaustively, and the arity of Children is
// fixed by it (0 for OpNone, 1 for OpTanh/OpRelu, 2 for OpAdd/OpMul).
type Op int

const (
	OpNone Op = iota
	OpAdd
	OpMul
	OpTanh
	OpRelu
)

// Role labels a node for introspection. It has no effect on forward values
// or gradients; RoleCounts is the only consumer.
type Role int

const (
	RoleNone Role = iota
	RoleParameter
	RoleInput
	RoleOutput
)

func (r Role) String() string {
	switch r {
	case RoleParameter:
		return "parameter"
	case RoleInput:
		return "input"
	case RoleOutput:
		return "output"
	default:
		return "none"
	}
}

// Value is the core unit in a tiny automatic differentiation engine.
//
// Think of this as a "number with memory":
// - Data is the actual number used in calculations.
// - Grad is "how much the final output changes if this number changes a little."
// - Op records which operation created this value.
// - Children points to the input nodes used to create it.
//
// Applying operations builds a DAG during the forward pass; Backward then
// sends gradients through it with the chain rule. Grad only ever accumulates:
// it starts at zero and every incoming contribution is added, so a node
// reached along several paths sums them all. Only ZeroGrad resets it.
type Value struct {
	Data     float64
	Grad     float64
	Op       Op
	Role     Role
	Children []*Value
}

// NewValue creates a leaf node (a plain number with no parents).
func NewValue(data float64) *Value {
	return &Value{Data: data}
}

// NewLeaf creates a leaf node carrying a role label, e.g. a trainable
// parameter or a sample input.
func NewLeaf(data float64, role Role) *Value {
	return &Value{Data: data, Role: role}
}

// Add creates node z = x + y.
// Local derivatives:
// dz/dx = 1
// dz/dy = 1
func (v *Value) Add(other *Value) *Value {
	return &Value{
		Data:     v.Data + other.Data,
		Op:       OpAdd,
		Children: []*Value{v, other},
	}
}

// Mul creates node z = x * y.
// Local derivatives:
// dz/dx = y
// dz/dy = x
func (v *Value) Mul(other *Value) *Value {
	return &Value{
		Data:     v.Data * other.Data,
		Op:       OpMul,
		Children: []*Value{v, other},
	}
}

// Tanh applies the hyperbolic tangent activation:
// tanh(x) = (e^2x - 1) / (e^2x + 1)
//
// Local derivative: 1 - tanh(x)^2.
func (v *Value) Tanh() *Value {
	e2x := math.Exp(2 * v.Data)
	return &Value{
		Data:     (e2x - 1) / (e2x + 1),
		Op:       OpTanh,
		Children: []*Value{v},
	}
}

// Relu applies the ReLU activation:
// relu(x) = max(0, x)
//
// Local derivative: 1 when x > 0, otherwise 0.
func (v *Value) Relu() *Value {
	return &Value{
		Data:     math.Max(0, v.Data),
		Op:       OpRelu,
		Children: []*Value{v},
	}
}

// propagate applies this node's local backward rule, pushing its (already
// final) gradient onto its children. Each rule is O(1) and reads only cached
// forward values; Tanh reuses its own forward result for 1 - t^2 instead of
// recomputing the activation.
func (v *Value) propagate() {
	switch v.Op {
	case OpAdd:
		v.Children[0].Grad += v.Grad
		v.Children[1].Grad += v.Grad
	case OpMul:
		v.Children[0].Grad += v.Children[1].Data * v.Grad
		v.Children[1].Grad += v.Children[0].Data * v.Grad
	case OpTanh:
		v.Children[0].Grad += (1 - v.Data*v.Data) * v.Grad
	case OpRelu:
		if v.Data > 0 {
			v.Children[0].Grad += v.Grad
		}
	case OpNone:
		// leaf
	}
}

// topoOrder returns every node reachable from root, children before parents.
//
// The visited set is keyed by pointer identity: two nodes with equal Data are
// still distinct graph vertices. A node reachable along several paths is
// appended exactly once, after all of its children.
func topoOrder(root *Value) []*Value {
	topo := []*Value{}
	visited := make(map[*Value]bool)

	var buildTopo func(*Value)
	buildTopo = func(node *Value) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, child := range node.Children {
			buildTopo(child)
		}
		topo = append(topo, node)
	}
	buildTopo(root)
	return topo
}

// Backward performs reverse-mode autodiff from this node to all ancestors.
//
// Process:
// 1) Build topological order so each node appears only after its children.
// 2) Seed output gradient with 1 (dOutput/dOutput = 1).
// 3) Traverse the graph in reverse topological order and accumulate gradients.
//
// Reversing a children-first order guarantees each node has received every
// incoming contribution before its own gradient is pushed further down.
//
// Calling Backward again without ZeroGrad adds on top of the existing
// gradients. That is how mini-batch accumulation works: each sample builds a
// fresh graph over shared parameter leaves, and every pass contributes its
// full gradient additively. Re-running Backward on the SAME graph is
// stronger than a plain sum: interior nodes also keep their old gradients,
// and propagate pushes each interior total down, so leaf gradients compound
// pass over pass. Callers wanting independent gradients must reset first.
func (v *Value) Backward() {
	topo := topoOrder(v)

	v.Grad = 1
	for i := len(topo) - 1; i >= 0; i-- {
		topo[i].propagate()
	}
}

// ZeroGrad resets the gradient accumulator of each given node.
func ZeroGrad(nodes []*Value) {
	for _, n := range nodes {
		n.Grad = 0
	}
}

// RoleCounts tallies the unique nodes reachable from root by role.
// Debug/introspection only; it never touches Data or Grad.
func RoleCounts(root *Value) map[Role]int {
	counts := make(map[Role]int)
	for _, n := range topoOrder(root) {
		counts[n.Role]++
	}
	return counts
}
