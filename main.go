package main

import (
	"flag"
	"log"
	"math/rand"
	"net/http"
)

// demoSamples is the classic tiny regression set: four 3-dimensional inputs
// with targets in {-1, 1}. Small enough to watch every gradient by hand.
func demoSamples() []Sample {
	return []Sample{
		{Inputs: []float64{2, 3, -1}, Targets: []float64{1}},
		{Inputs: []float64{3, -1, 0.5}, Targets: []float64{-1}},
		{Inputs: []float64{0.5, 1, 1}, Targets: []float64{-1}},
		{Inputs: []float64{1, 1, -1}, Targets: []float64{1}},
	}
}

// runDemo trains a 3-4-4-1 tanh network on the demo set and logs the loss
// trajectory plus final predictions.
func runDemo(seed int64, steps int, lr float64) error {
	rng := rand.New(rand.NewSource(seed))
	net, err := NewMLP(rng, 3, []int{4, 4, 1}, ActTanh)
	if err != nil {
		return err
	}
	trainer, err := NewTrainer(net, lr)
	if err != nil {
		return err
	}

	samples := demoSamples()
	losses, root, err := trainer.Run(samples, steps)
	if err != nil {
		return err
	}
	for i, loss := range losses {
		if i%10 == 0 || i == len(losses)-1 {
			log.Printf("step %3d  loss %.6f", i, loss)
		}
	}

	for _, s := range samples {
		preds, err := net.Forward(s.Inputs)
		if err != nil {
			return err
		}
		log.Printf("input %v  target %v  prediction %.4f", s.Inputs, s.Targets, preds[0].Data)
	}
	for role, n := range RoleCounts(root) {
		log.Printf("graph nodes: %-9s %d", role, n)
	}
	return nil
}

func main() {
	serve := flag.String("serve", "", "listen address for the HTTP API (e.g. :8080); empty runs the training demo")
	seed := flag.Int64("seed", 1337, "random seed for parameter initialization")
	steps := flag.Int("steps", 100, "demo training steps")
	lr := flag.Float64("lr", 0.05, "demo learning rate")
	flag.Parse()

	if *serve == "" {
		if err := runDemo(*seed, *steps, *lr); err != nil {
			log.Fatal(err)
		}
		return
	}

	mux := http.NewServeMux()
	NewServer().RegisterRoutes(mux)
	log.Printf("server starting on %s...", *serve)
	log.Fatal(http.ListenAndServe(*serve, mux))
}
