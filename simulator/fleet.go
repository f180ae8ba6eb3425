package simulator

// GenerateFleet creates n taxis at random junctions and places them into the
// world. The caller still registers them with the broker.
func (w *World) GenerateFleet(n int) []*Taxi {
	nodes := w.graph.Nodes()
	if len(nodes) == 0 || n <= 0 {
		return nil
	}
	out := make([]*Taxi, 0, n)
	for i := 0; i < n; i++ {
		t := newTaxi(w.graph, nodes[w.rng.Intn(len(nodes))])
		w.AddTaxi(t)
		out = append(out, t)
	}
	return out
}
