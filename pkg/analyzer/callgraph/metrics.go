package callgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NodeMetric holds per-function metrics from the resolved call graph.
type NodeMetric struct {
	Name      string  `json:"name" toon:"name"`
	PageRank  float64 `json:"pagerank" toon:"pagerank"`
	InDegree  int     `json:"in_degree" toon:"in_degree"`
	OutDegree int     `json:"out_degree" toon:"out_degree"`
}

// MetricsSummary holds graph-level metrics.
type MetricsSummary struct {
	TotalNodes       int     `json:"total_nodes" toon:"total_nodes"`
	TotalEdges       int     `json:"total_edges" toon:"total_edges"`
	AvgDegree        float64 `json:"avg_degree" toon:"avg_degree"`
	Density          float64 `json:"density" toon:"density"`
	Components       int     `json:"components" toon:"components"`
	LargestComponent int     `json:"largest_component" toon:"largest_component"`
	CycleCount       int     `json:"cycle_count" toon:"cycle_count"`
	IsCyclic         bool    `json:"is_cyclic" toon:"is_cyclic"`
}

// Metrics is the full metrics result for one file's call graph.
type Metrics struct {
	NodeMetrics []NodeMetric   `json:"node_metrics" toon:"node_metrics"`
	Summary     MetricsSummary `json:"summary" toon:"summary"`
}

// gonumGraph holds the gonum representation and the name mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nameToID   map[string]int64
	idToName   map[int64]string
}

// toGonumGraph converts a Graph to gonum graph types. Names map to
// sequential IDs in sorted order so the conversion is deterministic.
func toGonumGraph(g *Graph) *gonumGraph {
	names := make([]string, 0, len(g.Callees))
	for name := range g.Callees {
		names = append(names, name)
	}
	sort.Strings(names)

	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nameToID:   make(map[string]int64, len(names)),
		idToName:   make(map[int64]string, len(names)),
	}

	for i, name := range names {
		id := int64(i)
		gg.nameToID[name] = id
		gg.idToName[id] = name
		gg.directed.AddNode(simple.Node(id))
		gg.undirected.AddNode(simple.Node(id))
	}

	for _, caller := range names {
		from := gg.nameToID[caller]
		for _, callee := range g.Callees[caller] {
			to, ok := gg.nameToID[callee]
			if !ok || from == to {
				continue
			}
			gg.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
			if !gg.undirected.HasEdgeBetween(from, to) {
				gg.undirected.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
			}
		}
	}

	return gg
}

// CalculateMetrics computes PageRank, degrees, component structure, and
// cycle counts for a resolved call graph. NodeMetrics are ordered by
// descending PageRank, ties broken by name.
func CalculateMetrics(g *Graph) *Metrics {
	metrics := &Metrics{
		NodeMetrics: make([]NodeMetric, 0, len(g.Callees)),
		Summary: MetricsSummary{
			TotalNodes: len(g.Callees),
			TotalEdges: g.EdgeCount(),
		},
	}

	if len(g.Callees) == 0 {
		return metrics
	}

	gg := toGonumGraph(g)
	pageRank := network.PageRank(gg.directed, 0.85, 1e-6)

	names := make([]string, 0, len(g.Callees))
	for name := range g.Callees {
		names = append(names, name)
	}
	sort.Strings(names)

	totalDegree := 0
	for _, name := range names {
		in := len(g.Callers[name])
		out := len(g.Callees[name])
		totalDegree += in + out
		metrics.NodeMetrics = append(metrics.NodeMetrics, NodeMetric{
			Name:      name,
			PageRank:  pageRank[gg.nameToID[name]],
			InDegree:  in,
			OutDegree: out,
		})
	}

	sort.SliceStable(metrics.NodeMetrics, func(i, j int) bool {
		if metrics.NodeMetrics[i].PageRank != metrics.NodeMetrics[j].PageRank {
			return metrics.NodeMetrics[i].PageRank > metrics.NodeMetrics[j].PageRank
		}
		return metrics.NodeMetrics[i].Name < metrics.NodeMetrics[j].Name
	})

	metrics.Summary.AvgDegree = float64(totalDegree) / float64(len(names))
	if len(names) > 1 {
		maxEdges := len(names) * (len(names) - 1)
		metrics.Summary.Density = float64(metrics.Summary.TotalEdges) / float64(maxEdges)
	}

	components := topo.ConnectedComponents(gg.undirected)
	metrics.Summary.Components = len(components)
	for _, comp := range components {
		if len(comp) > metrics.Summary.LargestComponent {
			metrics.Summary.LargestComponent = len(comp)
		}
	}

	// Only SCCs with more than one node are actual cycles.
	cycles := 0
	for _, scc := range topo.TarjanSCC(gg.directed) {
		if len(scc) > 1 {
			cycles++
		}
	}
	metrics.Summary.CycleCount = cycles
	metrics.Summary.IsCyclic = cycles > 0

	return metrics
}
