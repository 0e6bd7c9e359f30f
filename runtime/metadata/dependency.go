package metadata

import (
	"fmt"
	"sort"
)

// DependencyOptions configures dependency graph queries
type DependencyOptions struct {
	Depth   int      // Maximum traversal depth (0 = unlimited)
	Reverse bool     // Reverse traversal (find what depends on this)
	Types   []string // Filter by edge relationship (EdgeInherits, EdgeReferences)
}

// BuildDependencyGraph constructs the class graph from a snapshot. Parents
// produce "inherits" edges; attributes typed by a class produce
// "references" edges.
func BuildDependencyGraph(m *Metadata) *DependencyGraph {
	graph := &DependencyGraph{
		Nodes: make(map[string]*DependencyNode),
		Edges: make([]DependencyEdge, 0),
	}
	if m == nil {
		return graph
	}

	classTypes := make(map[string]string)
	for _, t := range m.Types {
		if t.ClassPackage != "" {
			classTypes[t.Key] = t.ClassPackage
		}
	}

	for _, class := range m.Classes {
		graph.Nodes[class.Package] = &DependencyNode{
			ID:   class.Package,
			Key:  class.Key,
			Name: class.Name,
		}
		for _, parent := range class.Parents {
			graph.Edges = append(graph.Edges, DependencyEdge{
				From:         class.Package,
				To:           parent,
				Relationship: EdgeInherits,
			})
		}
		for _, attr := range class.Attributes {
			// Inherited attributes are the parent's references.
			if attr.DeclaredIn != class.Package {
				continue
			}
			if target, ok := classTypes[attr.Type]; ok {
				graph.Edges = append(graph.Edges, DependencyEdge{
					From:         class.Package,
					To:           target,
					Relationship: EdgeReferences,
					Via:          attr.Name,
				})
			}
		}
	}
	return graph
}

// QueryDependencies finds the classes reachable from pkg.
func QueryDependencies(pkg string, opts DependencyOptions) (*DependencyGraph, error) {
	if !globalRegistry.initialized.Load() {
		return nil, fmt.Errorf("registry not initialized")
	}

	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	if _, ok := globalRegistry.classesByPackage[pkg]; !ok {
		return nil, fmt.Errorf("class not found: %s", pkg)
	}

	cacheKey := fmt.Sprintf("deps:%s:%d:%v:%v", pkg, opts.Depth, opts.Reverse, opts.Types)
	if cached := globalRegistry.getCached(cacheKey); cached != nil {
		return cached.(*DependencyGraph), nil
	}

	result := extractSubgraph(&globalRegistry.metadata.Dependencies, pkg, opts)
	globalRegistry.setCached(cacheKey, result)
	return result, nil
}

// extractSubgraph extracts a subgraph using BFS traversal
func extractSubgraph(full *DependencyGraph, start string, opts DependencyOptions) *DependencyGraph {
	result := &DependencyGraph{
		Nodes: make(map[string]*DependencyNode),
		Edges: make([]DependencyEdge, 0),
	}

	visited := map[string]bool{start: true}
	queue := []depthNode{{id: start, depth: 0}}
	if node, exists := full.Nodes[start]; exists {
		result.Nodes[start] = node
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var edges []DependencyEdge
		if opts.Reverse {
			edges = findIncomingEdges(full, current.id)
		} else {
			edges = findOutgoingEdges(full, current.id)
		}
		if len(opts.Types) > 0 {
			edges = filterEdgesByType(edges, opts.Types)
		}

		for _, edge := range edges {
			result.Edges = append(result.Edges, edge)

			next := edge.To
			if opts.Reverse {
				next = edge.From
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if node, exists := full.Nodes[next]; exists {
				result.Nodes[next] = node
			}
			if opts.Depth == 0 || current.depth+1 < opts.Depth {
				queue = append(queue, depthNode{id: next, depth: current.depth + 1})
			}
		}
	}
	return result
}

type depthNode struct {
	id    string
	depth int
}

func findOutgoingEdges(graph *DependencyGraph, id string) []DependencyEdge {
	var result []DependencyEdge
	for _, edge := range graph.Edges {
		if edge.From == id {
			result = append(result, edge)
		}
	}
	return result
}

func findIncomingEdges(graph *DependencyGraph, id string) []DependencyEdge {
	var result []DependencyEdge
	for _, edge := range graph.Edges {
		if edge.To == id {
			result = append(result, edge)
		}
	}
	return result
}

func filterEdgesByType(edges []DependencyEdge, relationships []string) []DependencyEdge {
	allowed := make(map[string]bool, len(relationships))
	for _, r := range relationships {
		allowed[r] = true
	}

	var result []DependencyEdge
	for _, edge := range edges {
		if allowed[edge.Relationship] {
			result = append(result, edge)
		}
	}
	return result
}

// DetectCycles finds reference cycles between classes. Inheritance cannot
// form a cycle since parents must be built first, so only "references"
// edges can contribute.
func DetectCycles(graph *DependencyGraph) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	ids := make([]string, 0, len(graph.Nodes))
	for id := range graph.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !visited[id] {
			findCycles(graph, id, visited, onStack, nil, &cycles)
		}
	}
	return cycles
}

func findCycles(graph *DependencyGraph, id string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[id] = true
	onStack[id] = true
	path = append(path, id)

	for _, edge := range findOutgoingEdges(graph, id) {
		next := edge.To
		if onStack[next] {
			for i, n := range path {
				if n == next {
					cycle := append(append([]string(nil), path[i:]...), next)
					*cycles = append(*cycles, cycle)
					break
				}
			}
		} else if !visited[next] {
			findCycles(graph, next, visited, onStack, path, cycles)
		}
	}

	onStack[id] = false
}
