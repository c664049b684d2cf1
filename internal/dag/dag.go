// Package dag provides a directed acyclic graph to run tasks in parallel.
package dag

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Node must be implemented to add a node to the graph.
type Node[T comparable] interface {
	Hash() string
	Name() string
	Run(ctx context.Context, values []T) (T, error)
}

// Dag is a directed acyclic graph.
// Nodes with the same hash are the same node and run once.
type Dag[T comparable] struct {
	hashToIdx map[string]int
	nodes     []*node[T]
	sem       *semaphore.Weighted
}

type Option[T comparable] func(*Dag[T])

// WithConcurrency limits how many Run functions execute at the same time.
// Waiting for children does not count.
func WithConcurrency[T comparable](n int) Option[T] {
	return func(d *Dag[T]) {
		if n > 0 {
			d.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// New return a new Dag.
func New[T comparable](opts ...Option[T]) *Dag[T] {
	d := &Dag[T]{
		hashToIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of distinct nodes.
func (d *Dag[T]) Len() int {
	return len(d.nodes)
}

// RunRootNodes starts execution by running the root nodes.
func (d *Dag[T]) RunRootNodes(ctx context.Context) iter.Seq2[T, error] {
	nodes, err := d.rootNodes()
	if err != nil {
		return func(yield func(T, error) bool) {
			var zero T
			yield(zero, err)
		}
	}
	return runNodes(ctx, nodes)
}

// AddChain adds a slice of connected nodes. The first node is the root.
func (d *Dag[T]) AddChain(nodes ...Node[T]) error {
	if len(nodes) == 1 {
		d.addNode(nodes[0])
		return nil
	}
	parent := nodes[0]
	for i := 1; i < len(nodes); i++ {
		d.addNode(parent)
		d.addNode(nodes[i])
		err := d.AddEdge(parent, nodes[i])
		if err != nil {
			return err
		}
		parent = nodes[i]
	}
	return nil
}

// AddEdge adds an edge between nodes to the directed acyclic graph (Dag).
func (d *Dag[T]) AddEdge(parent Node[T], child Node[T]) error {
	parentNodeID := d.addNode(parent)
	childNodeID := d.addNode(child)

	parentNode := d.nodes[parentNodeID]
	childNode := d.nodes[childNodeID]

	// edge already exists
	if d.hasChild(parentNode, childNode.id) {
		return nil
	}
	if d.hasPath(childNode, parentNode) {
		return fmt.Errorf("cyclic dependency: %s to %s", parentNode.name, childNode.name)
	}

	parentNode.children = append(parentNode.children, childNode)
	return nil
}

// addNode adds a node to the directed acyclic graph (Dag).
func (d *Dag[T]) addNode(n Node[T]) (id int) {
	hash := n.Hash()
	id, exists := d.hashToIdx[hash]
	if !exists {
		id = len(d.nodes)
		d.hashToIdx[hash] = id
		d.nodes = append(d.nodes, &node[T]{
			id:      id,
			name:    n.Name(),
			runFunc: n.Run,
			sem:     d.sem,
		})
	}
	return id
}

// hasPath checks if there is already a path from start to target node (DFS).
func (d *Dag[T]) hasPath(src, dst *node[T]) bool {
	visited := make(map[int]bool)
	return d.dfs(src, dst, visited)
}

func (d *Dag[T]) dfs(src, dst *node[T], visited map[int]bool) bool {
	if src.id == dst.id {
		return true
	}
	visited[src.id] = true
	for _, child := range src.children {
		if !visited[child.id] && d.dfs(child, dst, visited) {
			return true
		}
	}
	return false
}

func (d *Dag[T]) hasChild(parent *node[T], childID int) bool {
	return slices.ContainsFunc(parent.children, func(child *node[T]) bool {
		return child.id == childID
	})
}

func (d *Dag[T]) rootNodes() ([]*node[T], error) {
	childSet := make(map[int]bool)

	for _, n := range d.nodes {
		for _, c := range n.children {
			childSet[c.id] = true
		}
	}

	var roots []*node[T]
	for id, n := range d.nodes {
		if !childSet[id] {
			if len(d.nodes) > 1 && n.children == nil {
				return nil, fmt.Errorf("node %s is orphaned", n.name)
			}
			roots = append(roots, n)
		}
	}

	return roots, nil
}

// String returns the graph in Graphviz dot format.
func (d *Dag[T]) String() string {
	b := &strings.Builder{}
	b.WriteString("digraph {\n")
	for _, n := range d.nodes {
		fmt.Fprintf(b, "  n%d [label=%q];\n", n.id, n.name)
	}
	for _, n := range d.nodes {
		for _, c := range n.children {
			fmt.Fprintf(b, "  n%d -> n%d;\n", n.id, c.id)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

type node[T comparable] struct {
	id       int
	name     string
	children []*node[T]

	lock            sync.Mutex
	sem             *semaphore.Weighted
	runFunc         func(ctx context.Context, values []T) (result T, err error)
	runFuncExecuted bool
	result          T
}

func (n *node[T]) run(ctx context.Context) (T, error) {
	n.lock.Lock()
	defer n.lock.Unlock()

	if n.runFuncExecuted {
		return n.result, nil
	}

	var zeroVal T
	var results []T
	if len(n.children) > 0 {
		rs, err := runChildren(ctx, n.children)
		if err != nil {
			return zeroVal, err
		}
		results = rs
	}

	if n.sem != nil {
		if err := n.sem.Acquire(ctx, 1); err != nil {
			return zeroVal, err
		}
		defer n.sem.Release(1)
	}

	result, err := n.runFunc(ctx, results)
	if err != nil {
		return zeroVal, fmt.Errorf("%s: %w", n.name, err)
	}
	n.result = result
	n.runFuncExecuted = true
	return result, nil
}

func runChildren[T comparable](ctx context.Context, children []*node[T]) ([]T, error) {
	results := make([]T, len(children))
	errg, ctx := errgroup.WithContext(ctx)
	for i, n := range children {
		errg.Go(func() error {
			val, err := n.run(ctx)
			if err != nil {
				return err
			}
			results[i] = val
			return nil
		})
	}
	err := errg.Wait()
	if err != nil {
		return nil, err
	}
	return results, nil
}

// runNodes returns an iterator that iterates results as soon as
// contiguous parts from the start are complete.
func runNodes[T comparable](ctx context.Context, nodes []*node[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		lenNodes := len(nodes)
		results := make([]T, lenNodes)
		errs := make([]error, lenNodes)
		done := make([]bool, lenNodes)

		var mu sync.Mutex
		cond := sync.NewCond(&mu)
		stop := context.AfterFunc(ctx, func() {
			mu.Lock()
			cond.Broadcast()
			mu.Unlock()
		})
		defer stop()

		for i, n := range nodes {
			go func() {
				val, err := n.run(ctx)
				mu.Lock()
				results[i] = val
				errs[i] = err
				done[i] = true
				cond.Broadcast()
				mu.Unlock()
			}()
		}

		for i := range lenNodes {
			mu.Lock()
			for !done[i] {
				if ctx.Err() != nil {
					mu.Unlock()
					return
				}
				cond.Wait()
			}
			val, err := results[i], errs[i]
			mu.Unlock()

			if !yield(val, err) || err != nil || ctx.Err() != nil {
				return
			}
		}
	}
}
