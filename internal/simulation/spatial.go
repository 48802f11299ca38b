package simulation

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// point is a node position tagged with its arena index.
type point struct {
	pos r3.Vec
	idx int
}

var _ kdtree.Comparable = point{}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.pos.X - q.pos.X
	case 1:
		return p.pos.Y - q.pos.Y
	default:
		return p.pos.Z - q.pos.Z
	}
}

func (p point) Dims() int { return 3 }

// Distance returns the squared Euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.pos, c.(point).pos))
}

func (p point) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.pos.X
	case 1:
		return p.pos.Y
	default:
		return p.pos.Z
	}
}

// points satisfies kdtree.Interface.
type points []point

var _ kdtree.Interface = points(nil)

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{Dim: d, points: p}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane pivots points on one dimension.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool { return p.points[i].coord(p.Dim) < p.points[j].coord(p.Dim) }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfRandoms(p, 100)) }
func (p plane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// pointTree is a k-d tree over a set of positions.
type pointTree struct {
	tree *kdtree.Tree
}

func newPointTree(positions []r3.Vec) pointTree {
	ps := make(points, len(positions))
	for i, pos := range positions {
		ps[i] = point{pos: pos, idx: i}
	}
	return pointTree{tree: kdtree.New(ps, false)}
}

// within returns the indices of all positions no further than r from q.
func (t pointTree) within(q r3.Vec, r float64) []int {
	keep := kdtree.NewDistKeeper(r * r)
	t.tree.NearestSet(keep, point{pos: q, idx: -1})
	out := make([]int, 0, keep.Len())
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		out = append(out, c.Comparable.(point).idx)
	}
	return out
}

// nearest returns the arena index of the node closest to q and its squared distance.
func nearest(nodes []simNode, q r3.Vec) (int, float64, bool) {
	if len(nodes) == 0 {
		return 0, 0, false
	}
	positions := make([]r3.Vec, len(nodes))
	for i := range nodes {
		positions[i] = nodes[i].pos
	}
	t := newPointTree(positions)
	c, d2 := t.tree.Nearest(point{pos: q, idx: -1})
	if c == nil {
		return 0, 0, false
	}
	return c.(point).idx, d2, true
}
