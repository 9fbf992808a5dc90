package space2d

import (
	"math"

	"github.com/setanarut/vec"
)

// bbNode is either a leaf holding one broad-phase item or a branch with two children.
type bbNode struct {
	item   broadPhaseID
	bb     BB
	parent *bbNode
	a, b   *bbNode
}

func (node *bbNode) isLeaf() bool {
	return node.item != 0
}

func (node *bbNode) other(child *bbNode) *bbNode {
	if node.a == child {
		return node.b
	}
	return node.a
}

func nodeSetA(node, value *bbNode) {
	node.a = value
	value.parent = node
}

func nodeSetB(node, value *bbNode) {
	node.b = value
	value.parent = node
}

// bbTree is an incrementally built bounding volume hierarchy. Leaves are
// inserted along the branch that grows the least in area.
type bbTree struct {
	root        *bbNode
	pooledNodes *bbNode
	count       int
}

func (tree *bbTree) nodeFromPool() *bbNode {
	node := tree.pooledNodes

	if node != nil {
		tree.pooledNodes = node.parent
		*node = bbNode{}
		return node
	}

	// Pool is exhausted make more
	for i := 0; i < pooledBufferSize; i++ {
		tree.recycleNode(&bbNode{})
	}
	return &bbNode{}
}

func (tree *bbTree) recycleNode(node *bbNode) {
	*node = bbNode{parent: tree.pooledNodes}
	tree.pooledNodes = node
}

func (tree *bbTree) newBranch(a, b *bbNode) *bbNode {
	node := tree.nodeFromPool()
	node.bb = a.bb.Merge(b.bb)
	nodeSetA(node, a)
	nodeSetB(node, b)
	return node
}

// insert adds a leaf for id and returns it.
func (tree *bbTree) insert(id broadPhaseID, bb BB) *bbNode {
	leaf := tree.nodeFromPool()
	leaf.item = id
	leaf.bb = bb
	tree.root = tree.subtreeInsert(tree.root, leaf)
	tree.root.parent = nil
	tree.count++
	return leaf
}

// remove unlinks leaf and returns it to the pool.
func (tree *bbTree) remove(leaf *bbNode) {
	tree.root = tree.subtreeRemove(tree.root, leaf)
	tree.recycleNode(leaf)
	tree.count--
}

func (tree *bbTree) subtreeInsert(subtree, leaf *bbNode) *bbNode {
	if subtree == nil {
		return leaf
	}
	if subtree.isLeaf() {
		return tree.newBranch(leaf, subtree)
	}

	costA := subtree.b.bb.Area() + subtree.a.bb.MergedArea(leaf.bb)
	costB := subtree.a.bb.Area() + subtree.b.bb.MergedArea(leaf.bb)

	if costA == costB {
		costA = subtree.a.bb.Proximity(leaf.bb)
		costB = subtree.b.bb.Proximity(leaf.bb)
	}

	if costB < costA {
		nodeSetB(subtree, tree.subtreeInsert(subtree.b, leaf))
	} else {
		nodeSetA(subtree, tree.subtreeInsert(subtree.a, leaf))
	}

	subtree.bb = subtree.bb.Merge(leaf.bb)
	return subtree
}

func (tree *bbTree) subtreeRemove(subtree, leaf *bbNode) *bbNode {
	if leaf == subtree {
		return nil
	}

	parent := leaf.parent
	if parent == subtree {
		other := subtree.other(leaf)
		other.parent = subtree.parent
		tree.recycleNode(subtree)
		return other
	}

	tree.replaceChild(parent.parent, parent, parent.other(leaf))
	return subtree
}

func (tree *bbTree) replaceChild(parent, child, value *bbNode) {
	if parent.a == child {
		tree.recycleNode(parent.a)
		nodeSetA(parent, value)
	} else {
		tree.recycleNode(parent.b)
		nodeSetB(parent, value)
	}

	for node := parent; node != nil; node = node.parent {
		node.bb = node.a.bb.Merge(node.b.bb)
	}
}

// query calls f for every leaf whose box intersects bb.
func (tree *bbTree) query(bb BB, f func(id broadPhaseID)) {
	if tree.root != nil {
		tree.root.subtreeQuery(bb, f)
	}
}

func (subtree *bbNode) subtreeQuery(bb BB, f func(id broadPhaseID)) {
	if !subtree.bb.Intersects(bb) {
		return
	}
	if subtree.isLeaf() {
		f(subtree.item)
		return
	}
	subtree.a.subtreeQuery(bb, f)
	subtree.b.subtreeQuery(bb, f)
}

// segmentQuery visits leaves crossed by the segment a-b, nearest branch
// first. f returns the fraction at which the segment should now stop.
func (tree *bbTree) segmentQuery(a, b vec.Vec2, tExit float64, f func(id broadPhaseID) float64) {
	if tree.root != nil && tree.root.bb.SegmentQuery(a, b) < tExit {
		tree.root.subtreeSegmentQuery(a, b, tExit, f)
	}
}

func (subtree *bbNode) subtreeSegmentQuery(a, b vec.Vec2, tExit float64, f func(id broadPhaseID) float64) float64 {
	if subtree.isLeaf() {
		return f(subtree.item)
	}

	tA := subtree.a.bb.SegmentQuery(a, b)
	tB := subtree.b.bb.SegmentQuery(a, b)

	if tA < tB {
		if tA < tExit {
			tExit = math.Min(tExit, subtree.a.subtreeSegmentQuery(a, b, tExit, f))
		}
		if tB < tExit {
			tExit = math.Min(tExit, subtree.b.subtreeSegmentQuery(a, b, tExit, f))
		}
	} else {
		if tB < tExit {
			tExit = math.Min(tExit, subtree.b.subtreeSegmentQuery(a, b, tExit, f))
		}
		if tA < tExit {
			tExit = math.Min(tExit, subtree.a.subtreeSegmentQuery(a, b, tExit, f))
		}
	}

	return tExit
}
