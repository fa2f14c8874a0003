package accounts

import "sort"

// BuildForest arranges a flat account list into root nodes with nested
// children. Input order does not matter; every level comes out sorted by
// code. Accounts whose parent is missing from the slice surface as roots so
// a partial listing still renders.
func BuildForest(list []Account) []*TreeNode {
	nodes := make(map[int64]*TreeNode, len(list))
	for _, acc := range list {
		nodes[acc.ID] = &TreeNode{Account: acc}
	}
	var roots []*TreeNode
	for _, acc := range list {
		node := nodes[acc.ID]
		if acc.ParentID != nil {
			if parent, ok := nodes[*acc.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sortForest(roots)
	return roots
}

func sortForest(nodes []*TreeNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Code < nodes[j].Code })
	for _, n := range nodes {
		sortForest(n.Children)
	}
}

// Walk visits every node of the forest depth-first in code order.
func Walk(nodes []*TreeNode, fn func(*TreeNode)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Children, fn)
	}
}
