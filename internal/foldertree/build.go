package foldertree

import (
	"strings"

	"imgtree/internal/domain/models"
)

// Build materializes the nested view of the flat list.
//
// Children keep insertion order. Folders on a parent cycle are not reachable
// from any root and therefore do not appear.
func (t *Tree) Build() []*models.FolderTreeNode {
	nodes := make(map[string]*models.FolderTreeNode, len(t.folders))

	// First pass: create all folder nodes
	for _, f := range t.folders {
		nodes[f.ID] = &models.FolderTreeNode{
			ID:          f.ID,
			Name:        f.Name,
			ParentID:    cloneID(f.ParentID),
			AllowUpload: f.AllowUpload,
			AllowSync:   f.AllowSync,
			Folders:     []*models.FolderTreeNode{},
		}
	}

	// Second pass: connect children to parents
	roots := make([]*models.FolderTreeNode, 0)
	for _, f := range t.folders {
		node := nodes[f.ID]
		if f.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*f.ParentID]; ok {
			parent.Folders = append(parent.Folders, node)
		}
	}
	return roots
}

// RenderNode is one line of a rendered tree.
type RenderNode struct {
	Folder models.Folder
	Depth  int
	IsLast bool // last child of its parent
}

// Walk visits every folder reachable from the roots depth-first, parents
// before children, children in insertion order.
func (t *Tree) Walk(fn func(RenderNode)) {
	type frame struct {
		id     string
		depth  int
		isLast bool
	}

	roots := t.childIDs(rootKey)
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{id: roots[i], depth: 0, isLast: i == len(roots)-1})
	}

	visited := make(map[string]struct{}, len(t.folders))
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[cur.id]; seen {
			continue
		}
		visited[cur.id] = struct{}{}

		fn(RenderNode{Folder: t.folders[t.index[cur.id]], Depth: cur.depth, IsLast: cur.isLast})

		kids := t.childIDs(cur.id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: cur.depth + 1, isLast: i == len(kids)-1})
		}
	}
}

// Render draws the tree with box-drawing characters, one folder per line.
//
//	Photos/
//	├── Trip/
//	│   └── Day 1/
//	└── Family/
func (t *Tree) Render() string {
	var b strings.Builder
	// depths that still have siblings below
	continuations := make(map[int]bool)
	first := true

	t.Walk(func(n RenderNode) {
		if !first {
			b.WriteString("\n")
		}
		first = false

		for d := 0; d < n.Depth; d++ {
			switch {
			case d < n.Depth-1 && continuations[d+1]:
				b.WriteString("│   ")
			case d < n.Depth-1:
				b.WriteString("    ")
			case n.IsLast:
				b.WriteString("└── ")
			default:
				b.WriteString("├── ")
			}
		}
		b.WriteString(n.Folder.Name)
		b.WriteString("/")
		if !n.Folder.AllowUpload || !n.Folder.AllowSync {
			b.WriteString(flagSuffix(n.Folder))
		}

		continuations[n.Depth] = !n.IsLast
	})
	return b.String()
}

func flagSuffix(f models.Folder) string {
	var flags []string
	if !f.AllowUpload {
		flags = append(flags, "no-upload")
	}
	if !f.AllowSync {
		flags = append(flags, "no-sync")
	}
	return " [" + strings.Join(flags, ",") + "]"
}
