// Package tree renders a project directory as deterministic ascii tree
// text for inclusion in context documents.
//
// Ordering is fixed and filesystem-independent: at every level,
// directories come before files, and each group is sorted by name in
// byte order. Two walks of an unchanged directory produce byte-identical
// output.
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HendryAvila/ctxprep/internal/fsx"
	"github.com/HendryAvila/ctxprep/internal/ignore"
)

// truncationMarker is rendered in place of children beyond the depth limit.
const truncationMarker = "... (max depth reached)"

// Node is the transient in-memory form of one directory entry. It only
// exists between walking and rendering; nothing persists it.
type Node struct {
	Name        string
	IsDirectory bool
	Children    []*Node
}

// Builder walks a project root and renders its tree text.
type Builder struct {
	fs       fsx.FS
	matcher  *ignore.Matcher
	maxDepth int // 0 = unlimited
}

// New creates a Builder. maxDepth bounds traversal depth; zero or
// negative means unlimited.
func New(fs fsx.FS, matcher *ignore.Matcher, maxDepth int) *Builder {
	return &Builder{fs: fs, matcher: matcher, maxDepth: maxDepth}
}

// Build walks root and returns the rendered tree text. The first line
// is the root directory's base name followed by "/".
func (b *Builder) Build(root string) (string, error) {
	root = filepath.Clean(root)
	rootNode := &Node{Name: filepath.Base(root) + "/", IsDirectory: true}
	if err := b.walk(root, root, "", 1, rootNode); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(rootNode.Name)
	sb.WriteString("\n")
	render(&sb, rootNode, "")
	return sb.String(), nil
}

// walk fills node with the ordered children of dir. rel is the
// project-relative path of dir ("" for the root itself).
func (b *Builder) walk(root, dir, rel string, depth int, node *Node) error {
	if b.maxDepth > 0 && depth > b.maxDepth {
		node.Children = append(node.Children, &Node{Name: truncationMarker})
		return nil
	}

	entries, err := b.fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var dirs, files []os.DirEntry
	for _, entry := range entries {
		entryRel := filepath.Join(rel, entry.Name())

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			// Symlinks escaping the root are dropped; in-root symlinked
			// directories are listed but never descended (cycle guard).
			target, err := b.fs.EvalSymlinks(filepath.Join(dir, entry.Name()))
			if err != nil || !within(root, target) {
				continue
			}
			isDir = false
		}

		if b.matcher.Matches(entryRel, isDir) {
			continue
		}
		if isDir {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, entry := range dirs {
		child := &Node{Name: entry.Name() + "/", IsDirectory: true}
		node.Children = append(node.Children, child)
		childRel := filepath.Join(rel, entry.Name())
		if err := b.walk(root, filepath.Join(dir, entry.Name()), childRel, depth+1, child); err != nil {
			return err
		}
	}
	for _, entry := range files {
		node.Children = append(node.Children, &Node{Name: entry.Name()})
	}
	return nil
}

// render writes node's children with box-drawing connectors.
func render(sb *strings.Builder, node *Node, prefix string) {
	for i, child := range node.Children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(node.Children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(child.Name)
		sb.WriteString("\n")
		render(sb, child, childPrefix)
	}
}

// within reports whether path is root or lives under it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
