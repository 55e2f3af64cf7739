// Package classify extracts name-bearing entities from TypeScript and
// JavaScript source using tree-sitter.
//
// Each Entity carries the naming.Occurrence the policy engine validates: the
// atomic category, the modifier set and a syntactic type classification for
// type-eligible categories. Classification is purely syntactic; there is no
// type checker, so types come from annotations or initializer literals only.
package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/solatis/namekeeper/internal/naming"
	"github.com/solatis/namekeeper/internal/types"
)

// Entity is one declared name located in a source file.
type Entity struct {
	naming.Occurrence

	Path   string
	Line   int    // 1-based
	Column int    // 1-based, in bytes
	Kind   string // tree-sitter node type of the declaring construct
}

// IsSourceFile reports whether path has an extension the classifier parses.
func IsSourceFile(path string) bool {
	_, ok := languageFor(path)
	return ok
}

// languageFor returns the tree-sitter grammar for the file extension.
func languageFor(path string) (*sitter.Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage(), true
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage(), true
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage(), true
	}
	return nil, false
}

// File reads and classifies a single source file.
func File(ctx context.Context, path string) ([]Entity, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Source(ctx, path, content)
}

// Source classifies source text. path selects the grammar and is recorded on
// every entity; the file is not read.
func Source(ctx context.Context, path string, src []byte) ([]Entity, error) {
	lang, ok := languageFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedLanguage, filepath.Ext(path))
	}
	if len(src) > types.MaxSourceSize {
		return nil, fmt.Errorf("%w: %d bytes", types.ErrSourceTooLarge, len(src))
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	defer tree.Close()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root := tree.RootNode()
	w := &walker{
		path:     path,
		src:      src,
		refs:     make(map[string]int),
		exported: make(map[string]bool),
	}
	w.countRefs(root)
	w.collectExports(root)

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()
	w.walk(cursor)

	return w.entities, nil
}
