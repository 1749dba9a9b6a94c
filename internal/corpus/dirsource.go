package corpus

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/badi-al-zaman/ragchat/internal/contextutil"
)

// DirSource loads documents from a directory tree.
// Plain text files (.txt) use their filename as title; markdown files (.md)
// get their title from the first heading when one exists.
type DirSource struct {
	root   string
	parser goldmark.Markdown
}

// NewDirSource creates a document source rooted at the given directory.
func NewDirSource(root string) (*DirSource, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}
	return &DirSource{
		root:   root,
		parser: goldmark.New(),
	}, nil
}

// Load walks the corpus root and returns all readable text documents.
// Unreadable files are logged and skipped; empty files are skipped.
func (s *DirSource) Load(ctx context.Context) ([]Document, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var docs []Document
	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.WarnContext(ctx, "could not read file", "path", path, "error", err)
			return nil
		}

		trimmed := strings.TrimSpace(string(content))
		if trimmed == "" {
			logger.WarnContext(ctx, "skipping empty file", "path", path)
			return nil
		}

		relPath, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		fileName := filepath.Base(path)
		title := s.extractTitle(content, fileName)

		hash := sha256.Sum256(content)

		docs = append(docs, Document{
			ID:      relPath,
			Title:   title,
			Content: trimmed,
			Metadata: Metadata{
				FileName: fileName,
				FilePath: path,
				Hash:     fmt.Sprintf("%x", hash),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan corpus: %w", err)
	}

	logger.InfoContext(ctx, "corpus loaded", "root", s.root, "documents", len(docs))
	return docs, nil
}

// extractTitle returns the first markdown heading for .md files, falling
// back to the filename without extension with words capitalized.
func (s *DirSource) extractTitle(content []byte, fileName string) string {
	if filepath.Ext(fileName) == ".md" {
		if heading := firstHeading(s.parser, content); heading != "" {
			return heading
		}
	}
	return titleFromFilename(fileName)
}

// firstHeading parses markdown and returns the text of the first heading.
func firstHeading(parser goldmark.Markdown, content []byte) string {
	doc := parser.Parser().Parse(text.NewReader(content))

	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = headingText(h, content)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return heading
}

// headingText extracts the plain text content of a heading node.
func headingText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// titleFromFilename derives a title by dropping the extension and
// capitalizing words. Underscores are treated as word separators, so
// "john_adams_policies.txt" becomes "John Adams Policies".
func titleFromFilename(fileName string) string {
	name := fileName
	// Strip all extensions so "adams.txt.clean" also reduces to "adams".
	for {
		ext := filepath.Ext(name)
		if ext == "" {
			break
		}
		name = name[:len(name)-len(ext)]
	}

	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
