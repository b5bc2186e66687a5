package text

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Document is loaded prose ready for chunking.
type Document struct {
	Source string
	Text   string
}

type Core struct {
	primary  TextExtractor
	fallback TextExtractor
	logger   *zap.Logger
}

func NewCore(logger *zap.Logger) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Core{
		primary:  NewReadabilityExtractor(),
		fallback: NewContentExtractor(),
		logger:   logger,
	}
}

// Load reads path, or standard input when path is "-" or empty.
func (c *Core) Load(path string, stdin io.Reader) (Document, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return Document{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return Document{Source: "stdin", Text: string(data)}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	if isHTML(path) {
		content, err = c.extractHTML(content, path)
		if err != nil {
			return Document{}, err
		}
	}
	return Document{Source: path, Text: content}, nil
}

// LoadDir loads every supported file under dir in lexical order. Files that
// fail to load are logged and skipped.
func (c *Core) LoadDir(dir string) ([]Document, error) {
	var docs []Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		doc, err := c.Load(path, nil)
		if err != nil {
			c.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	return docs, nil
}

func (c *Core) extractHTML(content, path string) (string, error) {
	source := "file://" + filepath.ToSlash(path)

	text, err := c.primary.ExtractText(content, source)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if err != nil {
		c.logger.Debug("readability extraction failed, using fallback",
			zap.String("path", path), zap.Error(err))
	}

	text, err = c.fallback.ExtractText(content, source)
	if err != nil {
		return "", errors.Join(fmt.Errorf("failed to extract text from %s", path), err)
	}
	return text, nil
}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".text", ".html", ".htm":
		return true
	}
	return false
}

func isHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}
