package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Loader reads narrative text from files or stdin. HTML input is reduced to
// its visible text so the offsets the pipeline reports index something a
// reviewer can actually read.
type Loader struct {
	maxBytes int64
}

// NewLoader creates a new Loader with the given size limit
func NewLoader(maxBytes int64) *Loader {
	return &Loader{maxBytes: maxBytes}
}

// LoadResult contains the loaded narrative and its subject
type LoadResult struct {
	Text    string
	Subject string
}

// Load reads the narrative at path; "-" reads stdin.
func (l *Loader) Load(path string) (*LoadResult, error) {
	var r io.Reader
	subject := "stdin"

	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open narrative: %w", err)
		}
		defer f.Close()
		r = f
		subject = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	limited := io.LimitReader(r, l.maxBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read narrative: %w", err)
	}
	if int64(len(body)) > l.maxBytes {
		return nil, fmt.Errorf("narrative exceeds %d bytes", l.maxBytes)
	}

	text := string(body)
	if looksLikeHTML(path, text) {
		text, err = extractVisibleText(text)
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
	}

	return &LoadResult{Text: text, Subject: subject}, nil
}

func looksLikeHTML(path, text string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	head := strings.ToLower(text)
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html")
}

// extractVisibleText walks the HTML tree collecting text nodes, skipping
// script and style subtrees. Block elements become sentence breaks.
func extractVisibleText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "p", "div", "br", "li", "tr":
				buf.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}
