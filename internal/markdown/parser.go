package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			&frontmatter.Extender{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

// Parse renders markdown to an HTML fragment
func (p *Parser) Parse(source []byte) ([]byte, error) {
	content, _, err := p.ParseWithFrontmatter(source)
	return content, err
}

func (p *Parser) ParseWithFrontmatter(source []byte) (content []byte, meta map[string]any, err error) {
	context := parser.NewContext()
	var buf bytes.Buffer

	err = p.md.Convert(source, &buf, parser.WithContext(context))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	meta = make(map[string]any)
	data := frontmatter.Get(context)
	if data != nil {
		err = data.Decode(&meta)
		if err != nil {
			meta = make(map[string]any)
		}
	}

	return buf.Bytes(), meta, nil
}

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 48rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.6; }
pre, code { background: #f4f4f5; border-radius: 4px; }
pre { padding: 0.75rem; overflow-x: auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #d4d4d8; padding: 0.25rem 0.5rem; }
</style>
</head>
<body>
<article>
{{.Body}}
</article>
</body>
</html>
`))

// Document writes a standalone HTML page. The title comes from the "title"
// frontmatter key, or fallbackTitle when there is none.
func (p *Parser) Document(w io.Writer, source []byte, fallbackTitle string) error {
	content, meta, err := p.ParseWithFrontmatter(source)
	if err != nil {
		return err
	}

	title := fallbackTitle
	if t, ok := meta["title"].(string); ok && t != "" {
		title = t
	}

	err = documentTmpl.Execute(w, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(content),
	})
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (p *Parser) ConvertReader(r io.Reader, w io.Writer, fallbackTitle string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read markdown: %w", err)
	}
	return p.Document(w, data, fallbackTitle)
}
