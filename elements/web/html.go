package web

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

func htmlBytes(packet flow.Packet) ([]byte, error) {
	switch v := packet.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%w: %T, expecting HTML as string or []byte",
			elements.ErrUnsupportedPacket, packet)
	}
}

// SoupConfig configures a Soup.
type SoupConfig struct {
	Name string `yaml:"name"`

	// Selector is a CSS selector. Without it the whole document is emitted.
	Selector string `yaml:"selector"`

	// Text emits the text of matches instead of their HTML.
	Text bool `yaml:"text"`
}

// Soup selects parts of HTML documents with CSS selectors. Each packet
// becomes a []string with one entry per match.
type Soup struct {
	*elements.Transformer

	selector string
	text     bool
}

// NewSoup creates a Soup.
func NewSoup(cfg SoupConfig) (*Soup, error) {
	if cfg.Name == "" {
		cfg.Name = "Soup"
	}

	s := &Soup{selector: cfg.Selector, text: cfg.Text}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      cfg.Name,
		Transform: s.selectNodes,
	})
	if err != nil {
		return nil, err
	}

	s.Transformer = t

	return s, nil
}

func (s *Soup) selectNodes(packet flow.Packet) (flow.Packet, error) {
	data, err := htmlBytes(packet)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if s.selector == "" {
		return doc.Html()
	}

	matches := []string{}

	var selectErr error

	doc.Find(s.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if s.text {
			matches = append(matches, strings.TrimSpace(sel.Text()))
			return true
		}

		html, err := goquery.OuterHtml(sel)
		if err != nil {
			selectErr = err
			return false
		}

		matches = append(matches, html)

		return true
	})

	if selectErr != nil {
		return nil, selectErr
	}

	return matches, nil
}

// XPathConfig configures an XPath.
type XPathConfig struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
	Text bool   `yaml:"text"`
}

// XPath selects parts of HTML documents with an XPath expression. Each
// packet becomes a []string with one entry per match.
type XPath struct {
	*elements.Transformer

	expr *xpath.Expr
	text bool
}

// NewXPath creates an XPath. The expression is compiled once.
func NewXPath(cfg XPathConfig) (*XPath, error) {
	if cfg.Expr == "" {
		return nil, fmt.Errorf("%w: xpath expression not specified",
			elements.ErrInvalidConfig)
	}

	expr, err := xpath.Compile(cfg.Expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", elements.ErrInvalidConfig, err)
	}

	if cfg.Name == "" {
		cfg.Name = "XPath"
	}

	x := &XPath{expr: expr, text: cfg.Text}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      cfg.Name,
		Transform: x.query,
	})
	if err != nil {
		return nil, err
	}

	x.Transformer = t

	return x, nil
}

func (x *XPath) query(packet flow.Packet) (flow.Packet, error) {
	data, err := htmlBytes(packet)
	if err != nil {
		return nil, err
	}

	doc, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	matches := []string{}

	for _, node := range htmlquery.QuerySelectorAll(doc, x.expr) {
		if x.text {
			matches = append(matches, strings.TrimSpace(htmlquery.InnerText(node)))
			continue
		}

		matches = append(matches, htmlquery.OutputHTML(node, true))
	}

	return matches, nil
}
