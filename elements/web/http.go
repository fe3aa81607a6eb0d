package web

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

// HTTPSrcConfig configures an HTTPSrc.
type HTTPSrcConfig struct {
	Name   string       `yaml:"name"`
	URL    string       `yaml:"url"`
	Client ClientConfig `yaml:"client"`

	// Getter replaces the client built from Client.
	Getter Getter `yaml:"-"`
}

// HTTPSrc downloads one URL, emits the body as []byte and finishes.
type HTTPSrc struct {
	flow.ElementBase

	url    string
	getter Getter
}

// NewHTTPSrc creates an HTTPSrc.
func NewHTTPSrc(cfg HTTPSrcConfig) (*HTTPSrc, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: url not specified", elements.ErrInvalidConfig)
	}

	if cfg.Name == "" {
		cfg.Name = "HTTPSrc"
	}

	if cfg.Getter == nil {
		cfg.Getter = NewClient(cfg.Client)
	}

	return &HTTPSrc{
		ElementBase: flow.MakeElementBase(cfg.Name),
		url:         cfg.URL,
		getter:      cfg.Getter,
	}, nil
}

// Run downloads the URL.
func (s *HTTPSrc) Run() (flow.Step, error) {
	body, err := s.getter.Get(context.Background(), s.url)
	if err != nil {
		return flow.Idle, err
	}

	s.Logger().Debug("fetched",
		zap.String("url", s.url),
		zap.Int("bytes", len(body)))

	if err := s.Put(body, flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	return s.Finish()
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	Name   string       `yaml:"name"`
	Client ClientConfig `yaml:"client"`
	Getter Getter       `yaml:"-"`
}

// Fetcher turns URL packets into the bodies they point to.
type Fetcher struct {
	*elements.Transformer

	getter Getter
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) (*Fetcher, error) {
	if cfg.Name == "" {
		cfg.Name = "Fetcher"
	}

	if cfg.Getter == nil {
		cfg.Getter = NewClient(cfg.Client)
	}

	f := &Fetcher{getter: cfg.Getter}

	t, err := elements.NewTransformer(elements.TransformerConfig{
		Name:      cfg.Name,
		Transform: f.fetch,
	})
	if err != nil {
		return nil, err
	}

	f.Transformer = t

	return f, nil
}

func (f *Fetcher) fetch(packet flow.Packet) (flow.Packet, error) {
	url, ok := packet.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T, expecting an URL string",
			elements.ErrUnsupportedPacket, packet)
	}

	return f.getter.Get(context.Background(), url)
}
