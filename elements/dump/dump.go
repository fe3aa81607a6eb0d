// Package dump stores packets in a file and replays them. Packets are
// encoded as a JSON array, optionally compressed with zstd.
package dump

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

var codec = sonic.Config{
	UseInt64:         true,
	EscapeHTML:       false,
	SortMapKeys:      true,
	ValidateString:   true,
	CompactMarshaler: true,
}.Froze()

// Config configures a DumpSrc or a DumpSink.
type Config struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Compress bool   `yaml:"compress"`
}

func (c Config) validate() error {
	if c.Path == "" {
		return fmt.Errorf("%w: path not specified", elements.ErrInvalidConfig)
	}

	return nil
}

// Encode serializes packets.
func Encode(packets []flow.Packet, compress bool) ([]byte, error) {
	if packets == nil {
		packets = []flow.Packet{}
	}

	data, err := codec.Marshal(packets)
	if err != nil {
		return nil, err
	}

	if !compress {
		return data, nil
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

// Decode is the inverse of Encode. Integers come back as int64.
func Decode(data []byte, compressed bool) ([]flow.Packet, error) {
	if compressed {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()

		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, err
		}
	}

	var packets []flow.Packet
	if err := codec.Unmarshal(data, &packets); err != nil {
		return nil, err
	}

	return packets, nil
}

// DumpSink collects every packet and writes them to a file at EOF.
type DumpSink struct {
	flow.ElementBase

	cfg     Config
	packets []flow.Packet
}

// NewDumpSink creates a DumpSink.
func NewDumpSink(cfg Config) (*DumpSink, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Name == "" {
		cfg.Name = "DumpSink"
	}

	return &DumpSink{
		ElementBase: flow.MakeElementBase(cfg.Name),
		cfg:         cfg,
	}, nil
}

// Run collects one packet, or writes the file at EOF.
func (s *DumpSink) Run() (flow.Step, error) {
	res, err := s.Get(flow.DefaultPort)
	if err != nil {
		return flow.Idle, err
	}

	switch res.Status {
	case flow.Empty:
		return flow.Idle, nil
	case flow.EOF:
		if err := s.write(); err != nil {
			return flow.Idle, err
		}

		return s.Finish()
	}

	s.packets = append(s.packets, res.Packet)

	return flow.Progressed, nil
}

func (s *DumpSink) write() error {
	data, err := Encode(s.packets, s.cfg.Compress)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.cfg.Path, err)
	}

	if err := os.WriteFile(s.cfg.Path, data, 0o644); err != nil {
		return err
	}

	s.Logger().Debug("dump written",
		zap.String("path", s.cfg.Path),
		zap.Int("packets", len(s.packets)),
		zap.Int("bytes", len(data)))

	return nil
}

// DumpSrc replays the packets of a file written by a DumpSink, in the order
// they were stored.
type DumpSrc struct {
	flow.ElementBase

	cfg     Config
	loaded  bool
	packets []flow.Packet
}

// NewDumpSrc creates a DumpSrc. The file is read on the first run.
func NewDumpSrc(cfg Config) (*DumpSrc, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Name == "" {
		cfg.Name = "DumpSrc"
	}

	return &DumpSrc{
		ElementBase: flow.MakeElementBase(cfg.Name),
		cfg:         cfg,
	}, nil
}

// Run emits the next stored packet.
func (s *DumpSrc) Run() (flow.Step, error) {
	if !s.loaded {
		data, err := os.ReadFile(s.cfg.Path)
		if err != nil {
			return flow.Idle, err
		}

		s.packets, err = Decode(data, s.cfg.Compress)
		if err != nil {
			return flow.Idle, fmt.Errorf("decode %s: %w", s.cfg.Path, err)
		}

		s.loaded = true
	}

	if len(s.packets) == 0 {
		return s.Finish()
	}

	if err := s.Put(s.packets[0], flow.DefaultPort); err != nil {
		return flow.Idle, err
	}

	s.packets = s.packets[1:]

	return flow.Progressed, nil
}
