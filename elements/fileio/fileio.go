// Package fileio provides elements that read and write local files.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

// WholeFile makes a FileSrc emit the whole file as a single packet.
const WholeFile = -1

// SrcConfig configures a FileSrc.
type SrcConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Mode is "rb" to emit []byte packets or "r" to emit strings. Defaults
	// to "rb".
	Mode string `yaml:"mode"`

	// Bytes is the size of each chunk, or WholeFile. Zero means WholeFile.
	// In mode "r" a chunk is extended so that it ends on a rune boundary.
	Bytes int `yaml:"bytes"`
}

// FileSrc emits the content of a file in chunks.
type FileSrc struct {
	flow.ElementBase

	path   string
	text   bool
	bytes  int
	file   *os.File
	reader *bufio.Reader
}

// NewFileSrc creates a FileSrc. The file is opened on the first run.
func NewFileSrc(cfg SrcConfig) (*FileSrc, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: path not specified", elements.ErrInvalidConfig)
	}

	if cfg.Mode == "" {
		cfg.Mode = "rb"
	}

	if cfg.Mode != "r" && cfg.Mode != "rb" {
		return nil, fmt.Errorf("%w: mode must be one of r, rb",
			elements.ErrInvalidConfig)
	}

	if cfg.Bytes == 0 {
		cfg.Bytes = WholeFile
	}

	if cfg.Bytes < 0 && cfg.Bytes != WholeFile {
		return nil, fmt.Errorf("%w: bytes must be greater than 0 or -1",
			elements.ErrInvalidConfig)
	}

	name := cfg.Name
	if name == "" {
		name = "FileSrc"
	}

	return &FileSrc{
		ElementBase: flow.MakeElementBase(name),
		path:        cfg.Path,
		text:        cfg.Mode == "r",
		bytes:       cfg.Bytes,
	}, nil
}

// Run reads and emits one chunk.
func (s *FileSrc) Run() (flow.Step, error) {
	if s.file == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return flow.Idle, err
		}

		s.file = f
		s.reader = bufio.NewReader(f)
	}

	buf, err := s.read()
	if err != nil && !errors.Is(err, io.EOF) {
		return s.fail(err)
	}

	if len(buf) == 0 {
		if err := s.close(); err != nil {
			return flow.Idle, err
		}

		s.Logger().Debug("file read", zap.String("path", s.path))

		return s.Finish()
	}

	var packet flow.Packet = buf
	if s.text {
		packet = string(buf)
	}

	if err := s.Put(packet, flow.DefaultPort); err != nil {
		return s.fail(err)
	}

	return flow.Progressed, nil
}

func (s *FileSrc) read() ([]byte, error) {
	if s.bytes == WholeFile {
		return io.ReadAll(s.reader)
	}

	buf := make([]byte, s.bytes, s.bytes+utf8.UTFMax)
	n, err := io.ReadFull(s.reader, buf)

	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}

	buf = buf[:n]

	if s.text && err == nil {
		return s.completeRune(buf)
	}

	return buf, err
}

// completeRune reads on until the last rune of buf is whole.
func (s *FileSrc) completeRune(buf []byte) ([]byte, error) {
	start := len(buf) - 1
	for start > 0 && start > len(buf)-utf8.UTFMax && !utf8.RuneStart(buf[start]) {
		start--
	}

	for !utf8.FullRune(buf[start:]) {
		b, err := s.reader.ReadByte()
		if errors.Is(err, io.EOF) {
			return buf, nil
		}

		if err != nil {
			return buf, err
		}

		buf = append(buf, b)
	}

	return buf, nil
}

func (s *FileSrc) close() error {
	f := s.file
	s.file = nil
	s.reader = nil

	return f.Close()
}

func (s *FileSrc) fail(err error) (flow.Step, error) {
	_ = s.close()

	return flow.Idle, err
}

// SinkConfig configures a FileSink.
type SinkConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`

	// Mode is one of "w", "wb", "a" and "ab". Defaults to "wb".
	Mode string `yaml:"mode"`
}

// FileSink writes string and []byte packets to a file.
type FileSink struct {
	flow.ElementBase

	path string
	flag int
	file *os.File
}

// NewFileSink creates a FileSink. The file is opened on the first run.
func NewFileSink(cfg SinkConfig) (*FileSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: path not specified", elements.ErrInvalidConfig)
	}

	if cfg.Mode == "" {
		cfg.Mode = "wb"
	}

	flag := os.O_WRONLY | os.O_CREATE

	switch cfg.Mode {
	case "w", "wb":
		flag |= os.O_TRUNC
	case "a", "ab":
		flag |= os.O_APPEND
	default:
		return nil, fmt.Errorf("%w: mode must be one of w, wb, a, ab",
			elements.ErrInvalidConfig)
	}

	name := cfg.Name
	if name == "" {
		name = "FileSink"
	}

	return &FileSink{
		ElementBase: flow.MakeElementBase(name),
		path:        cfg.Path,
		flag:        flag,
	}, nil
}

// Run writes one packet, or closes the file at EOF.
func (s *FileSink) Run() (flow.Step, error) {
	if s.file == nil {
		f, err := os.OpenFile(s.path, s.flag, 0o644)
		if err != nil {
			return flow.Idle, err
		}

		s.file = f
	}

	res, err := s.Get(flow.DefaultPort)
	if err != nil {
		return s.fail(err)
	}

	switch res.Status {
	case flow.Empty:
		return flow.Idle, nil
	case flow.EOF:
		if err := s.close(); err != nil {
			return flow.Idle, err
		}

		return s.Finish()
	}

	switch data := res.Packet.(type) {
	case []byte:
		_, err = s.file.Write(data)
	case string:
		_, err = s.file.WriteString(data)
	default:
		err = fmt.Errorf("%w: %T, expecting string or []byte",
			elements.ErrUnsupportedPacket, res.Packet)
	}

	if err != nil {
		return s.fail(err)
	}

	return flow.Progressed, nil
}

func (s *FileSink) close() error {
	f := s.file
	s.file = nil

	return f.Close()
}

func (s *FileSink) fail(err error) (flow.Step, error) {
	_ = s.close()

	return flow.Idle, err
}
