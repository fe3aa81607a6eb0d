package fileio

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

var _ = Describe("FileSrc and FileSink", func() {
	var (
		dir string
		p   *flow.Pipeline
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		p = flow.MakeBuilder().Build("files")
	})

	It("should copy a file", func() {
		in := filepath.Join(dir, "in.txt")
		out := filepath.Join(dir, "out.txt")
		Expect(os.WriteFile(in, []byte("Hi, this is a test."), 0o600)).
			To(Succeed())

		src, err := NewFileSrc(SrcConfig{Path: in})
		Expect(err).NotTo(HaveOccurred())
		sink, err := NewFileSink(SinkConfig{Path: out})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Connect(src, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(os.ReadFile(out)).To(Equal([]byte("Hi, this is a test.")))
	})

	It("should read in chunks", func() {
		in := filepath.Join(dir, "in.txt")
		Expect(os.WriteFile(in, []byte("abcde"), 0o600)).To(Succeed())

		src, err := NewFileSrc(SrcConfig{Path: in, Mode: "r", Bytes: 2})
		Expect(err).NotTo(HaveOccurred())
		sink, _ := elements.NewStoreSink(elements.StoreSinkConfig{})

		Expect(p.Connect(src, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{"ab", "cd", "e"}))
	})

	It("should not split runes in text mode", func() {
		in := filepath.Join(dir, "in.txt")
		Expect(os.WriteFile(in, []byte("héllo, 世界"), 0o600)).To(Succeed())

		src, err := NewFileSrc(SrcConfig{Path: in, Mode: "r", Bytes: 2})
		Expect(err).NotTo(HaveOccurred())
		sink, _ := elements.NewStoreSink(elements.StoreSinkConfig{})

		Expect(p.Connect(src, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{
			"hé", "ll", "o,", " 世", "界",
		}))
		for _, packet := range sink.Packets() {
			Expect(utf8.ValidString(packet.(string))).To(BeTrue())
		}
	})

	It("should close the file when reading fails", func() {
		src, _ := NewFileSrc(SrcConfig{Path: dir, Bytes: 4})
		sink, _ := elements.NewStoreSink(elements.StoreSinkConfig{})
		Expect(p.Connect(src, sink)).To(Succeed())

		Expect(p.Execute()).To(HaveOccurred())
		Expect(src.file).To(BeNil())
	})

	It("should append to a file", func() {
		out := filepath.Join(dir, "out.txt")
		Expect(os.WriteFile(out, []byte("a"), 0o600)).To(Succeed())

		src, _ := elements.NewSampleSrc(elements.SampleSrcConfig{
			Sample: []any{"b", []byte("c")},
		})
		sink, err := NewFileSink(SinkConfig{Path: out, Mode: "a"})
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Connect(src, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(os.ReadFile(out)).To(Equal([]byte("abc")))
	})

	It("should fail on packets that are not bytes", func() {
		src, _ := elements.NewSampleSrc(elements.SampleSrcConfig{
			Sample: []any{1},
		})
		sink, _ := NewFileSink(SinkConfig{Path: filepath.Join(dir, "x")})
		Expect(p.Connect(src, sink)).To(Succeed())

		Expect(p.Execute()).To(MatchError(elements.ErrUnsupportedPacket))
		Expect(sink.file).To(BeNil())
	})

	DescribeTable("should validate the config",
		func(src SrcConfig, sink SinkConfig) {
			var err error
			if src != (SrcConfig{}) {
				_, err = NewFileSrc(src)
			} else {
				_, err = NewFileSink(sink)
			}

			Expect(err).To(MatchError(elements.ErrInvalidConfig))
		},
		Entry("src without path", SrcConfig{Mode: "r"}, SinkConfig{}),
		Entry("src with bad mode", SrcConfig{Path: "x", Mode: "w"}, SinkConfig{}),
		Entry("src with bad size", SrcConfig{Path: "x", Bytes: -2}, SinkConfig{}),
		Entry("sink without path", SrcConfig{}, SinkConfig{Mode: "w"}),
		Entry("sink with bad mode", SrcConfig{}, SinkConfig{Path: "x", Mode: "r"}),
	)
})
