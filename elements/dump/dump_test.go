package dump

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

var _ = Describe("Dump", func() {
	var path string

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "packets.dump")
	})

	roundTrip := func(compress bool) []flow.Packet {
		writer := flow.MakeBuilder().Build("write")
		src, _ := elements.NewSampleSrc(elements.SampleSrcConfig{
			Sample: []any{1, "a", map[string]any{"k": true}},
		})
		sink, err := NewDumpSink(Config{Path: path, Compress: compress})
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Connect(src, sink)).To(Succeed())
		Expect(writer.Execute()).To(Succeed())

		reader := flow.MakeBuilder().Build("read")
		dumpSrc, err := NewDumpSrc(Config{Path: path, Compress: compress})
		Expect(err).NotTo(HaveOccurred())
		store, _ := elements.NewStoreSink(elements.StoreSinkConfig{})
		Expect(reader.Connect(dumpSrc, store)).To(Succeed())
		Expect(reader.Execute()).To(Succeed())

		return store.Packets()
	}

	It("should replay packets in the stored order", func() {
		Expect(roundTrip(false)).To(Equal([]flow.Packet{
			int64(1), "a", map[string]any{"k": true},
		}))
	})

	It("should replay compressed packets", func() {
		Expect(roundTrip(true)).To(HaveLen(3))
	})

	It("should not decode a compressed dump as plain JSON", func() {
		data, err := Encode([]flow.Packet{"x"}, true)
		Expect(err).NotTo(HaveOccurred())

		_, err = Decode(data, false)
		Expect(err).To(HaveOccurred())

		packets, err := Decode(data, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(packets).To(Equal([]flow.Packet{"x"}))
	})

	It("should write an empty array without packets", func() {
		data, err := Encode(nil, false)

		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("[]"))
	})

	It("should require a path", func() {
		_, err := NewDumpSrc(Config{})
		Expect(err).To(MatchError(elements.ErrInvalidConfig))

		_, err = NewDumpSink(Config{})
		Expect(err).To(MatchError(elements.ErrInvalidConfig))
	})
})
