package elements

import (
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pypes/flow"
)

func mustSample(sample ...any) *SampleSrc {
	src, err := NewSampleSrc(SampleSrcConfig{Sample: sample})
	Expect(err).NotTo(HaveOccurred())

	return src
}

func mustStore() *StoreSink {
	sink, err := NewStoreSink(StoreSinkConfig{})
	Expect(err).NotTo(HaveOccurred())

	return sink
}

func doubleNumbers(p flow.Packet) (flow.Packet, error) {
	if n, ok := p.(int); ok {
		return n * 2, nil
	}

	return p, nil
}

func isEven(p flow.Packet) bool {
	switch v := p.(type) {
	case int:
		return v%2 == 0
	case string:
		n, err := strconv.Atoi(v)
		return err == nil && n%2 == 0
	default:
		return false
	}
}

var _ = Describe("Standard elements in a pipeline", func() {
	var p *flow.Pipeline

	BeforeEach(func() {
		p = flow.MakeBuilder().WithStallLimit(100).Build("test")
	})

	It("should move packets from source to sink", func() {
		sink := mustStore()
		Expect(p.Connect(mustSample(1, "a"), sink)).To(Succeed())

		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{1, "a"}))
	})

	It("should transform every packet", func() {
		trans, err := NewTransformer(TransformerConfig{Transform: doubleNumbers})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, "a", 2), trans, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{2, "a", 4}))
	})

	It("should filter packets and keep their order", func() {
		filt, err := NewFilter(FilterConfig{Filter: isEven})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, "a", 3, "8", 53, 22), filt, sink)).
			To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{"8", 22}))
	})

	It("should filter with a closure", func() {
		filt, err := NewFilter(FilterConfig{
			Filter: func(p flow.Packet) bool { return p == 3 || p == 5 },
		})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, 3, 5, 7, 11), filt, sink)).
			To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{3, 5}))
	})

	It("should add a constant", func() {
		adder, err := NewAdder(AdderConfig{Amount: 1})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, 2, 3), adder, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{2, 3, 4}))
	})

	It("should work as a tee with a single output", func() {
		tee, err := NewTee(TeeConfig{Outputs: 1})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.Connect(mustSample(1, 2, 3), tee)).To(Succeed())
		Expect(p.ConnectPorts(tee, sink, "tee_00", flow.DefaultPort)).
			To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{1, 2, 3}))
	})

	It("should fan out with a tee", func() {
		src := mustSample(1, 2, 3)
		tee, _ := NewTee(TeeConfig{Outputs: 2})
		adder, _ := NewAdder(AdderConfig{Amount: 2})
		sink1, sink2 := mustStore(), mustStore()

		Expect(p.Connect(src, tee)).To(Succeed())
		Expect(p.ConnectPorts(tee, sink1, tee.OutputPort(0), flow.DefaultPort)).
			To(Succeed())
		Expect(p.ConnectPorts(tee, adder, tee.OutputPort(1), flow.DefaultPort)).
			To(Succeed())
		Expect(p.Connect(adder, sink2)).To(Succeed())

		w, err := p.WritePadOf(tee.ID(), "tee_01")
		Expect(err).NotTo(HaveOccurred())
		Expect(w).NotTo(BeNil())

		_, err = p.WritePadOf(tee.ID(), "tee_02")
		Expect(err).To(MatchError(flow.ErrWrite))

		Expect(p.Execute()).To(Succeed())

		Expect(sink1.Packets()).To(Equal([]flow.Packet{1, 2, 3}))
		Expect(sink2.Packets()).To(Equal([]flow.Packet{3, 4, 5}))
	})

	It("should not share mutable packets between tee outputs", func() {
		pt := &point{X: 1, Y: 2}
		record := map[string]any{"tags": []any{"a"}}
		tee, _ := NewTee(TeeConfig{Outputs: 2})
		sink1, sink2 := mustStore(), mustStore()

		Expect(p.Connect(mustSample(pt, record), tee)).To(Succeed())
		Expect(p.ConnectPorts(tee, sink1, tee.OutputPort(0), flow.DefaultPort)).
			To(Succeed())
		Expect(p.ConnectPorts(tee, sink2, tee.OutputPort(1), flow.DefaultPort)).
			To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink1.Packets()).To(HaveLen(2))
		Expect(sink2.Packets()).To(HaveLen(2))
		Expect(sink1.Packets()[0]).To(BeIdenticalTo(pt))
		Expect(sink2.Packets()[0]).NotTo(BeIdenticalTo(pt))
		Expect(sink2.Packets()[0]).To(Equal(pt))

		sink2.Packets()[0].(*point).X = 10
		sink2.Packets()[1].(map[string]any)["tags"].([]any)[0] = "b"

		Expect(pt.X).To(Equal(1))
		Expect(record["tags"]).To(Equal([]any{"a"}))
	})

	It("should merge with a zip", func() {
		src1 := mustSample("a", "b", "c")
		src2 := mustSample("$", "%", "!")
		src3 := mustSample("1", "2", "3")
		zip, err := NewZip(ZipConfig{Inputs: 3})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.ConnectPorts(src1, zip, flow.DefaultPort, "zip_00")).To(Succeed())
		Expect(p.ConnectPorts(src2, zip, flow.DefaultPort, "zip_01")).To(Succeed())
		Expect(p.ConnectPorts(src3, zip, flow.DefaultPort, "zip_02")).To(Succeed())
		Expect(p.Connect(zip, sink)).To(Succeed())

		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(ConsistOf(
			"a", "$", "1", "b", "%", "2", "c", "!", "3"))
		Expect(zip.Pending()).To(BeEmpty())
	})

	It("should keep only the head", func() {
		head, _ := NewHead(HeadConfig{N: 2})
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, 2, 3, 4), head, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{1, 2}))
	})

	It("should pass everything through a head without a limit", func() {
		head, _ := NewHead(HeadConfig{})
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, 2, 3), head, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{1, 2, 3}))
	})

	It("should pack every packet into one", func() {
		packer, _ := NewPacker(PackerConfig{})
		sink := mustStore()

		Expect(p.ConnectMany(mustSample(1, 2, 3), packer, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{[]any{1, 2, 3}}))
	})

	It("should look up elements by name", func() {
		src, _ := NewNullSrc(NullSrcConfig{Name: "null"})
		sink, _ := NewNullSink(NullSinkConfig{Name: "null"})

		Expect(p.Connect(src, sink)).To(Succeed())

		found, _ := p.Lookup("null")
		Expect(found).To(BeIdenticalTo(src))
		found, _ = p.Lookup("null-1")
		Expect(found).To(BeIdenticalTo(sink))

		Expect(p.Execute()).To(Succeed())
	})

	It("should emit generated packets", func() {
		n := 0
		gen, err := NewGeneratorSrc(GeneratorSrcConfig{
			Next: func() (any, bool) {
				n++
				return n, true
			},
			Iterations: 3,
		})
		Expect(err).NotTo(HaveOccurred())
		sink := mustStore()

		Expect(p.Connect(gen, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{1, 2, 3}))
	})

	It("should stop an unbounded generator when it is exhausted", func() {
		values := []any{"x", "y"}
		gen, _ := NewGeneratorSrc(GeneratorSrcConfig{
			Next: func() (any, bool) {
				if len(values) == 0 {
					return nil, false
				}

				v := values[0]
				values = values[1:]

				return v, true
			},
		})
		sink := mustStore()

		Expect(p.Connect(gen, sink)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{"x", "y"}))
	})

	It("should fix and filter dicts", func() {
		fixer, _ := NewDictFixer(DictFixerConfig{
			Values: map[string]any{"a": 0, "c": 3},
		})
		filter, _ := NewDictFilter(DictFilterConfig{Keys: []string{"a", "c"}})
		probe, _ := NewProbe(ProbeConfig{})
		sink := mustStore()

		Expect(p.ConnectMany(
			mustSample(map[string]any{"a": 1, "b": 2}),
			fixer, filter, probe, sink,
		)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(sink.Packets()).To(Equal([]flow.Packet{
			map[string]any{"a": 1, "c": 3},
		}))
		Expect(probe.Seen()).To(Equal(1))
	})

	It("should return the error of a transform", func() {
		fixer, _ := NewDictFixer(DictFixerConfig{})
		Expect(p.ConnectMany(mustSample(1), fixer, mustStore())).To(Succeed())

		err := p.Execute()

		Expect(err).To(MatchError(ErrUnsupportedPacket))
	})
})
