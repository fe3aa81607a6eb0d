package structured

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/flow"
)

const userSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0}
  }
}`

var _ = Describe("JSONPath", func() {
	It("should extract the first match", func() {
		j, err := NewJSONPath(JSONPathConfig{Path: "$.user.name"})
		Expect(err).NotTo(HaveOccurred())

		out, err := j.extract(map[string]any{
			"user": map[string]any{"name": "ada"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("ada"))
	})

	It("should extract every match from JSON text", func() {
		j, _ := NewJSONPath(JSONPathConfig{Path: "$.items[*].id", Multiple: true})

		out, err := j.extract(`{"items": [{"id": 1}, {"id": 2}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal([]any{int64(1), int64(2)}))
	})

	It("should fall back to the default", func() {
		j, _ := NewJSONPath(JSONPathConfig{Path: "$.missing", Default: "none"})

		Expect(j.extract(map[string]any{"other": 1})).To(Equal("none"))
	})

	It("should reject invalid paths", func() {
		_, err := NewJSONPath(JSONPathConfig{Path: "$.items["})

		Expect(err).To(MatchError(elements.ErrInvalidConfig))
	})
})

var _ = Describe("SchemaFilter", func() {
	It("should keep only valid packets", func() {
		src, _ := elements.NewSampleSrc(elements.SampleSrcConfig{Sample: []any{
			map[string]any{"name": "ada", "age": 36},
			map[string]any{"age": 3},
			`{"name": "bob"}`,
			map[string]any{"name": "eve", "age": -1},
		}})
		filter, err := NewSchemaFilter(SchemaFilterConfig{Schema: userSchema})
		Expect(err).NotTo(HaveOccurred())
		store, _ := elements.NewStoreSink(elements.StoreSinkConfig{})

		p := flow.MakeBuilder().Build("schema")
		Expect(p.ConnectMany(src, filter, store)).To(Succeed())
		Expect(p.Execute()).To(Succeed())

		Expect(store.Packets()).To(Equal([]flow.Packet{
			map[string]any{"name": "ada", "age": 36},
			`{"name": "bob"}`,
		}))
		Expect(filter.Dropped()).To(Equal(2))
	})

	It("should require exactly one schema source", func() {
		_, err := NewSchemaFilter(SchemaFilterConfig{})
		Expect(err).To(MatchError(elements.ErrInvalidConfig))

		_, err = NewSchemaFilter(SchemaFilterConfig{Schema: "{}", SchemaFile: "x"})
		Expect(err).To(MatchError(elements.ErrInvalidConfig))
	})

	It("should reject a malformed schema", func() {
		_, err := NewSchemaFilter(SchemaFilterConfig{Schema: `{"type": 7}`})

		Expect(err).To(MatchError(elements.ErrInvalidConfig))
	})
})
