package loader

import (
	"github.com/sarchlab/pypes/elements"
	"github.com/sarchlab/pypes/elements/dump"
	"github.com/sarchlab/pypes/elements/fileio"
	"github.com/sarchlab/pypes/elements/media"
	"github.com/sarchlab/pypes/elements/structured"
	"github.com/sarchlab/pypes/elements/web"
)

// Categories of the built-in element types.
const (
	CategorySource    = "source"
	CategorySink      = "sink"
	CategoryTransform = "transform"
	CategoryRouting   = "routing"
)

// Builtin returns a registry with every element type that can be declared
// in a definition.
func Builtin() *Registry {
	r := NewRegistry()

	for _, t := range builtinTypes() {
		r.Register(t)
	}

	return r
}

func builtinTypes() []ElementType {
	return []ElementType{
		{
			Type: "SampleSrc", Category: CategorySource,
			Description: "Emits a fixed list of packets",
			New:         Make(elements.NewSampleSrc),
		},
		{
			Type: "NullSrc", Category: CategorySource,
			Description: "Emits nothing",
			New:         Make(elements.NewNullSrc),
		},
		{
			Type: "FileSrc", Category: CategorySource,
			Description: "Reads a file in chunks",
			New:         Make(fileio.NewFileSrc),
		},
		{
			Type: "DumpSrc", Category: CategorySource,
			Description: "Emits the packets stored by a DumpSink",
			New:         Make(dump.NewDumpSrc),
		},
		{
			Type: "HTTPSrc", Category: CategorySource,
			Description: "Downloads one URL",
			New:         Make(web.NewHTTPSrc),
		},
		{
			Type: "NullSink", Category: CategorySink,
			Description: "Discards every packet",
			New:         Make(elements.NewNullSink),
		},
		{
			Type: "StoreSink", Category: CategorySink,
			Description: "Keeps every packet in memory",
			New:         Make(elements.NewStoreSink),
		},
		{
			Type: "FileSink", Category: CategorySink,
			Description: "Writes string and byte packets to a file",
			New:         Make(fileio.NewFileSink),
		},
		{
			Type: "DumpSink", Category: CategorySink,
			Description: "Stores every packet in a file at EOF",
			New:         Make(dump.NewDumpSink),
		},
		{
			Type: "Packer", Category: CategoryTransform,
			Description: "Emits all packets as one list at EOF",
			New:         Make(elements.NewPacker),
		},
		{
			Type: "Adder", Category: CategoryTransform,
			Description: "Adds a constant to numbers or appends to strings",
			New:         Make(elements.NewAdder),
		},
		{
			Type: "DictFixer", Category: CategoryTransform,
			Description: "Sets default values on map packets",
			New:         Make(elements.NewDictFixer),
		},
		{
			Type: "DictFilter", Category: CategoryTransform,
			Description: "Keeps the listed keys of map packets",
			New:         Make(elements.NewDictFilter),
		},
		{
			Type: "Probe", Category: CategoryTransform,
			Description: "Logs packets passing through",
			New:         Make(elements.NewProbe),
		},
		{
			Type: "Head", Category: CategoryTransform,
			Description: "Lets the first N packets through",
			New:         Make(elements.NewHead),
		},
		{
			Type: "Fetcher", Category: CategoryTransform,
			Description: "Replaces URL packets with the bodies they point to",
			New:         Make(web.NewFetcher),
		},
		{
			Type: "Soup", Category: CategoryTransform,
			Description: "Selects HTML with a CSS selector",
			New:         Make(web.NewSoup),
		},
		{
			Type: "XPath", Category: CategoryTransform,
			Description: "Selects HTML with an XPath expression",
			New:         Make(web.NewXPath),
		},
		{
			Type: "JSONPath", Category: CategoryTransform,
			Description: "Extracts values with a JSONPath expression",
			New:         Make(structured.NewJSONPath),
		},
		{
			Type: "SchemaFilter", Category: CategoryTransform,
			Description: "Keeps packets valid under a JSON Schema",
			New:         Make(structured.NewSchemaFilter),
		},
		{
			Type: "Normalizer", Category: CategoryTransform,
			Description: "Rewrites the base name of file paths",
			New:         Make(media.NewNormalizer),
		},
		{
			Type: "NearestMatch", Category: CategoryTransform,
			Description: "Replaces names with the closest candidate",
			New:         Make(media.NewNearestMatch),
		},
		{
			Type: "GuessParser", Category: CategoryTransform,
			Description: "Parses media file names into metadata",
			New:         Make(media.NewGuessParser),
		},
		{
			Type: "Tee", Category: CategoryRouting,
			Description: "Copies every packet to several outputs",
			New:         Make(elements.NewTee),
		},
		{
			Type: "Zip", Category: CategoryRouting,
			Description: "Merges several inputs",
			New:         Make(elements.NewZip),
		},
	}
}
