package naming

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var r *Registry[int]

	BeforeEach(func() {
		r = NewRegistry[int]()
	})

	It("should keep the name of the first registration", func() {
		Expect(r.Register("src", 1)).To(Equal("src"))

		v, found := r.Lookup("src")
		Expect(found).To(BeTrue())
		Expect(v).To(Equal(1))
	})

	It("should add numeric suffixes to colliding names", func() {
		Expect(r.Register("x", 1)).To(Equal("x"))
		Expect(r.Register("x", 2)).To(Equal("x-1"))
		Expect(r.Register("x", 3)).To(Equal("x-2"))

		Expect(r.Names()).To(Equal([]string{"x", "x-1", "x-2"}))

		v, _ := r.Lookup("x-2")
		Expect(v).To(Equal(3))
	})

	It("should skip suffixes that are already taken", func() {
		r.Register("x-1", 1)
		r.Register("x", 2)

		Expect(r.Register("x", 3)).To(Equal("x-2"))
		Expect(r.Len()).To(Equal(3))
	})

	It("should report missing names", func() {
		_, found := r.Lookup("nope")
		Expect(found).To(BeFalse())
	})
})

var _ = Describe("NameMustBeValid", func() {
	It("should reject empty names", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should reject names with spaces", func() {
		Expect(func() { NameMustBeValid("my element") }).To(Panic())
	})

	It("should accept plain names", func() {
		Expect(func() { NameMustBeValid("Tee-1") }).NotTo(Panic())
	})
})
