package flow

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Queue", func() {
	var (
		q     *Queue
		write WritePad
		read  ReadPad
	)

	BeforeEach(func() {
		q = NewQueue()
		write = q.WritePad()
		read = q.ReadPad()
	})

	It("should start open and empty", func() {
		Expect(q.Writeable()).To(BeTrue())
		Expect(q.Readable()).To(BeTrue())
		Expect(q.Len()).To(Equal(0))
		Expect(q.Finished()).To(BeFalse())
	})

	It("should deliver packets in FIFO order", func() {
		Expect(write.Put(1)).To(Succeed())
		Expect(write.Put("a")).To(Succeed())
		Expect(read.Len()).To(Equal(2))

		res, err := read.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal(Result{Packet: 1, Status: OK}))

		res, err = read.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Packet).To(Equal("a"))
	})

	It("should report Empty while the write side is open", func() {
		res, err := read.Get()

		Expect(err).NotTo(HaveOccurred())
		Expect(res.Status).To(Equal(Empty))
		Expect(res.OK()).To(BeFalse())
	})

	It("should drain buffered packets before reporting EOF", func() {
		Expect(write.Put(1)).To(Succeed())
		write.CloseWrite()

		Expect(write.Writeable()).To(BeFalse())
		Expect(q.Finished()).To(BeFalse())

		res, _ := read.Get()
		Expect(res.Status).To(Equal(OK))

		res, _ = read.Get()
		Expect(res.Status).To(Equal(EOF))
		Expect(q.Finished()).To(BeTrue())
	})

	It("should reject writes after the write side is closed", func() {
		write.CloseWrite()

		Expect(write.Put(1)).To(MatchError(ErrWrite))
		Expect(q.Len()).To(Equal(0))
	})

	It("should reject reads after the read side is closed", func() {
		Expect(write.Put(1)).To(Succeed())
		read.CloseRead()

		Expect(read.Readable()).To(BeFalse())

		_, err := read.Get()
		Expect(err).To(MatchError(ErrRead))

		_, err = read.Flush()
		Expect(err).To(MatchError(ErrRead))
	})

	It("should keep accepting writes after the read side is closed", func() {
		read.CloseRead()

		Expect(write.Put(1)).To(Succeed())
	})

	It("should flush every buffered packet at once", func() {
		for i := 0; i < 3; i++ {
			Expect(write.Put(i)).To(Succeed())
		}

		batch, err := read.Flush()
		Expect(err).NotTo(HaveOccurred())
		Expect(batch.Status).To(Equal(OK))
		Expect(batch.Packets).To(Equal([]Packet{0, 1, 2}))
		Expect(q.Len()).To(Equal(0))

		batch, _ = read.Flush()
		Expect(batch.Status).To(Equal(Empty))
		Expect(batch.Packets).To(BeEmpty())

		write.CloseWrite()
		batch, _ = read.Flush()
		Expect(batch.Status).To(Equal(EOF))
	})
})
