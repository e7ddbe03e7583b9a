package tlb

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/sim/hooking"
	"go.uber.org/mock/gomock"
)

var _ = Describe("TLB", func() {
	var (
		mockCtrl *gomock.Controller
		hook     *MockHook
		tlb      *TLB
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		hook = NewMockHook(mockCtrl)
		tlb = MakeBuilder().Build("TLB")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start with every slot invalid", func() {
		for i := 0; i < NumSlots; i++ {
			_, found := tlb.Search(uint8(i), 0)
			Expect(found).To(BeFalse())
		}
		Expect(tlb.Slots()).To(BeEmpty())
	})

	It("should find an inserted entry", func() {
		outcome := tlb.Insert(5, 0x1234, 0xA0000003)

		entry, found := tlb.Search(5, 0x1234)

		Expect(outcome).To(Equal(InsertNew))
		Expect(found).To(BeTrue())
		Expect(entry).To(Equal(vm.LeafEntry(0xA0000003)))
	})

	It("should miss on a different tag", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)

		_, found := tlb.Search(5, 0x1235)

		Expect(found).To(BeFalse())
	})

	It("should miss on a different index", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)

		_, found := tlb.Search(6, 0x1234)

		Expect(found).To(BeFalse())
	})

	It("should evict the previous occupant of the slot", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)
		outcome := tlb.Insert(5, 0x4321, 0x80000010)

		_, oldFound := tlb.Search(5, 0x1234)
		entry, newFound := tlb.Search(5, 0x4321)

		Expect(outcome).To(Equal(InsertNew))
		Expect(oldFound).To(BeFalse())
		Expect(newFound).To(BeTrue())
		Expect(entry).To(Equal(vm.LeafEntry(0x80000010)))
	})

	It("should report a duplicate but still overwrite", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)
		outcome := tlb.Insert(5, 0x1234, 0xA0000007)

		entry, found := tlb.Search(5, 0x1234)

		Expect(outcome).To(Equal(InsertDuplicate))
		Expect(found).To(BeTrue())
		Expect(entry).To(Equal(vm.LeafEntry(0xA0000007)))
	})

	It("should not report a duplicate after a flush", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)
		tlb.Flush()

		Expect(tlb.Insert(5, 0x1234, 0xA0000003)).To(Equal(InsertNew))
	})

	It("should miss everything after a flush", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)
		tlb.Insert(0, 0, 0x80000000)
		tlb.Insert(255, 0xFFFF, 0x8FFFFFFF)

		tlb.Flush()

		_, found := tlb.Search(5, 0x1234)
		Expect(found).To(BeFalse())
		_, found = tlb.Search(0, 0)
		Expect(found).To(BeFalse())
		_, found = tlb.Search(255, 0xFFFF)
		Expect(found).To(BeFalse())
	})

	It("should be idempotent to flush", func() {
		tlb.Flush()
		tlb.Flush()

		Expect(tlb.Slots()).To(BeEmpty())
	})

	It("should miss everything after a generation flush", func() {
		tlb.Insert(5, 0x1234, 0xA0000003)

		tlb.FlushBefore(1)

		_, found := tlb.Search(5, 0x1234)
		Expect(found).To(BeFalse())
		Expect(tlb.Generation()).To(Equal(uint64(1)))
	})

	It("should mark requests of earlier generations as stale", func() {
		tlb.FlushBefore(2)

		tlb.Atomic(func(s Session) {
			Expect(s.Stale(1)).To(BeTrue())
			Expect(s.Stale(2)).To(BeFalse())
			Expect(s.Stale(3)).To(BeFalse())
		})
	})

	It("should never move the generation back", func() {
		tlb.FlushBefore(3)
		tlb.FlushBefore(2)

		Expect(tlb.Generation()).To(Equal(uint64(3)))
	})

	It("should keep the generation on a plain flush", func() {
		tlb.FlushBefore(4)
		tlb.Flush()

		Expect(tlb.Generation()).To(Equal(uint64(4)))
	})

	It("should list valid slots in index order", func() {
		tlb.Insert(9, 2, 0x80000020)
		tlb.Insert(3, 1, 0x80000010)

		Expect(tlb.Slots()).To(Equal([]Slot{
			{Index: 3, Tag: 1, Entry: 0x80000010},
			{Index: 9, Tag: 2, Entry: 0x80000020},
		}))
	})

	It("should not change state on search", func() {
		tlb.Insert(1, 1, 0x80000010)
		before := tlb.Slots()

		tlb.Search(1, 2)
		tlb.Search(2, 1)

		Expect(tlb.Slots()).To(Equal(before))
	})

	Context("with hooks", func() {
		BeforeEach(func() {
			tlb = MakeBuilder().WithHook(hook).Build("TLB")
		})

		It("should invoke the miss hook", func() {
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosMiss))
				Expect(ctx.Domain).To(BeIdenticalTo(tlb))
				Expect(ctx.Item).To(Equal(Access{Index: 1, Tag: 2}))
			})

			tlb.Search(1, 2)
		})

		It("should invoke insert and hit hooks", func() {
			gomock.InOrder(
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosInsert))
					Expect(ctx.Item.(Access).Outcome).To(Equal(InsertNew))
				}),
				hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
					Expect(ctx.Pos).To(BeIdenticalTo(HookPosHit))
					Expect(ctx.Item.(Access).Entry).
						To(Equal(vm.LeafEntry(0x80000010)))
				}),
			)

			tlb.Insert(1, 2, 0x80000010)
			tlb.Search(1, 2)
		})

		It("should invoke the flush hook", func() {
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosFlush))
			})

			tlb.Flush()
		})
	})

	Context("session", func() {
		It("should search and insert within one session", func() {
			tlb.Atomic(func(s Session) {
				_, found := s.Search(7, 7)
				Expect(found).To(BeFalse())

				s.Insert(7, 7, 0x80000070)

				entry, found := s.Search(7, 7)
				Expect(found).To(BeTrue())
				Expect(entry).To(Equal(vm.LeafEntry(0x80000070)))
			})
		})

		It("should keep flush out of an open session", func() {
			var wg sync.WaitGroup
			inSession := make(chan struct{})
			flushed := make(chan struct{})

			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				tlb.Atomic(func(s Session) {
					close(inSession)
					s.Insert(7, 7, 0x80000070)
					Consistently(flushed).ShouldNot(BeClosed())
					_, found := s.Search(7, 7)
					Expect(found).To(BeTrue())
				})
			}()

			<-inSession
			go func() {
				tlb.Flush()
				close(flushed)
			}()

			wg.Wait()
			Eventually(flushed).Should(BeClosed())
			_, found := tlb.Search(7, 7)
			Expect(found).To(BeFalse())
		})
	})
})
