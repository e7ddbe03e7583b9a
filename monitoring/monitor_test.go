package monitoring

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmusim/mem/vm"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/sarchlab/mmusim/mem/vm/tlb"
	"github.com/sarchlab/mmusim/memory"
)

var _ = Describe("Monitor", func() {
	var (
		m          *Monitor
		cache      *tlb.TLB
		counter    *mmu.OutcomeCounter
		translator *mmu.ProtectedTranslator
		server     *httptest.Server
	)

	get := func(path string) (int, []byte) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())

		return rsp.StatusCode, body
	}

	BeforeEach(func() {
		view := memory.NewWordView(memory.NewStorage(1 << 16))
		writer := vm.NewPageTableWriter(view, 0x1000, 1<<16)
		root, err := writer.AllocTable()
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.MapProtected(root, 0x01020340, 0x80000006)).To(Succeed())

		counter = mmu.NewOutcomeCounter()
		cache = tlb.MakeBuilder().WithHook(counter).Build("MMU.TLB")
		translator = mmu.MakeBuilder().
			WithMemory(view).
			WithTLB(cache).
			WithHook(counter).
			BuildProtected("MMU")
		translator.Resolve(vm.Context{RootTable: root}, 0x01020340, vm.AccessRead)

		m = NewMonitor()
		m.RegisterComponent(translator)
		m.RegisterComponent(cache)
		m.RegisterCounter(counter)

		server = httptest.NewServer(m.Router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should list components", func() {
		status, body := get("/api/list_components")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`["MMU", "MMU.TLB"]`))
	})

	It("should dump the valid TLB slots", func() {
		status, body := get("/api/tlb/MMU.TLB")

		Expect(status).To(Equal(http.StatusOK))

		var slots []tlb.Slot
		Expect(json.Unmarshal(body, &slots)).To(Succeed())
		Expect(slots).To(Equal([]tlb.Slot{
			{Index: 0x03, Tag: 0x0102, Entry: 0x80000006},
		}))
	})

	It("should refuse to dump a component that is not a TLB", func() {
		status, _ := get("/api/tlb/MMU")

		Expect(status).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should report unknown components", func() {
		status, body := get("/api/component/L2")

		Expect(status).To(Equal(http.StatusNotFound))
		Expect(string(body)).To(Equal("Component not found"))
	})

	It("should serialize a component", func() {
		status, body := get("/api/component/MMU.TLB")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).NotTo(BeEmpty())
	})

	It("should report translation stats", func() {
		status, body := get("/api/stats")

		Expect(status).To(Equal(http.StatusOK))

		var stats mmu.Stats
		Expect(json.Unmarshal(body, &stats)).To(Succeed())
		Expect(stats.Translations).To(Equal(uint64(1)))
		Expect(stats.Outcomes).To(HaveKeyWithValue("success", uint64(1)))
		Expect(stats.TLBMisses).To(Equal(uint64(1)))
		Expect(stats.TLBInserts).To(Equal(uint64(1)))
	})

	It("should report progress", func() {
		bar := m.CreateProgressBar("replay", 10)
		bar.IncrementFinished(4)
		done := m.CreateProgressBar("done", 1)
		m.CompleteProgressBar(done)

		status, body := get("/api/progress")

		Expect(status).To(Equal(http.StatusOK))

		var bars []map[string]any
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]).To(HaveKeyWithValue("name", "replay"))
		Expect(bars[0]).To(HaveKeyWithValue("finished", float64(4)))
	})

	It("should report resource usage", func() {
		status, body := get("/api/resource")

		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("memory_size"))
	})

	It("should reject a bad field request", func() {
		status, _ := get("/api/field/notjson")

		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("should fall back to a random port for reserved ports", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
	})
})
