package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/circuit-breaker/internal/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewMetrics()
	})

	Describe("recording call outcomes", func() {
		It("should count successes and failures per breaker", func() {
			m.RecordSuccess("payments")
			m.RecordSuccess("payments")
			m.RecordFailure("payments")
			m.RecordSuccess("inventory")

			snap := m.Snapshot()
			Expect(snap.Breakers["payments"].Successes).To(Equal(int64(2)))
			Expect(snap.Breakers["payments"].Failures).To(Equal(int64(1)))
			Expect(snap.Breakers["inventory"].Successes).To(Equal(int64(1)))
			Expect(snap.TotalCalls).To(Equal(int64(4)))
		})

		It("should count fast-fail rejections separately from calls", func() {
			m.RecordRejection("payments")
			m.RecordRejection("payments")

			snap := m.Snapshot()
			Expect(snap.Breakers["payments"].Rejections).To(Equal(int64(2)))
			Expect(snap.TotalCalls).To(BeZero())
			Expect(snap.TotalRejections).To(Equal(int64(2)))
		})
	})

	Describe("recording transitions", func() {
		It("should track the latest state and transition time", func() {
			at := time.Now()
			m.RecordTransition("payments", "OPEN", at)
			m.RecordTransition("payments", "HALF-OPEN", at.Add(30*time.Second))

			snap := m.Snapshot()
			Expect(snap.Breakers["payments"].State).To(Equal("HALF-OPEN"))
			Expect(snap.Breakers["payments"].Transitions).To(Equal(int64(2)))
			Expect(snap.Breakers["payments"].LastTransition).To(Equal(at.Add(30 * time.Second)))
		})

		It("should report CLOSED for breakers that never transitioned", func() {
			m.RecordSuccess("payments")

			snap := m.Snapshot()
			Expect(snap.Breakers["payments"].State).To(Equal("CLOSED"))
		})
	})

	Describe("Snapshot", func() {
		It("should report uptime", func() {
			snap := m.Snapshot()
			Expect(snap.Uptime).To(BeNumerically(">=", 0))
		})

		It("should be empty when nothing was recorded", func() {
			snap := m.Snapshot()
			Expect(snap.Breakers).To(BeEmpty())
			Expect(snap.TotalCalls).To(BeZero())
		})
	})
})
