package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"grasskernel/kernel"
)

// kernelCollector implements prometheus.Collector, sampling a Kernel's
// live queue depths, process count, and heap usage at scrape time rather
// than tracking gauges via Set calls scattered through the scheduler.
type kernelCollector struct {
	k *kernel.Kernel

	runQDepth     *prometheus.Desc
	readyQDepth   *prometheus.Desc
	heapFreeBytes *prometheus.Desc
	procCount     *prometheus.Desc
}

func newKernelCollector(k *kernel.Kernel) *kernelCollector {
	return &kernelCollector{
		k: k,
		runQDepth: prometheus.NewDesc(
			"grasskernel_runq_depth",
			"Current number of PCBs parked in runQ.",
			nil, nil,
		),
		readyQDepth: prometheus.NewDesc(
			"grasskernel_readyq_depth",
			"Current number of PCBs parked in readyQ.",
			nil, nil,
		),
		heapFreeBytes: prometheus.NewDesc(
			"grasskernel_heap_free_bytes",
			"Current free bytes across the kernel heap's free list.",
			nil, nil,
		),
		procCount: prometheus.NewDesc(
			"grasskernel_process_count",
			"Current number of live processes in the process table.",
			nil, nil,
		),
	}
}

func (c *kernelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.runQDepth
	ch <- c.readyQDepth
	ch <- c.heapFreeBytes
	ch <- c.procCount
}

func (c *kernelCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.runQDepth, prometheus.GaugeValue, float64(c.k.State.Scheduler.RunQ.Length()))
	ch <- prometheus.MustNewConstMetric(c.readyQDepth, prometheus.GaugeValue, float64(c.k.State.Scheduler.ReadyQ.Length()))
	ch <- prometheus.MustNewConstMetric(c.heapFreeBytes, prometheus.GaugeValue, float64(c.k.Heap.FreeBytes()))
	ch <- prometheus.MustNewConstMetric(c.procCount, prometheus.GaugeValue, float64(c.k.State.ProcSet.Len()))
}
