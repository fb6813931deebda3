package locator

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes the endpoint-cache hit counters of a set of strategies
// as a prometheus metric, labeled by keyspace and strategy name.
//
// It reads each strategy's counter at scrape time, so it must be scraped
// from the execution context that owns the strategies.
type Collector struct {
	strategies []*Strategy
	hits       *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

func NewCollector(strategies ...*Strategy) *Collector {
	return &Collector{
		strategies: strategies,
		hits: prometheus.NewDesc(
			"locator_endpoint_cache_hits_total",
			"Endpoint lookups served from the per-strategy cache.",
			[]string{"keyspace", "strategy"},
			nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.strategies {
		ch <- prometheus.MustNewConstMetric(
			c.hits, prometheus.CounterValue, float64(s.CacheHits()),
			s.Keyspace(), s.PolicyName(),
		)
	}
}
