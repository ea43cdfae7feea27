// (c) 2023, Datum Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package datumvm

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	blksBuilt    prometheus.Counter
	blksParsed   prometheus.Counter
	blksAccepted prometheus.Counter
	blksRejected prometheus.Counter
	mempoolLen   prometheus.Gauge
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		blksBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blks_built",
			Help:      "Number of blocks built by this node",
		}),
		blksParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blks_parsed",
			Help:      "Number of blocks parsed from bytes",
		}),
		blksAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blks_accepted",
			Help:      "Number of blocks accepted",
		}),
		blksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blks_rejected",
			Help:      "Number of blocks rejected",
		}),
		mempoolLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mempool_len",
			Help:      "Number of datums waiting to be put in a block",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.blksBuilt),
		registerer.Register(m.blksParsed),
		registerer.Register(m.blksAccepted),
		registerer.Register(m.blksRejected),
		registerer.Register(m.mempoolLen),
	)
	return m, errs.Err
}
