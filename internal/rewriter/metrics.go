package rewriter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksLabeled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docfix_code_blocks_labeled_total",
		Help: "Code blocks that received a language class, by label.",
	}, []string{"label"})

	blocksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docfix_code_blocks_skipped_total",
		Help: "Code blocks left alone because they already carried a class.",
	})
)
