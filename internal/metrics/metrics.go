package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Storefront struct {
	OrdersPlaced       prometheus.Counter
	CooldownRejections prometheus.Counter
	StoreWriteFailures prometheus.Counter
}

func NewStorefront(reg prometheus.Registerer) *Storefront {
	m := &Storefront{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Orders successfully written to the store.",
		}),
		CooldownRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "cooldown_rejections_total",
			Help:      "Submissions rejected because the cooldown had not elapsed.",
		}),
		StoreWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "store_write_failures_total",
			Help:      "Order writes that failed at the store layer.",
		}),
	}
	reg.MustRegister(m.OrdersPlaced, m.CooldownRejections, m.StoreWriteFailures)
	return m
}

type Board struct {
	Refreshes       prometheus.Counter
	MalformedOrders prometheus.Counter
}

func NewBoard(reg prometheus.Registerer) *Board {
	m := &Board{
		Refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "refreshes_total",
			Help:      "Full-snapshot refreshes applied to the board.",
		}),
		MalformedOrders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "board",
			Name:      "malformed_orders_total",
			Help:      "Records skipped during flatten because items were missing.",
		}),
	}
	reg.MustRegister(m.Refreshes, m.MalformedOrders)
	return m
}

func Handler() http.Handler { return promhttp.Handler() }
