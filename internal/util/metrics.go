package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PaymentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Total number of successful payments",
	})

	PaymentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Total number of failed payment attempts",
	}, []string{"reason"})

	PaymentLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_latency_seconds",
		Help:    "Latency of the full pay workflow",
		Buckets: prometheus.DefBuckets,
	})

	ShipmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipments_created_total",
		Help: "Total number of shipments created",
	})

	ShipmentsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipments_failed_total",
		Help: "Total number of failed shipment creations",
	}, []string{"reason"})

	NotificationsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_dispatched_total",
		Help: "Total number of notifications written to user inboxes",
	}, []string{"kind"})

	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_failed_total",
		Help: "Total number of notification dispatch failures",
	})

	DiscountNotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_notifications_total",
		Help: "Total number of discount-increase notifications fanned out",
	})

	InventoryOversoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_oversold_total",
		Help: "Payments that left a product quantity at or below zero",
	})

	EventPublishFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_publish_failed_total",
		Help: "Total number of event publish failures",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
