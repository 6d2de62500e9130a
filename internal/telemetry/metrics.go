package telemetry

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/metric"
)

var (
	initMetricsOnce      sync.Once
	apiRequestsCounter   metric.Int64Counter
	tokenRefreshCounter  metric.Int64Counter
	notificationsCounter metric.Int64Counter
	socketReconnects     metric.Int64Counter
)

// InitMetrics creates the meter instruments. Safe to call multiple times;
// only runs once. Call after InitMeterProvider.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		apiRequestsCounter, err = m.Int64Counter("smm_api_requests_total", metric.WithDescription("Total API requests issued"))
		if err != nil {
			return
		}
		tokenRefreshCounter, err = m.Int64Counter("smm_token_refreshes_total", metric.WithDescription("Total token refresh attempts by outcome"))
		if err != nil {
			return
		}
		notificationsCounter, err = m.Int64Counter("smm_notifications_total", metric.WithDescription("Total notification events received"))
		if err != nil {
			return
		}
		socketReconnects, err = m.Int64Counter("smm_socket_reconnects_total", metric.WithDescription("Total notification socket reconnect attempts"))
	})
	return err
}

// RecordAPIRequest records one API request and its response status.
func RecordAPIRequest(ctx context.Context, method, route string, status int) {
	if apiRequestsCounter == nil {
		return
	}
	apiRequestsCounter.Add(ctx, 1, metric.WithAttributes(
		AttrMethod.String(method),
		AttrRoute.String(route),
		AttrStatus.String(strconv.Itoa(status)),
	))
}

// RecordTokenRefresh records a refresh attempt ("ok", "rejected", "error",
// "missing_credential").
func RecordTokenRefresh(ctx context.Context, outcome string) {
	if tokenRefreshCounter == nil {
		return
	}
	tokenRefreshCounter.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordNotification records one received notification event.
func RecordNotification(ctx context.Context, typ string) {
	if notificationsCounter == nil {
		return
	}
	notificationsCounter.Add(ctx, 1, metric.WithAttributes(AttrType.String(typ)))
}

// RecordSocketReconnect records a notification socket reconnect attempt.
func RecordSocketReconnect(ctx context.Context) {
	if socketReconnects == nil {
		return
	}
	socketReconnects.Add(ctx, 1)
}
