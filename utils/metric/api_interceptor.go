// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"

	"github.com/luxfi/metric"

	"github.com/luxfi/daovm/utils/wrappers"
)

const methodLabel = "method"

var methodLabels = []string{methodLabel}

// APIInterceptor records the number, duration and failures of JSON-RPC
// requests by method.
type APIInterceptor interface {
	InterceptRequest(i *rpc.RequestInfo) *http.Request
	AfterRequest(i *rpc.RequestInfo)
}

type contextKey int

const requestTimestampKey contextKey = iota

type apiInterceptor struct {
	requestCount       metric.CounterVec
	requestDurationSum metric.GaugeVec
	requestErrors      metric.CounterVec
}

func NewAPIInterceptor(registerer metric.Registerer) (APIInterceptor, error) {
	a := &apiInterceptor{
		requestCount: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "api_request_count",
				Help: "number of requests by method",
			},
			methodLabels,
		),
		requestDurationSum: metric.NewGaugeVec(
			metric.GaugeOpts{
				Name: "api_request_duration_sum",
				Help: "time (in ns) spent handling requests by method",
			},
			methodLabels,
		),
		requestErrors: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "api_request_error_count",
				Help: "number of failed requests by method",
			},
			methodLabels,
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(a.requestCount)),
		registerer.Register(metric.AsCollector(a.requestDurationSum)),
		registerer.Register(metric.AsCollector(a.requestErrors)),
	)
	return a, errs.Err
}

func (*apiInterceptor) InterceptRequest(i *rpc.RequestInfo) *http.Request {
	ctx := context.WithValue(i.Request.Context(), requestTimestampKey, time.Now())
	return i.Request.WithContext(ctx)
}

func (a *apiInterceptor) AfterRequest(i *rpc.RequestInfo) {
	timestamp, ok := i.Request.Context().Value(requestTimestampKey).(time.Time)
	if !ok {
		return
	}

	labels := metric.Labels{
		methodLabel: i.Method,
	}
	a.requestCount.With(labels).Inc()
	a.requestDurationSum.With(labels).Add(float64(time.Since(timestamp)))
	if i.Error != nil {
		a.requestErrors.With(labels).Inc()
	}
}
