// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/metric"
)

func TestAPIInterceptor(t *testing.T) {
	require := require.New(t)

	interceptor, err := NewAPIInterceptor(metric.NewRegistry())
	require.NoError(err)

	info := &rpc.RequestInfo{
		Method:  "dao.getGroup",
		Request: httptest.NewRequest(http.MethodPost, "/", nil),
	}
	info.Request = interceptor.InterceptRequest(info)
	_, ok := info.Request.Context().Value(requestTimestampKey).(time.Time)
	require.True(ok)

	info.Error = errors.New("failed")
	interceptor.AfterRequest(info)

	// requests that were not intercepted are ignored
	interceptor.AfterRequest(&rpc.RequestInfo{
		Method:  "dao.status",
		Request: httptest.NewRequest(http.MethodPost, "/", nil),
	})
}
