// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/united-manufacturing-hub/sysmon/pkg/logger"
	"github.com/united-manufacturing-hub/sysmon/pkg/sentry"
)

// HealthFunc reports whether the monitored task is running.
type HealthFunc func() bool

// NewRouter serves /metrics and /healthz.
func NewRouter(health HealthFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if health == nil || health() {
			c.JSON(http.StatusOK, gin.H{"status": "running"})

			return
		}

		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not running"})
	})

	return router
}

// SetupMetricsEndpoint starts an HTTP server exposing metrics on addr.
// The server runs until Shutdown is called.
func SetupMetricsEndpoint(addr string, health HealthFunc) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	server := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(health),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log := logger.For(logger.ComponentMetricsHTTP)
		log.Infof("Serving metrics on %s", addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			IncErrorCount(ComponentMetricsServer, addr)
			sentry.ReportIssuef(sentry.IssueTypeError, log, "metrics endpoint on %s stopped: %w", addr, err)
		}
	}()

	return server
}

// Shutdown stops the server, waiting at most timeout for open requests.
func Shutdown(server *http.Server, timeout time.Duration) error {
	if server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return server.Shutdown(ctx)
}
