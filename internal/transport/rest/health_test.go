package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HealthHandler", func() {
	var (
		mock sqlmock.Sqlmock
		mr   *miniredis.Miniredis
		h    *HealthHandler
	)

	probe := func() (int, HealthResponse) {
		rec := httptest.NewRecorder()
		h.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		var resp HealthResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
		return rec.Code, resp
	}

	ginkgo.BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		mock = m
		ginkgo.DeferCleanup(func() {
			mock.ExpectClose()
			gomega.Expect(db.Close()).To(gomega.Succeed())
		})

		mr = miniredis.RunT(ginkgo.GinkgoT())
		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		ginkgo.DeferCleanup(client.Close)

		h = NewHealthHandler(db, client, 2*time.Second)
	})

	ginkgo.It("reports healthy when every component answers", func() {
		mock.ExpectPing()

		code, resp := probe()

		gomega.Expect(code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(resp.Status).To(gomega.Equal(HealthHealthy))
		gomega.Expect(resp.Components).To(gomega.HaveKey("database"))
		gomega.Expect(resp.Components).To(gomega.HaveKey("redis"))
		gomega.Expect(mock.ExpectationsWereMet()).To(gomega.Succeed())
	})

	ginkgo.It("returns 503 when the database ping fails", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		code, resp := probe()

		gomega.Expect(code).To(gomega.Equal(http.StatusServiceUnavailable))
		gomega.Expect(resp.Status).To(gomega.Equal(HealthUnhealthy))
		gomega.Expect(resp.Components["database"].Status).To(gomega.Equal(HealthUnhealthy))
		gomega.Expect(resp.Components["database"].Message).To(gomega.ContainSubstring("connection refused"))
		gomega.Expect(resp.Components["redis"].Status).To(gomega.Equal(HealthHealthy))
	})

	ginkgo.It("gives up on a database slower than the query timeout", func() {
		mock.ExpectPing().WillDelayFor(time.Second)
		h.timeout = 20 * time.Millisecond

		start := time.Now()
		code, resp := probe()

		gomega.Expect(time.Since(start)).To(gomega.BeNumerically("<", 500*time.Millisecond))
		gomega.Expect(code).To(gomega.Equal(http.StatusServiceUnavailable))
		gomega.Expect(resp.Components["database"].Status).To(gomega.Equal(HealthUnhealthy))
	})

	ginkgo.It("returns 503 when redis is gone", func() {
		mock.ExpectPing()
		mr.Close()

		code, resp := probe()

		gomega.Expect(code).To(gomega.Equal(http.StatusServiceUnavailable))
		gomega.Expect(resp.Components["redis"].Status).To(gomega.Equal(HealthUnhealthy))
		gomega.Expect(resp.Components["database"].Status).To(gomega.Equal(HealthHealthy))
	})

	ginkgo.It("skips components that are not configured", func() {
		h = NewHealthHandler(nil, nil, 2*time.Second)

		code, resp := probe()

		gomega.Expect(code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(resp.Components).To(gomega.BeEmpty())
	})
})
