package internal_test

import (
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, *",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			RequestTimeout:    10 * time.Second,
		},
		Database: internal.DatabaseConfig{
			Driver:       internal.DatabaseDriverPostgres,
			Source:       "postgres://hr:hr@localhost:5432/hr?sslmode=disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Security: internal.SecurityConfig{
			AccessTokenSecret:    "access-secret-0123456789abcdefghijkl",
			RefreshTokenSecret:   "refresh-secret-0123456789abcdefghijk",
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			BCryptCost:           12,
		},
		Observability: internal.ObservabilityConfig{
			Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("accepts sqlite", func() {
		cfg := validConfig()
		cfg.Database.Driver = internal.DatabaseDriverSQLite
		cfg.Database.Source = "file:hr.db"
		Expect(cfg.Validate()).To(Succeed())
	})

	DescribeTable("rejects",
		func(mutate func(*internal.Config), message string) {
			cfg := validConfig()
			mutate(cfg)
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(message))
		},
		Entry("a port out of range", func(c *internal.Config) { c.Server.Port = 70000 }, "invalid port"),
		Entry("read timeout below header timeout", func(c *internal.Config) { c.Server.ReadTimeout = time.Second }, "read_timeout"),
		Entry("a missing request timeout", func(c *internal.Config) { c.Server.RequestTimeout = 0 }, "request_timeout"),
		Entry("an unknown driver", func(c *internal.Config) { c.Database.Driver = "mysql" }, `unsupported driver "mysql"`),
		Entry("an empty source", func(c *internal.Config) { c.Database.Source = "" }, "source is required"),
		Entry("more idle than open connections", func(c *internal.Config) { c.Database.MaxIdleConns = 20 }, "max_idle_conns"),
		Entry("a short access secret", func(c *internal.Config) { c.Security.AccessTokenSecret = "short" }, "access_token_secret"),
		Entry("a short refresh secret", func(c *internal.Config) { c.Security.RefreshTokenSecret = "short" }, "refresh_token_secret"),
		Entry("shared secrets", func(c *internal.Config) { c.Security.RefreshTokenSecret = c.Security.AccessTokenSecret }, "must differ"),
		Entry("a long-lived access token", func(c *internal.Config) { c.Security.AccessTokenDuration = 2 * time.Hour }, "access_token_duration"),
		Entry("a short-lived refresh token", func(c *internal.Config) { c.Security.RefreshTokenDuration = time.Minute }, "refresh_token_duration"),
		Entry("a weak bcrypt cost", func(c *internal.Config) { c.Security.BCryptCost = 4 }, "bcrypt_cost"),
		Entry("an unknown log level", func(c *internal.Config) { c.Observability.Logging.Level = "trace" }, "logging level"),
		Entry("an unknown log format", func(c *internal.Config) { c.Observability.Logging.Format = "xml" }, "logging format"),
		Entry("a relative metrics path", func(c *internal.Config) { c.Observability.Metrics.Path = "metrics" }, "metrics path"),
	)

	It("reports every failing section", func() {
		cfg := validConfig()
		cfg.Server.Port = 0
		cfg.Security.BCryptCost = 20

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("server config"))
		Expect(err.Error()).To(ContainSubstring("security config"))
	})

	It("ignores the metrics path while metrics are off", func() {
		cfg := validConfig()
		cfg.Observability.Metrics = internal.MetricsConfig{}
		Expect(cfg.Validate()).To(Succeed())
	})

	Describe("LoadConfigFromEnv", func() {
		It("reads prefixed variables and falls back to defaults", func() {
			GinkgoT().Setenv("HR_HTTP_PORT", "9090")
			GinkgoT().Setenv("HR_DATABASE_DRIVER", "sqlite")
			GinkgoT().Setenv("HR_DATABASE_QUERY_TIMEOUT", "not-a-duration")
			GinkgoT().Setenv("HR_METRICS_ENABLED", "true")
			GinkgoT().Setenv("HR_HTTP_REQUEST_TIMEOUT", "45s")

			cfg := internal.LoadConfigFromEnv()

			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Database.Driver).To(Equal(internal.DatabaseDriverSQLite))
			Expect(cfg.Server.RequestTimeout).To(Equal(45 * time.Second))
			Expect(cfg.Database.QueryTimeout).To(Equal(5 * time.Second))
			Expect(cfg.Security.BCryptCost).To(Equal(12))
			Expect(cfg.Observability.Metrics.Enabled).To(BeTrue())
			Expect(cfg.Observability.Metrics.Path).To(Equal("/metrics"))
		})
	})
})
