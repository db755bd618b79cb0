package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/okian/paddock/internal/adapters/http/api"
	"github.com/okian/paddock/internal/adapters/repository"
	app "github.com/okian/paddock/internal/app"
	"github.com/okian/paddock/internal/config"
	"github.com/okian/paddock/pkg/logger"
	"github.com/okian/paddock/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("PADDOCK_ADDR", ":8080")
			_ = os.Setenv("PADDOCK_MODEL_TYPE", "knn")
			_ = os.Setenv("PADDOCK_TRAINING_SEED", "7")
			defer func() {
				_ = os.Unsetenv("PADDOCK_ADDR")
				_ = os.Unsetenv("PADDOCK_MODEL_TYPE")
				_ = os.Unsetenv("PADDOCK_TRAINING_SEED")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Model.Type, convey.ShouldEqual, "knn")
				convey.So(cfg.Training.Seed, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When testing service creation", func() {
			cfg := config.New(context.Background())

			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New(cfg)
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(cfg,
					app.WithLogger(logger.Get()),
					app.WithCandidateActions(app.DefaultActionSpace()),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			cfg := config.New(context.Background())

			svc := app.New(cfg)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				// Use a custom registry to avoid duplicate registration issues
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop when the context is done", func() {
				tctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(tctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New(cfg)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should stop when the context is done", func() {
				tctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(tctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := app.New(cfg)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When testing full application setup", func() {
			_ = os.Setenv("PADDOCK_ADDR", ":8080")
			_ = os.Setenv("PADDOCK_RECOMMENDATIONS_MAX_PER_HORSE", "3")
			defer func() {
				_ = os.Unsetenv("PADDOCK_ADDR")
				_ = os.Unsetenv("PADDOCK_RECOMMENDATIONS_MAX_PER_HORSE")
			}()

			convey.Convey("Then all components should work together", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Load configuration
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)

				// Create and start the service
				svc := app.New(cfg, app.WithLogger(logger.Get()))
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.Start(ctx), convey.ShouldBeNil)

				// Create HTTP server
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)

				// Create HTTP mux
				mux := http.NewServeMux()
				convey.So(mux, convey.ShouldNotBeNil)

				// Register routes
				server.Register(ctx, mux)

				// Stop service
				svc.Stop()
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When testing invalid configuration", func() {
			// Set invalid configuration
			_ = os.Setenv("PADDOCK_ADDR", "")
			defer func() { _ = os.Unsetenv("PADDOCK_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing snapshot seeding from a missing file", func() {
			convey.Convey("Then the loader should report an error", func() {
				_, err := repository.LoadSnapshot("does-not-exist.json")
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
