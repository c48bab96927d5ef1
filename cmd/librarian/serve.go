package main

import (
	"context"
	"log/slog"

	"librarian/config"
	"librarian/internal/delivery"
	"librarian/internal/delivery/api"
	apimiddleware "librarian/internal/delivery/api/middleware"
	"librarian/internal/delivery/api/router/handler"
	"librarian/internal/domain/service"
	"librarian/internal/infra/auth"
	logs "librarian/internal/infra/log"
	"librarian/internal/infra/metrics"
	"librarian/internal/infra/persistence/postgres"
	"librarian/internal/infra/qrcode"
	"librarian/internal/usecase/impl"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. The schema is created with GORM AutoMigrate when
database.autoMigrate is set; otherwise run "librarian migrate up" first.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			app := fx.New(serveOptions())
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()

			return nil
		},
	}
}

func serveOptions() fx.Option {
	return fx.Options(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	)
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
		metrics.New,
		asLedgerMetrics,
	)
}

func asLedgerMetrics(m *metrics.Metrics) service.LedgerMetrics {
	return m
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewClientRepository,
			postgres.NewAuthorRepository,
			postgres.NewBookRepository,
			postgres.NewCopyRepository,
			postgres.NewRentalRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			qrcode.NewLabelService,
			impl.NewFinePolicy,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewUserService,
			impl.NewRentalService,
			impl.NewClientService,
			impl.NewCatalogService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			apimiddleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewUserHandler,
			handler.NewRentalHandler,
			handler.NewClientHandler,
			handler.NewCatalogHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startServer launches every delivery once the database is reachable.
// A delivery that fails stops the whole application.
func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, d := range params.Deliveries {
				go func() {
					if err := d.Serve(ctx); err != nil {
						params.Logger.Error("Failed to start server", slog.Any("error", err))
						_ = params.Shutdowner.Shutdown(fx.ExitCode(1))
					}
				}()
			}

			return nil
		},
	})
}
