package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntoventa-api/internal/application"
	"github.com/jhoicas/Puntoventa-api/internal/application/cashbox"
	"github.com/jhoicas/Puntoventa-api/internal/application/creditnotes"
	"github.com/jhoicas/Puntoventa-api/internal/application/dispatch"
	"github.com/jhoicas/Puntoventa-api/internal/application/inventory"
	"github.com/jhoicas/Puntoventa-api/internal/application/outbox"
	"github.com/jhoicas/Puntoventa-api/internal/application/payments"
	"github.com/jhoicas/Puntoventa-api/internal/application/sales"
	"github.com/jhoicas/Puntoventa-api/internal/application/usecase"
	"github.com/jhoicas/Puntoventa-api/internal/domain/fiscal"
	"github.com/jhoicas/Puntoventa-api/internal/infrastructure/facturador"
	"github.com/jhoicas/Puntoventa-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Puntoventa-api/internal/jobs"
	httpRouter "github.com/jhoicas/Puntoventa-api/internal/interfaces/http"
	"github.com/jhoicas/Puntoventa-api/pkg/config"
	"github.com/jhoicas/Puntoventa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("facturador", cfg.Facturador.Modo).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)

	var fact application.Facturador
	switch cfg.Facturador.Modo {
	case "nubefact":
		fact = facturador.NewNubefactClient(
			&http.Client{Timeout: cfg.Facturador.Timeout},
			cfg.Facturador.URL,
			cfg.Facturador.Token,
			log.Zerolog(),
		)
	default:
		fact = facturador.NewMock(cfg.Facturador.URL, log.Zerolog())
	}

	fiscalCfg := fiscal.Config{
		TasaImpuesto:      decimal.NewFromFloat(cfg.Fiscal.TasaIGV),
		ExoneradoRegional: cfg.Fiscal.ExoneradoRegional,
	}
	tolerance := decimal.NewFromFloat(cfg.Fiscal.Tolerancia)

	productUC := usecase.NewProductUseCase(repos.Products)
	customerUC := usecase.NewCustomerUseCase(repos.Customers)
	seriesUC := usecase.NewSeriesUseCase(repos.Series)
	adjustUC := inventory.NewAdjustUseCase(txRunner)
	receiptUC := inventory.NewReceiptUseCase(txRunner, fiscalCfg)
	kardexUC := inventory.NewKardexUseCase(repos.Movements)
	createSaleUC := sales.NewCreateSaleUseCase(
		txRunner, fact, repos.Sales, repos.Customers,
		fiscalCfg, tolerance, cfg.Facturador.Timeout, log.Zerolog(),
	)
	salesQueryUC := sales.NewQueryUseCase(repos.Sales)
	createNoteUC := creditnotes.NewCreateNoteUseCase(
		txRunner, fact, repos.CreditNotes, repos.Customers,
		cfg.Facturador.Timeout, log.Zerolog(),
	)
	notesQueryUC := creditnotes.NewQueryUseCase(repos.CreditNotes)
	paymentsUC := payments.NewUseCase(txRunner, repos.Receivables)
	cashboxUC := cashbox.NewUseCase(txRunner, repos.Cash)
	createGuideUC := dispatch.NewCreateGuideUseCase(
		txRunner, fact, repos.Dispatch, cfg.Facturador.Timeout, log.Zerolog(),
	)
	guidesQueryUC := dispatch.NewQueryUseCase(repos.Dispatch)

	// Jobs de fondo: barrido fiscal y envejecimiento de cobranzas.
	sweeper := outbox.NewSweeper(
		repos.Sales, repos.CreditNotes, repos.Dispatch, repos.Customers,
		fact,
		outbox.Config{
			Grace:         cfg.Sweep.Grace,
			BatchSize:     cfg.Sweep.BatchSize,
			SubmitTimeout: cfg.Facturador.Timeout,
		},
		log.Zerolog(),
	)
	agingJob := payments.NewAgingJob(repos.Receivables, cfg.Cobranzas.DiasAviso, log.Zerolog())

	var locker jobs.Locker = jobs.LocalLocker{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		locker = jobs.NewRedisLocker(rdb, log.Zerolog())
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock de líder sobre Redis habilitado")
	}

	scheduler := jobs.NewScheduler(locker, log.Zerolog())
	scheduler.Register("barrido-fiscal", cfg.Sweep.Interval, jobs.JobFunc(func(ctx context.Context) error {
		_, err := sweeper.Run(ctx)
		return err
	}))
	scheduler.Register("cobranzas-aging", cfg.Cobranzas.Interval, agingJob)

	jobsCtx, stopJobs := context.WithCancel(ctx)
	scheduler.Start(jobsCtx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		CustomerUC:  customerUC,
		SeriesUC:    seriesUC,
		Adjust:      adjustUC,
		Receipt:     receiptUC,
		Kardex:      kardexUC,
		CreateSale:  createSaleUC,
		SalesQuery:  salesQueryUC,
		CreateNote:  createNoteUC,
		NotesQuery:  notesQueryUC,
		PaymentsUC:  paymentsUC,
		CashboxUC:   cashboxUC,
		CreateGuide: createGuideUC,
		GuidesQuery: guidesQueryUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	stopJobs()
	scheduler.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
