package main

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "wanzo-portfolio/internal/adapter/http"
	"wanzo-portfolio/internal/adapter/middleware"
	"wanzo-portfolio/internal/adapter/repository/objectstore"
	"wanzo-portfolio/internal/adapter/storage"
	"wanzo-portfolio/internal/config"
	"wanzo-portfolio/internal/infrastructure/cache"
	"wanzo-portfolio/internal/infrastructure/db"
	"wanzo-portfolio/internal/remote"
	disbursementUC "wanzo-portfolio/internal/usecase/disbursement"
	leasingUC "wanzo-portfolio/internal/usecase/leasing"
	portfolioUC "wanzo-portfolio/internal/usecase/portfolio"
	seedingUC "wanzo-portfolio/internal/usecase/seeding"
	syncerUC "wanzo-portfolio/internal/usecase/syncer"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		log.WithError(err).Fatal("object store open failed")
	}
	store := objectstore.New(gdb)
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.WithError(err).Fatal("object store init failed")
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis open failed")
	}
	flat := storage.NewManager(rdb, cfg.StorageQuotaBytes, log)

	portfolioRepo := objectstore.NewPortfolioRepository(store)
	queueRepo := objectstore.NewSyncQueueRepository(store)
	api := remote.NewClient(cfg.RemoteBaseURL)

	seeder := seedingUC.NewUsecase(portfolioRepo, portfolioRepo, flat, log)
	if err := seeder.SeedIfNeeded(ctx); err != nil {
		log.WithError(err).Warn("seeding failed, continuing with existing data")
	}

	portfolios := portfolioUC.NewUsecase(portfolioRepo, queueRepo, log)
	disbursements := disbursementUC.NewUsecase(api, flat, queueRepo, log)
	leases := leasingUC.NewUsecase(api, flat, queueRepo, log)

	// project seeded leasing data into flat storage for the workflows
	if all, err := portfolioRepo.GetAll(ctx); err == nil {
		leases.SavePortfolios(ctx, all)
		for i := range all {
			if details, ok := all[i].AsLeasing(); ok {
				leases.SaveEquipments(ctx, details.EquipmentCatalog)
			}
		}
	}

	sync := syncerUC.NewUsecase(queueRepo, api, cfg.SyncEnabled,
		time.Duration(cfg.SyncIntervalSecs)*time.Second, cfg.SyncMaxRetries, log)
	sync.Start(ctx)

	h := httpadp.NewHandler()
	ph := httpadp.NewPortfolioHandler(portfolios, seeder)
	dh := httpadp.NewDisbursementHandler(disbursements)
	lh := httpadp.NewLeasingHandler(leases)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	e.GET("/health", h.Health)

	e.GET("/portfolios", ph.List)
	e.POST("/portfolios", ph.Save)
	e.GET("/portfolios/:type", ph.ListByType)
	e.GET("/portfolios/:type/:id", ph.Get)
	e.PATCH("/portfolios/:id/status", ph.ChangeStatus)
	e.DELETE("/portfolios/:id", ph.Delete)
	e.POST("/admin/reset-mock-data", ph.ResetMockData)

	e.POST("/portfolios/traditional/disbursements", dh.Create)
	e.GET("/portfolios/traditional/disbursements/:id", dh.Get)
	e.GET("/portfolios/traditional/contracts/:contractRef/disbursements", dh.ListByContract)
	e.PUT("/portfolios/traditional/disbursements/:id", dh.Update)
	e.POST("/portfolios/traditional/disbursements/:id/confirm", dh.Confirm)
	e.DELETE("/portfolios/traditional/disbursements/:id", dh.Cancel)

	e.POST("/portfolios/leasing/requests", lh.CreateRequest)
	e.GET("/portfolios/leasing/requests", lh.ListRequests)
	e.POST("/portfolios/leasing/requests/:id/approve", lh.Approve)
	e.POST("/portfolios/leasing/requests/:id/reject", lh.Reject)
	e.GET("/portfolios/leasing/contracts", lh.ListContracts)
	e.POST("/portfolios/leasing/contracts/:id/activate", lh.Activate)
	e.POST("/portfolios/leasing/contracts/:id/terminate", lh.Terminate)
	e.POST("/portfolios/leasing/contracts/:id/invoice", lh.GenerateInvoice)
	e.POST("/portfolios/leasing/contracts/:id/maintenance", lh.ScheduleMaintenance)
	e.POST("/portfolios/leasing/contracts/:id/order-equipment", lh.OrderEquipment)

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
