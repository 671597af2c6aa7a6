package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookstore/internal/config"
	"bookstore/internal/db"
	"bookstore/internal/handlers"
	"bookstore/internal/repositories"
	"bookstore/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	database, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(database, cfg); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	bookRepo := repositories.NewBookRepository(database)
	authorRepo := repositories.NewAuthorRepository(database)
	publisherRepo := repositories.NewPublisherRepository(database)
	cartRepo := repositories.NewCartRepository(database)
	orderRepo := repositories.NewOrderRepository(database)
	publisherOrderRepo := repositories.NewPublisherOrderRepository(database)
	customerRepo := repositories.NewCustomerRepository(database)
	phoneRepo := repositories.NewPhoneRepository(database)
	addressRepo := repositories.NewAddressRepository(database)
	paymentRepo := repositories.NewPaymentMethodRepository(database)
	reportRepo := repositories.NewReportRepository(database)

	svc := handlers.Services{
		Catalog: services.NewCatalogService(database, bookRepo, authorRepo, publisherRepo,
			cartRepo, orderRepo, publisherOrderRepo, cfg.ReorderQuantity),
		Carts: services.NewCartService(database, bookRepo, cartRepo),
		Orders: services.NewOrderService(database, bookRepo, cartRepo, orderRepo,
			addressRepo, paymentRepo, publisherOrderRepo, cfg.ReorderQuantity),
		Profiles: services.NewProfileService(database, customerRepo, phoneRepo,
			addressRepo, paymentRepo, orderRepo),
		PublisherOrders: services.NewPublisherOrderService(database, bookRepo, publisherOrderRepo),
		Reports:         services.NewReportService(database, reportRepo),
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router := gin.Default()

	handlers.RegisterRoutes(router, svc)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
