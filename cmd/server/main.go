package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecom-service/config"
	"ecom-service/internal/api"
	"ecom-service/internal/broker"
	"ecom-service/internal/redisclient"
	"ecom-service/internal/service"
	"ecom-service/internal/store"
	"ecom-service/internal/util"
	"ecom-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting ecom service")

	tp, err := util.InitTracer("ecom-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	payTimeout := time.Duration(cfg.Business.PayTimeoutSeconds) * time.Second
	catalogService := service.NewCatalogService(db, eventPublisher)
	cartService := service.NewCartService(db)
	paymentService := service.NewPaymentService(db, eventPublisher, redisClient, payTimeout, cfg.Business.DefaultPaymentMethod)
	shipmentService := service.NewShipmentService(db)
	notificationService := service.NewNotificationService(db)
	ratingService := service.NewRatingService(db)
	profileService := service.NewProfileService(db)

	if err := syncInventoryMirror(context.Background(), db, redisClient); err != nil {
		log.Printf("Failed to sync inventory mirror: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(consumer, notificationService)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(
		catalogService, cartService, paymentService,
		shipmentService, notificationService, ratingService, profileService,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notificationWorker.Stop()

	log.Println("Server exited")
}

// syncInventoryMirror seeds Redis with product quantities so the mirror
// reflects the database on boot
func syncInventoryMirror(ctx context.Context, db *store.Store, redisClient *redisclient.Client) error {
	products, err := db.GetProducts(ctx)
	if err != nil {
		return err
	}
	for _, product := range products {
		if err := redisClient.InitInventory(ctx, product.ID, product.Quantity); err != nil {
			log.Printf("Failed to seed inventory mirror for product %d: %v", product.ID, err)
		}
	}
	log.Printf("Inventory mirror synced: %d products", len(products))
	return nil
}
