package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"fleetservice/internal/config"
	"fleetservice/internal/database"
	"fleetservice/internal/domain/fleet"
	"fleetservice/internal/domain/reservation"
	"fleetservice/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed: ", err)
	}

	fleetRepo := fleet.NewRepository(db)
	fleetService := fleet.NewService(fleetRepo)
	fleetHandler := fleet.NewHandler(fleetService)

	reservationRepo := reservation.NewRepository(db)
	reservationService := reservation.NewService(reservationRepo, reservation.Config{
		HoldTTL:        cfg.ReservationHoldTTL,
		MaxBookingSpan: cfg.ReservationMaxSpan,
		TxTimeout:      cfg.TxTimeout,
	})
	reservationHandler := reservation.NewHandler(reservationService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reaper := reservation.NewReaper(reservationRepo, cfg.ReaperSweepInterval)
	reaper.Start(ctx)
	defer reaper.Stop()

	r := gin.New()
	r.Use(gin.Logger(), middleware.RequestLogger(), middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		fleetHandler.RegisterRoutes(v1)
		reservationHandler.RegisterRoutes(v1)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("fleet service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("server shutdown:", err)
	}
}
