package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/toolsuite/shortener/cmd"
	"github.com/toolsuite/shortener/internal/api"
	"github.com/toolsuite/shortener/internal/config"
	"github.com/toolsuite/shortener/internal/generator"
	"github.com/toolsuite/shortener/internal/models"
	"github.com/toolsuite/shortener/internal/monitor"
	"github.com/toolsuite/shortener/internal/ratelimit"
	"github.com/toolsuite/shortener/internal/repository"
	"github.com/toolsuite/shortener/internal/services"
	"github.com/toolsuite/shortener/internal/workers"
)

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Lance le serveur API de raccourcissement d'URLs et les processus de fond.",
	Long: `Cette commande initialise la base de données, configure les APIs,
démarre les workers asynchrones pour les clics et le moniteur d'URLs,
puis lance le serveur HTTP.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Échec du chargement de la configuration : %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			log.Fatalf("Échec de la connexion à la base de données : %v", err)
		}

		if err := db.AutoMigrate(&models.Link{}, &models.Click{}); err != nil {
			log.Fatalf("Échec de la migration de la base de données : %v", err)
		}

		linkRepo := repository.NewLinkRepository(db)
		clickRepo := repository.NewClickRepository(db)
		log.Println("Repositories initialisés.")

		// Optional Redis resolve cache; an empty addr leaves it disabled and
		// every lookup goes straight to SQLite.
		cache := openRedis(cfg)

		gen := generator.New(nil)
		cacheTTL := time.Duration(cfg.Redis.CacheTTLMinutes) * time.Minute
		linkService := services.NewLinkService(linkRepo, gen, cfg.Shortener.CodeLength, cfg.Shortener.MaxRetries, cache, cacheTTL)
		clickService := services.NewClickService(clickRepo)
		log.Println("Services métiers initialisés.")

		// Per-client admission control; the janitor sweep keeps the key set
		// bounded to clients seen within the last window.
		window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
		limiter := ratelimit.New(cfg.RateLimit.Points, window)
		go limiter.Start(window)
		log.Printf("Rate limiter initialisé : %d requêtes / %v.", cfg.RateLimit.Points, window)

		clickEventsChan := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		clickWorkers := workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEventsChan, clickService)
		log.Printf("Channel d'événements de clic initialisé avec un buffer de %d. %d worker(s) de clics démarré(s).",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		urlMonitor := monitor.NewUrlMonitor(linkRepo, monitorInterval)
		go urlMonitor.Start()
		log.Printf("Moniteur d'URLs démarré avec un intervalle de %v.", monitorInterval)

		router := gin.Default()
		api.SetupRoutes(router, linkService, clickService, limiter, clickEventsChan, cfg.Server.BaseURL)
		log.Println("Routes API configurées.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			log.Printf("Démarrage du serveur sur %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Échec du démarrage du serveur : %v", err)
			}
		}()

		// Arrêt propre : on cesse d'accepter des requêtes, puis on laisse
		// les workers drainer le channel des clics.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Signal d'arrêt reçu. Arrêt du serveur...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Échec de l'arrêt du serveur : %v", err)
		}

		close(clickEventsChan)
		clickWorkers.Wait()

		if cache != nil {
			_ = cache.Close()
		}
		log.Println("Serveur arrêté proprement.")
	},
}

// openRedis connects to the configured Redis instance. A missing addr or a
// failed ping simply disables the cache; the service runs without it.
func openRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: redis ping failed, resolve cache disabled: %v", err)
		_ = client.Close()
		return nil
	}
	log.Println("Redis connecté, cache de résolution activé.")
	return client
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
