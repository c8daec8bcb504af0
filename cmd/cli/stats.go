package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/toolsuite/shortener/cmd"
	"github.com/toolsuite/shortener/internal/config"
	apperrors "github.com/toolsuite/shortener/internal/errors"
	"github.com/toolsuite/shortener/internal/generator"
	"github.com/toolsuite/shortener/internal/repository"
	"github.com/toolsuite/shortener/internal/services"
)

// StatsCmd représente la commande 'stats'
var StatsCmd = &cobra.Command{
	Use:   "stats [short-code]",
	Short: "Get statistics for a short URL",
	Long:  `Get click statistics (total, today, last 7 days) for the provided short code.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

// runStats exécute la logique pour la commande stats
func runStats(cobraCmd *cobra.Command, args []string) {
	shortCode := args[0]

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

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
	}
	defer sqlDB.Close()

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	linkService := services.NewLinkService(linkRepo, generator.New(nil), cfg.Shortener.CodeLength, cfg.Shortener.MaxRetries, nil, 0)
	clickService := services.NewClickService(clickRepo)

	link, err := linkService.GetLinkByShortCode(shortCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrShortCodeNotFound) {
			fmt.Printf("Error: Short code '%s' not found\n", shortCode)
		} else {
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		os.Exit(1)
	}

	stats, err := clickService.Aggregate(shortCode, time.Now())
	if err != nil {
		fmt.Printf("Error retrieving statistics: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Statistiques pour le code court: %s\n", shortCode)
	fmt.Printf("URL longue: %s\n", link.LongURL)
	fmt.Printf("Total de clics: %d\n", stats.TotalClicks)
	fmt.Printf("Clics aujourd'hui (UTC): %d\n", stats.TodayClicks)
	fmt.Printf("Clics sur 7 jours: %d\n", stats.WeeklyClicks)
	fmt.Printf("Date de création: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
}
