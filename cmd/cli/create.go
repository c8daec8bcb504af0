package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

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

var (
	longURLFlag    string
	customCodeFlag string
)

// cliClientKey is the creator key recorded for links made from the command
// line, where no network address identifies the caller.
const cliClientKey = "cli"

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Crée une URL courte à partir d'une URL longue.",
	Long: `Cette commande raccourcit une URL longue fournie et affiche le code court généré.

Exemple:
  shortener create --url="https://www.google.com/search?q=go+lang"
  shortener create --url="https://example.com" --code="promo24"`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		if longURLFlag == "" {
			fmt.Println("Error: --url flag is required")
			os.Exit(1)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("FATAL: Échec de l'obtention de la base de données SQL sous-jacente: %v", err)
		}
		defer sqlDB.Close()

		linkRepo := repository.NewLinkRepository(db)
		linkService := services.NewLinkService(linkRepo, generator.New(nil), cfg.Shortener.CodeLength, cfg.Shortener.MaxRetries, nil, 0)

		link, err := linkService.CreateLink(longURLFlag, customCodeFlag, cliClientKey)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidURL):
				fmt.Println("Error: Invalid URL format, an absolute URL with scheme and host is required")
			case errors.Is(err, apperrors.ErrCodeTaken):
				fmt.Printf("Error: Short code '%s' is already taken\n", customCodeFlag)
			default:
				fmt.Printf("Error: Failed to create short link: %v\n", err)
			}
			os.Exit(1)
		}

		fullShortURL := fmt.Sprintf("%s/%s", cfg.Server.BaseURL, link.ShortCode)
		fmt.Printf("URL courte créée avec succès:\n")
		fmt.Printf("Code: %s\n", link.ShortCode)
		fmt.Printf("URL complète: %s\n", fullShortURL)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&customCodeFlag, "code", "", "Optional custom short code to reserve")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
