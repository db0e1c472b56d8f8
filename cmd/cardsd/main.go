// cardsd is the business-card manager API: card CRUD, CSV import, Notion
// sync, and bulk Gmail dispatch with send history.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/ryusei2790/bissiness-card-management/internal/api"
	"github.com/ryusei2790/bissiness-card-management/internal/config"
	"github.com/ryusei2790/bissiness-card-management/internal/gmail"
	"github.com/ryusei2790/bissiness-card-management/internal/httpkit"
	"github.com/ryusei2790/bissiness-card-management/internal/importer"
	"github.com/ryusei2790/bissiness-card-management/internal/notion"
	"github.com/ryusei2790/bissiness-card-management/internal/store"
)

func main() {
	storeBackend := flag.String("store", "firestore", "store backend: firestore or memory")
	aliasFile := flag.String("aliases", "", "optional YAML file with extra CSV header aliases")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	srv := httpkit.New(cfg.Port, *verbose)
	logger := srv.Logger

	var st store.Store
	switch *storeBackend {
	case "memory":
		logger.Warn("using in-memory store, data is not persisted")
		st = store.NewMemory()
	case "firestore":
		if err := cfg.ValidateFirestore(); err != nil {
			log.Fatalf("firestore config: %v", err)
		}
		fs, err := store.NewFirestore(context.Background(), cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			log.Fatalf("failed to connect firestore: %v", err)
		}
		defer fs.Close()
		st = fs
	default:
		log.Fatalf("unknown store backend %q", *storeBackend)
	}

	aliases := importer.DefaultAliases()
	if *aliasFile != "" {
		aliases, err = importer.LoadAliases(*aliasFile)
		if err != nil {
			log.Fatalf("failed to load aliases: %v", err)
		}
	}

	// Mail and Notion credentials are checked lazily so the CRUD surface
	// works without them; the affected endpoints report failures per call.
	if err := cfg.ValidateGmail(); err != nil {
		logger.Warn("gmail credentials incomplete, mail dispatch will fail", "err", err)
	}
	if err := cfg.ValidateNotion(); err != nil {
		logger.Warn("notion credentials incomplete, sync will fail", "err", err)
	}

	imp := importer.New(st, aliases, logger)
	dispatcher := gmail.NewDispatcher(gmail.NewClient(cfg.Gmail), logger)
	syncer := notion.NewSyncer(notion.NewClient(cfg.Notion.APIKey, cfg.Notion.DatabaseID, logger), st, logger)

	handler := api.NewHandler(st, imp, syncer, dispatcher, logger)
	handler.Routes(srv.Router)

	logger.Info("cardsd ready", "store", *storeBackend, "port", cfg.Port)

	if err := srv.Serve(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
