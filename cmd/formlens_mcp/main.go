// Command formlens_mcp serves the exercise catalog, single frame evaluation
// and the recorded sets to an MCP client over stdio. The backend exposes the
// same tools at /mcp.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/formlens/internal/config"
	"github.com/2beens/formlens/internal/db"
	"github.com/2beens/formlens/internal/exercises"
	"github.com/2beens/formlens/internal/formcheck"
	formlensmcp "github.com/2beens/formlens/internal/mcp"
	"github.com/2beens/formlens/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development | ddev | dockerdev]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	noHistory := flag.Bool("no-history", false, "do not connect to postgres, serve catalog and frame tools only")
	flag.Parse()

	// stdout belongs to the MCP transport
	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	catalog, err := exercises.DefaultCatalog()
	if err != nil {
		log.Fatalf("exercise catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sets formlensmcp.SetsRepo
	if !*noHistory {
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         os.Getenv("FORMLENS_POSTGRES_USER"),
			DBPassword:     os.Getenv("FORMLENS_POSTGRES_PASS"),
			TracingEnabled: false,
		})
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer dbPool.Close()
		sets = workouts.NewRepo(dbPool)
	}

	server := formlensmcp.NewServer(formcheck.NewEngine(catalog), sets)
	log.Debugf("mcp over stdio, history enabled: %t", sets != nil)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		log.Errorf("mcp server: %s", err)
	}
}
