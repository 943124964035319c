package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mcp-databases/internal/config"
	"mcp-databases/internal/database"
	"mcp-databases/internal/logging"
	"mcp-databases/internal/mcp/resources"
	"mcp-databases/internal/mcp/server"
	"mcp-databases/internal/mcp/tools"
	"mcp-databases/internal/security"
	"mcp-databases/internal/sqlbuilder"
)

var (
	configPath string
	debugMode  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mcp-databases",
		Short: "MCP server exposing SQL databases behind a declarative safety engine",
		Long: `mcp-databases serves MySQL, PostgreSQL and SQL Server over the Model
Context Protocol. Read queries are validated against a command whitelist
and injection pattern scan; writes are only possible through declarative
tools that build parameterized SQL, never through raw statements.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs/config.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd(), checkCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to environment-only
// configuration when the file is absent.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.ServerLogger.Warn("config file not loaded, using environment",
			logging.String("path", configPath), logging.Error(err))
		cfg = config.Default()
	}

	if debugMode {
		logging.EnableDebugMode()
	} else if cfg.Server.LogLevel != "" {
		logging.SetGlobalLevel(logging.ParseLevel(cfg.Server.LogLevel))
	}
	return cfg
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			log := logging.ServerLogger

			dialect, err := sqlbuilder.ParseDialect(cfg.Database.Dialect)
			if err != nil {
				return err
			}

			sec := security.NewConfig()

			// A broken database connection degrades the server to the
			// offline security tools instead of refusing to start.
			var exec database.Executor
			if err := cfg.RequireDatabase(); err != nil {
				log.Warn("starting without database", logging.Error(err))
			} else {
				db, err := database.Open(&cfg.Database)
				if err != nil {
					log.Warn("database connection failed, starting without database", logging.Error(err))
				} else {
					exec = db
				}
			}

			manager := tools.NewManager(cfg, exec, sec, dialect)
			defer manager.Close()

			srv := server.New(cfg.Server.Name, cfg.Server.Version)
			manager.RegisterAll(srv)
			srv.RegisterResources(resources.GetAllResources(exec))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("starting MCP server",
				logging.String("name", cfg.Server.Name),
				logging.String("dialect", dialect.String()))
			return srv.Start(ctx)
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <query>",
		Short: "Analyze a SQL query against the security policy without a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			dialect, err := sqlbuilder.ParseDialect(cfg.Database.Dialect)
			if err != nil {
				return err
			}

			manager := tools.NewManager(cfg, nil, security.NewConfig(), dialect)
			report := manager.Pipeline().Inspect(args[0])

			if report.IsSafe {
				fmt.Printf("✅ %s\n", report.Message)
			} else {
				fmt.Printf("🚫 %s\n", report.Message)
				if len(report.DangerousCommands) > 0 {
					fmt.Printf("   dangerous commands: %v\n", report.DangerousCommands)
				}
				if len(report.DangerousPatterns) > 0 {
					fmt.Printf("   dangerous patterns: %v\n", report.DangerousPatterns)
				}
			}
			fmt.Printf("   first command: %s\n", report.FirstCommand)
			return nil
		},
	}
}
