package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/form-atlas/pkg/server"
	"github.com/de-tools/form-atlas/pkg/services/report"
	"github.com/de-tools/form-atlas/pkg/store/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the Form Atlas report server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a config file (defaults to environment variables only)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() error {
	viper.SetEnvPrefix("FORM_ATLAS")
	viper.AutomaticEnv()
	viper.SetDefault("server_host", "0.0.0.0")
	viper.SetDefault("server_port", "8080")
	viper.SetDefault("db_path", "form-atlas.db")

	if cfgPath == "" {
		return nil
	}
	viper.SetConfigFile(cfgPath)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgPath, err)
	}
	return nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := loadConfig(); err != nil {
		return err
	}

	db, err := sqlite.NewDB(sqlite.Settings{
		DbPath: viper.GetString("db_path"),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	fetcher, err := sqlite.NewFetcher(db)
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}

	addr := net.JoinHostPort(viper.GetString("server_host"), viper.GetString("server_port"))
	logger.Info().Str("db", viper.GetString("db_path")).Msg("database ready")

	api := server.NewWebAPI(server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Report: report.NewService(fetcher),
			Logger: logger,
		},
	})
	return api.Start()
}
