package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/musubi-chat/musubi/internal/observability"
	"github.com/musubi-chat/musubi/internal/profile"
	"github.com/musubi-chat/musubi/server"
	"github.com/musubi-chat/musubi/store"
	"github.com/musubi-chat/musubi/store/db"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "musubi",
	Short: "結びの部屋 conversation server",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:                 viper.GetString("mode"),
			Addr:                 viper.GetString("addr"),
			Port:                 viper.GetInt("port"),
			Data:                 viper.GetString("data"),
			Driver:               viper.GetString("driver"),
			DSN:                  viper.GetString("dsn"),
			IncludeSystemNotices: viper.GetBool("include-system-notices"),
			Version:              version,
		}
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("invalid profile: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := observability.NewLogger(instanceProfile.IsDev())

		driver, err := db.NewDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create storage driver: %w", err)
		}

		s, err := server.NewServer(ctx, instanceProfile, store.New(driver, logger), logger)
		if err != nil {
			driver.Close()
			return fmt.Errorf("failed to create server: %w", err)
		}

		if err := s.Start(ctx); err != nil {
			s.Shutdown(context.Background())
			return err
		}

		<-ctx.Done()
		s.Shutdown(context.Background())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `server mode, one of "prod", "dev", or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address to bind, empty for all interfaces")
	rootCmd.PersistentFlags().Int("port", 8232, "port to listen on")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `storage driver, "sqlite" or "memory"`)
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().Bool("include-system-notices", false, "forward room-transition notices to the model")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("musubi")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
