package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/ladeklubben-cli/lk"
	"github.com/denysvitali/ladeklubben-cli/managed"
	"github.com/denysvitali/ladeklubben-cli/membership"
)

var (
	cfgFile  string
	logLevel string
	cfg      *lk.Config
	client   *lk.Client
	members  = membership.NewRegistry()
	log      = logrus.StandardLogger()
)

var (
	// commands that run without any config or client
	offlineCommands = []string{"version", "help", "completion"}
	// commands that need the config but must not log in
	noLoginCommands = []string{"logout"}
)

var RootCmd = &cobra.Command{
	Use:   "lk",
	Short: "Ladeklubben CLI - Find, reserve and manage EV chargers",
	Long: `lk is a command line tool for the Ladeklubben charging network.
You can list public chargers with your member price, reserve and charge at a
station, and manage the schedules, list price and notifications of your own chargers.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(); err != nil {
			return err
		}

		if slices.Contains(offlineCommands, cmd.Name()) {
			return nil
		}

		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		login := !slices.Contains(noLoginCommands, cmd.Name())
		if err := initClient(cmd.Context(), login); err != nil {
			return fmt.Errorf("unable to initialize client: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/ladeklubben/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("config", RootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log-level", RootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("LK")
	viper.AutomaticEnv()
}

func initConfig() error {
	configPath := ""

	if cfgFile != "" {
		configPath = cfgFile
		viper.SetConfigFile(cfgFile)
	} else {
		configPath = lk.DefaultConfigFilePath
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "ladeklubben"))
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug("No config file found, using defaults and environment variables")
	} else {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		configPath = viper.ConfigFileUsed()
	}

	var err error
	cfg, err = lk.GetConfigFromFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log.Debug("Config file not found, creating empty config")
		cfg = &lk.Config{}
	}

	// env and flags win over the file
	if viper.IsSet("username") {
		cfg.Username = viper.GetString("username")
	}
	if viper.IsSet("password") {
		cfg.Password = viper.GetString("password")
	}
	if viper.IsSet("token") {
		cfg.Token = viper.GetString("token")
	}
	if viper.IsSet("station_id") {
		cfg.StationID = viper.GetString("station_id")
	}
	if viper.IsSet("location.latitude") {
		cfg.Location.Latitude = viper.GetFloat64("location.latitude")
	}
	if viper.IsSet("location.longitude") {
		cfg.Location.Longitude = viper.GetFloat64("location.longitude")
	}

	return nil
}

func initClient(ctx context.Context, login bool) error {
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	client, err = lk.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	client.SetConfigPath(GetConfigPath())
	if !login {
		return nil
	}

	if err := client.Init(ctx); err != nil {
		return err
	}

	// a missing member price is not fatal, chargers are then shown at list price
	if err := members.Refresh(ctx, client); err != nil {
		log.Warnf("Member prices unavailable: %v", err)
	}
	return nil
}

func setLogLevel() error {
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	log.SetLevel(lvl)
	return nil
}

func Execute() error {
	return RootCmd.Execute()
}

func GetClient() *lk.Client {
	return client
}

func GetConfig() *lk.Config {
	return cfg
}

func GetLogger() *logrus.Logger {
	return log
}

// GetMembers returns the member price registry of the logged in user
func GetMembers() *membership.Registry {
	return members
}

func GetConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	return lk.DefaultConfigFilePath
}

// StationID picks the station from the first argument or falls back to the configured one
func StationID(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg != nil && cfg.StationID != "" {
		return cfg.StationID, nil
	}
	return "", fmt.Errorf("station ID is required (pass it as argument or set station_id in config)")
}

// OwnedCharger returns the selected charger among the ones the user owns
func OwnedCharger(ctx context.Context, stationID string) (*managed.Charger, error) {
	if client == nil {
		return nil, fmt.Errorf("client not initialized")
	}
	chargers := managed.NewChargers(client)
	if _, err := chargers.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to get owned chargers: %w", err)
	}
	if err := chargers.Select(stationID); err != nil {
		return nil, err
	}
	return chargers.Selected(), nil
}
