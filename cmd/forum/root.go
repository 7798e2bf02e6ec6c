// Command forum runs the forum web server.
//
// Configuration is resolved in this order, highest first:
//  1. command-line flags (--addr, --store, --store-uri, --log-level)
//  2. FORUM_* environment variables (FORUM_SERVER_ADDR, FORUM_STORE_DRIVER, ...)
//  3. the config file: --config, FORUM_CONFIG_FILE, or ./.forum.yml
//  4. built-in defaults
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"forum/internal/config"
)

type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	config.SetDefaults(c.v)

	root := &cobra.Command{
		Use:   "forum",
		Short: "A minimal web forum",
		Long: `forum serves a small web forum: write posts, read them one by one,
or list them all. Posts live in MongoDB by default; postgres, sqlite and an
in-memory store are also available.

Examples:
  forum serve                                # MongoDB on 127.0.0.1:27017
  forum serve --store memory --addr :8080
  forum serve --store sqlite --store-uri ./forum.db
  forum config show`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.readConfig()
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default ./.forum.yml, or FORUM_CONFIG_FILE)")
	root.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	c.bindFlags(root.PersistentFlags(), map[string]string{"log.level": "log-level"})

	root.AddCommand(c.newServeCmd(), c.newConfigCmd())
	return root
}

func (c *cli) readConfig() error {
	explicit := c.cfgFile
	if explicit == "" {
		explicit = os.Getenv("FORUM_CONFIG_FILE")
	}
	if explicit != "" {
		c.v.SetConfigFile(explicit)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigType("yaml")
		c.v.SetConfigName(".forum")
	}
	config.BindEnv(c.v)

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", c.v.ConfigFileUsed())
	return nil
}

// bindFlags maps config keys to flag names. A missing flag is a programming
// error.
func (c *cli) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			panic(fmt.Sprintf("flag --%s not defined", name))
		}
		if err := c.v.BindPFlag(key, f); err != nil {
			panic(fmt.Sprintf("bind --%s: %v", name, err))
		}
	}
}
