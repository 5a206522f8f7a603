package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlfredBerg/jobdigest/internal/catalog"
	"github.com/AlfredBerg/jobdigest/internal/config"
	"github.com/AlfredBerg/jobdigest/internal/crawl"
	"github.com/AlfredBerg/jobdigest/internal/logger"
	"github.com/AlfredBerg/jobdigest/internal/mailer"
	"github.com/AlfredBerg/jobdigest/internal/outputHandlers/sqlite"
	"github.com/AlfredBerg/jobdigest/internal/roundup"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

type digestFlags struct {
	dryRun    bool
	fetchMode string
}

var flags digestFlags

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags = digestFlags{}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.jobdigest.yaml)")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the digest HTML to stdout instead of emailing it.")
	rootCmd.Flags().StringVar(&flags.fetchMode, "fetch-mode", config.FetchModeBrowser,
		"How pages are loaded: \"browser\" renders them in headless Chromium, \"static\" only downloads the HTML.")

	cobra.CheckErr(viper.BindPFlag("fetch_mode", rootCmd.Flags().Lookup("fetch-mode")))
	config.SetDefaults(viper.GetViper())
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".jobdigest" (without extension).
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".jobdigest")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Could not read config file:", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jobdigest",
	Short: "Scrape a few job boards and email the results as a daily digest",
	Long: `jobdigest loads each configured job board search, collects links that look like job
postings, and emails them as one HTML digest. Run it once a day from cron or a similar scheduler.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New(viper.GetString("log_level"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "Fatal error:", err)
			return err
		}
		defer log.Sync()

		if err := run(cmd.Context(), log); err != nil {
			log.Error("fatal error", zap.Error(err))
			return err
		}
		return nil
	},
}

func run(ctx context.Context, log *zap.Logger) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var sender roundup.Sender = mailer.New(cfg.SMTP, cfg.Location)
	if flags.dryRun {
		sender = mailer.Preview{W: os.Stdout}
	}

	r := &roundup.Runner{
		OpenSource:  sourceOpener(cfg),
		Queries:     catalog.Default(),
		Sender:      sender,
		MaxPerBoard: cfg.MaxPerBoard,
		MaxTotal:    cfg.MaxTotal,
		NavTimeout:  cfg.NavTimeout,
		Keywords:    cfg.Keywords,
		Location:    cfg.Location,
		Log:         log,
	}

	if cfg.ArchiveDB != "" {
		outputHandler := &sqlite.SqliteOutput{Database: cfg.ArchiveDB}
		if err := outputHandler.Init(); err != nil {
			log.Warn("run archive disabled", zap.String("database", cfg.ArchiveDB), zap.Error(err))
		} else {
			defer outputHandler.Cleanup()
			r.Archive = outputHandler
		}
	}

	_, err = r.Run(ctx)
	return err
}

func sourceOpener(cfg *config.Config) func(context.Context) (crawl.Source, error) {
	if cfg.FetchMode == config.FetchModeStatic {
		return func(context.Context) (crawl.Source, error) { return crawl.NewStatic(), nil }
	}
	return func(ctx context.Context) (crawl.Source, error) {
		b, err := crawl.NewBrowser(ctx, crawl.BrowserOptions{Bin: cfg.BrowserBin, Headless: cfg.Headless})
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}
