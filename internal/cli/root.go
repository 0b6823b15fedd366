package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/threatlens/internal/application"
	appthreats "github.com/bryanwahyu/threatlens/internal/application/threats"
	"github.com/bryanwahyu/threatlens/internal/config"
	domain "github.com/bryanwahyu/threatlens/internal/domain/threats"
	"github.com/bryanwahyu/threatlens/internal/infra/ai"
	"github.com/bryanwahyu/threatlens/internal/infra/db"
	"github.com/bryanwahyu/threatlens/internal/logging"
)

// Opener builds the service a command runs against; the returned func releases it
type Opener func(ctx context.Context, cfg *config.Config) (*appthreats.Service, func() error, error)

// OpenService wires the configured database and model client
func OpenService(ctx context.Context, cfg *config.Config) (*appthreats.Service, func() error, error) {
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := &appthreats.Service{
		Repo:       store.Repo,
		AI:         ai.NewFromConfig(cfg),
		Normalizer: domain.NewNormalizer(),
		Tagger:     domain.NewTagger(),
		Clock:      application.SystemClock{},
		Log:        logging.Logger,
	}
	return svc, store.Close, nil
}

type rootOptions struct {
	configPath string
	debug      bool
	open       Opener
}

// withService loads config, opens the service, and runs fn against it
func (o *rootOptions) withService(cmd *cobra.Command, fn func(*appthreats.Service) error) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if o.debug || cfg.Debug {
		logging.Init(true)
	}
	svc, closeFn, err := o.open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}

// NewRootCmd builds the threatctl command tree
func NewRootCmd(open Opener) *cobra.Command {
	opts := &rootOptions{open: open}
	if opts.open == nil {
		opts.open = OpenService
	}

	defaultConfig := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}

	root := &cobra.Command{
		Use:   "threatctl",
		Short: "Ask a model about cyber threats and keep a tagged history",
		Long: `threatctl sends threat-intelligence questions to an LLM, normalizes the
answer into attack vector, timeline, impact and mitigation fields, tags it
with a severity and attack type, and stores it for later export.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "config file (env CONFIG_PATH)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newHistoryCmd(opts),
		newShowCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newTemplatesCmd(),
	)
	return root
}
