package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/templui/imagehost/internal/app"
	"github.com/templui/imagehost/internal/config"
	"github.com/templui/imagehost/internal/gallery"
	"github.com/templui/imagehost/internal/logger"
	"github.com/templui/imagehost/internal/validation"
)

type state struct {
	cfg     *config.Config
	app     *app.App
	out     *printer
	apiURL  string
	verbose bool
}

func (s *state) init(cmd *cobra.Command) error {
	s.cfg = config.Load()
	if s.apiURL != "" {
		s.cfg.APIBaseURL = s.apiURL
	}
	if s.verbose {
		s.cfg.Verbose = true
	}

	logger.Init(logger.Options{
		Dev:       s.cfg.IsDevelopment(),
		Verbose:   s.cfg.Verbose,
		SentryDSN: s.cfg.SentryDSN,
		Output:    cmd.ErrOrStderr(),
	})

	s.out = newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	a, err := app.New(s.cfg, gallery.WithNotifier(s.out))
	if err != nil {
		return err
	}
	s.app = a
	return nil
}

func (s *state) close() {
	if s.app == nil {
		return
	}
	err := s.app.Close()
	if err != nil {
		s.out.warn(fmt.Sprintf("failed to close history database: %v", err))
	}
}

func newRoot() (*cobra.Command, *state) {
	st := &state{}

	root := &cobra.Command{
		Use:           "imagehost",
		Short:         "Command line client for the imagehost image server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&st.apiURL, "api", "", "image server base URL (overrides API_BASE_URL)")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "log requests and other details to stderr")

	root.AddCommand(imagesCmd(st))
	root.AddCommand(pdfsCmd(st))
	root.AddCommand(historyCmd(st))
	root.AddCommand(watchCmd(st))

	return root, st
}

// Run executes the CLI and returns the process exit code
func Run(args []string, stdout, stderr io.Writer) int {
	root, st := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(context.Background())
	st.close()
	if err == nil {
		return 0
	}

	if st.out == nil {
		st.out = newPrinter(stdout, stderr)
	}
	if !st.out.reported(err) {
		st.out.fail(err)
	}
	return 1
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", validation.ErrInvalidID, arg)
	}
	return id, validation.ValidateID(id)
}
