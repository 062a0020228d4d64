package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/watch"
)

func watchCmd(st *state) *cobra.Command {
	var description, project, logFile string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Upload images as they are saved into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := st.app.Fs.Stat(args[0])
			if err != nil {
				return fmt.Errorf("failed to watch %s: %w", args[0], err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", args[0])
			}

			if !cmd.Flags().Changed("project") {
				project = st.cfg.ProjectName
			}
			if !cmd.Flags().Changed("log") {
				logFile = st.cfg.WatchLogFile
			}

			var recorder watch.Recorder
			history, err := st.app.History()
			if err != nil {
				st.out.warn(fmt.Sprintf("upload history disabled: %v", err))
			} else {
				recorder = history
			}

			w := watch.New(st.app.Gallery, recorder, watch.Config{
				Dir:         args[0],
				Description: description,
				ProjectName: project,
				LogFile:     logFile,
				Fs:          st.app.Fs,
			})
			w.OnUpload(func(image *model.Image) {
				fmt.Fprintf(st.out.out, "%s\t%s\n", image.OriginalFilename, image.URL)
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(st.out.out, "watching %s, press Ctrl+C to stop\n", args[0])
			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description applied to every uploaded file")
	cmd.Flags().StringVar(&project, "project", "", "prefix uploaded filenames as <project>_<name> (default PROJECT_NAME)")
	cmd.Flags().StringVar(&logFile, "log", "", "append filename:url lines to this file (default WATCH_LOG_FILE)")
	return cmd
}

