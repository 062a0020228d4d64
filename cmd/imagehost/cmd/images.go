package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/templui/imagehost/internal/app"
	"github.com/templui/imagehost/internal/gallery"
	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/service"
)

func imagesCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "List, upload and delete images",
	}

	cmd.AddCommand(imagesListCmd(st))
	cmd.AddCommand(imagesShowCmd(st))
	cmd.AddCommand(imagesLinkCmd(st))
	cmd.AddCommand(imagesUploadCmd(st))
	cmd.AddCommand(imagesDeleteCmd(st))
	cmd.AddCommand(imagesExportCmd(st))

	return cmd
}

func imagesListCmd(st *state) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List images in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := st.app.Gallery
			err := g.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			images := g.Search(search)
			switch {
			case len(g.Images()) == 0:
				st.out.warn("no images uploaded yet")
				return nil
			case len(images) == 0:
				st.out.warn(fmt.Sprintf("no images match %q", search))
				return nil
			}

			st.out.images(images)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "only show images whose filename or description contains this text")
	return cmd
}

func imagesShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one image record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			image, err := st.app.Client.GetImage(cmd.Context(), id)
			if err != nil {
				return err
			}
			st.out.image(image)
			return nil
		},
	}
}

func imagesLinkCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "link <id>",
		Short: "Print the direct link of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			image, err := st.app.Client.GetImage(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(st.out.out, image.URL)
			return nil
		},
	}
}

func imagesUploadCmd(st *state) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload one or more images with a shared description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []*model.Upload
			for _, path := range args {
				upload, err := gallery.ReadUpload(st.app.Fs, path)
				if err != nil {
					st.out.Notify(gallery.Notice{Level: gallery.LevelError, Message: err.Error()})
					continue
				}
				files = append(files, upload)
			}

			report, err := st.app.Gallery.UploadBatch(cmd.Context(), files, description, st.out.progress)
			if err != nil {
				return err
			}

			recordHistory(st, report.Uploaded, model.HistorySourceCLI)

			for _, image := range report.Uploaded {
				fmt.Fprintf(st.out.out, "%d\t%s\t%s\n", image.ID, image.OriginalFilename, image.URL)
			}
			for _, failed := range report.Failed {
				st.out.Notify(gallery.Notice{Level: gallery.LevelError, Message: failed.Error(), Err: failed.Err})
			}

			if report.Outcome == gallery.OutcomeFailed {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "description applied to every file (max 100 characters)")
	return cmd
}

// recordHistory is best effort: a broken history database never fails an upload
func recordHistory(st *state, images []*model.Image, source string) {
	if len(images) == 0 {
		return
	}

	history, err := st.app.History()
	if err != nil {
		st.out.warn(fmt.Sprintf("upload history not saved: %v", err))
		return
	}
	for _, image := range images {
		_, err = history.Record(image, source)
		if err != nil {
			st.out.warn(fmt.Sprintf("upload history not saved: %v", err))
			return
		}
	}
}

func imagesDeleteCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an image",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			err = st.app.Gallery.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}

			history, err := st.app.History()
			if err == nil {
				err = history.Forget(id)
			}
			if err != nil {
				st.out.warn(fmt.Sprintf("upload history not updated: %v", err))
			}
			return nil
		},
	}
}

func imagesExportCmd(st *state) *cobra.Command {
	var to, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy every image to a local directory or an S3 bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			start := time.Now()

			exporter, err := st.app.Exporter(ctx, to, dir)
			if err != nil {
				return err
			}

			g := st.app.Gallery
			err = g.Refresh(ctx)
			if err != nil {
				return err
			}
			images := g.Images()
			if len(images) == 0 {
				st.out.warn("no images to export")
				return nil
			}

			result := exporter.Export(ctx, images, func(image *model.Image, done, total int, err error) {
				if err != nil {
					st.out.Notify(gallery.Notice{Level: gallery.LevelError, Message: fmt.Sprintf("%s: %s", service.ExportName(image), err)})
					return
				}
				st.out.progress(done*100/total, done, total)
			})

			summary := fmt.Sprintf("exported %d/%d images (%s) in %s", len(result.Saved), len(images), humanize.Bytes(uint64(result.Bytes)), st.out.since(start))
			switch {
			case len(result.Saved) == 0:
				return fmt.Errorf("no images were exported")
			case len(result.Failed) > 0:
				st.out.warn(summary)
			default:
				st.out.Notify(gallery.Notice{Level: gallery.LevelSuccess, Message: summary})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", app.ExportToDir, "export target: dir or s3")
	cmd.Flags().StringVar(&dir, "dir", "", "target directory for --to dir (default EXPORT_DIR)")
	return cmd
}
