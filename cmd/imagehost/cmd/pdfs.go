package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/templui/imagehost/internal/client"
	"github.com/templui/imagehost/internal/gallery"
	"github.com/templui/imagehost/internal/markdown"
	"github.com/templui/imagehost/internal/model"
)

func pdfsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfs",
		Short: "Convert PDFs to Word and Markdown",
	}

	cmd.AddCommand(pdfsConvertCmd(st))
	cmd.AddCommand(pdfsListCmd(st))
	cmd.AddCommand(pdfsShowCmd(st))
	cmd.AddCommand(pdfsTextCmd(st))
	cmd.AddCommand(pdfsDownloadCmd(st))
	cmd.AddCommand(pdfsMarkdownCmd(st))
	cmd.AddCommand(pdfsDeleteCmd(st))

	return cmd
}

func pdfsConvertCmd(st *state) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "convert <file.pdf>",
		Short: "Upload a PDF and convert it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, err := gallery.ReadUpload(st.app.Fs, args[0])
			if err != nil {
				return err
			}

			conversion, err := st.app.Conversions.Convert(cmd.Context(), upload, description)
			if err != nil {
				return err
			}
			st.out.conversion(conversion)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}

func pdfsListCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversions in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conversions := st.app.Conversions
			err := conversions.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if len(conversions.Items()) == 0 {
				st.out.warn("no conversions yet")
				return nil
			}
			st.out.conversions(conversions.Items())
			return nil
		},
	}
}

func getConversion(st *state, cmd *cobra.Command, arg string) (*model.Conversion, error) {
	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}
	return st.app.Client.GetConversion(cmd.Context(), id)
}

func pdfsShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one conversion record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conversion, err := getConversion(st, cmd, args[0])
			if err != nil {
				return err
			}
			st.out.conversion(conversion)
			return nil
		},
	}
}

func pdfsTextCmd(st *state) *cobra.Command {
	var processed, asJSON bool

	cmd := &cobra.Command{
		Use:   "text <id>",
		Short: "Print the text extracted from a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				text, err := st.app.Client.ConversionTextJSON(cmd.Context(), id)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(st.out.out)
				enc.SetIndent("", "  ")
				return enc.Encode(text)
			}

			kind := model.TextKindRaw
			if processed {
				kind = model.TextKindProcessed
			}
			text, err := st.app.Client.ConversionText(cmd.Context(), id, kind)
			if err != nil {
				return err
			}
			fmt.Fprintln(st.out.out, text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&processed, "processed", false, "print the cleaned-up text instead of the raw extraction")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw and processed text as JSON")
	return cmd
}

// openOutput returns stdout for "-" and a created file otherwise
func openOutput(st *state, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return st.out.out, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	err := st.app.Fs.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	f, err := st.app.Fs.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func pdfsDownloadCmd(st *state) *cobra.Command {
	var asMarkdown bool
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the Word (default) or Markdown output of a conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conversion, err := getConversion(st, cmd, args[0])
			if err != nil {
				return err
			}

			filename, kind := conversion.OutputFilename, client.DownloadWord
			if asMarkdown {
				if !conversion.HasMarkdown() {
					return fmt.Errorf("conversion %d has no markdown output", conversion.ID)
				}
				filename, kind = conversion.MarkdownPath, client.DownloadMarkdown
			}

			target := output
			if target == "" {
				target = filepath.Base(filename)
			}

			w, closeFn, err := openOutput(st, target)
			if err != nil {
				return err
			}

			n, err := st.app.Client.DownloadConversion(cmd.Context(), filename, kind, w)
			closeErr := closeFn()
			if err != nil {
				if target != "-" {
					_ = st.app.Fs.Remove(target)
				}
				return err
			}
			if closeErr != nil {
				return fmt.Errorf("failed to write %s: %w", target, closeErr)
			}

			if target != "-" {
				st.out.Notify(gallery.Notice{Level: gallery.LevelSuccess, Message: fmt.Sprintf("saved %s (%s)", target, humanize.Bytes(uint64(n)))})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "download the Markdown file instead of the Word document")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout (default: server filename)")
	return cmd
}

func pdfsMarkdownCmd(st *state) *cobra.Command {
	var htmlOut string

	cmd := &cobra.Command{
		Use:   "markdown <id>",
		Short: "Print the Markdown output of a conversion, or render it to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conversion, err := getConversion(st, cmd, args[0])
			if err != nil {
				return err
			}
			if !conversion.HasMarkdown() {
				return fmt.Errorf("conversion %d has no markdown output", conversion.ID)
			}

			var source bytes.Buffer
			_, err = st.app.Client.DownloadConversion(cmd.Context(), conversion.MarkdownPath, client.DownloadMarkdown, &source)
			if err != nil {
				return err
			}

			if htmlOut == "" {
				_, err = st.out.out.Write(source.Bytes())
				return err
			}

			w, closeFn, err := openOutput(st, htmlOut)
			if err != nil {
				return err
			}

			err = markdown.NewParser().Document(w, source.Bytes(), conversion.OriginalFilename)
			closeErr := closeFn()
			if err != nil {
				return err
			}
			if closeErr != nil {
				return fmt.Errorf("failed to write %s: %w", htmlOut, closeErr)
			}

			if htmlOut != "-" {
				st.out.Notify(gallery.Notice{Level: gallery.LevelSuccess, Message: "wrote " + htmlOut})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlOut, "html", "", "render a standalone HTML page to this path (- for stdout)")
	return cmd
}

func pdfsDeleteCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a conversion and its output files",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return st.app.Conversions.Delete(cmd.Context(), id)
		},
	}
}
