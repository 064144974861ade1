// archivectl is a small operator CLI for the archive API. Its download
// command mirrors the web client's behavior: pre-check, fetch, content-type
// validation, and a sanitized local save.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docarchive/internal/client"
)

// stderrNotifier reports download outcomes on the terminal.
type stderrNotifier struct{}

func (stderrNotifier) Success(msg string) { fmt.Fprintln(os.Stderr, "ok:", msg) }
func (stderrNotifier) Failure(msg string) { fmt.Fprintln(os.Stderr, "error:", msg) }

func main() {
	var (
		serverURL string
		outDir    string
	)

	root := &cobra.Command{
		Use:           "archivectl",
		Short:         "Operator CLI for the judicial document archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "archive API base URL")

	download := &cobra.Command{
		Use:   "download <document-id>",
		Short: "Download a document's papers as one ZIP archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := client.New(serverURL, stderrNotifier{})

			doc, err := d.FetchDocument(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch document: %w", err)
			}

			path, err := d.Download(cmd.Context(), doc, outDir)
			if err != nil {
				// The notifier already reported the failure to the user.
				if errors.Is(err, client.ErrEmptyDocument) {
					return nil
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	download.Flags().StringVar(&outDir, "out", ".", "directory to save the archive into")
	root.AddCommand(download)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
