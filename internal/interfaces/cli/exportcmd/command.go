// Package exportcmd drives the CSV data export.
package exportcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clinadm/internal/application/export"
	"clinadm/internal/interfaces/cli/app"
	"clinadm/internal/interfaces/cli/render"
)

var outputDir string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export clinic data as CSV",
	}
	cmd.AddCommand(newPreviewCommand(), newDownloadCommand())
	return cmd
}

func newPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Print the export in the terminal",
		RunE:  runPreview,
	}
}

func newDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Save the export to a file",
		RunE:  runDownload,
	}
	cmd.Flags().StringVarP(&outputDir, "dir", "d", ".", "Directory to write the file into")
	return cmd
}

func newService() (*export.Service, error) {
	a, err := app.Bootstrap()
	if err != nil {
		return nil, err
	}
	role, err := a.Role()
	if err != nil {
		return nil, err
	}
	return export.NewService(a.Client, a.Gate, role), nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	rows, err := svc.Preview(cmd.Context())
	if err != nil {
		return err
	}
	render.CSV(os.Stdout, rows)
	return nil
}

func runDownload(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	path, err := svc.Download(cmd.Context(), outputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Written to %s\n", path)
	return nil
}
