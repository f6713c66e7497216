package run

import (
	"github.com/spf13/cobra"

	"github.com/flarebyte/relmail/internal/distribution"
)

// placeholderLink stands in for upload links that do not exist yet.
const placeholderLink = "about:blank"

// PreviewCmd represents the `relmail preview` command. It renders the email
// without uploading or sending anything.
var PreviewCmd = newPreviewCmd()

func newPreviewCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "preview",
		Short:         "Render the release email to stdout without uploading or sending",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return usageError(err)
			}
			if err := cfg.ValidatePreview(); err != nil {
				return usageError(err)
			}
			in := newEnvelope(cfg)
			in.Upload = &distribution.UploadResult{Link: o.link, QRCode: o.qrcode}
			deps := newDeps(cfg, o, cmd.OutOrStdout(), cmd.ErrOrStderr())
			_, err = executePipeline(cmd.Context(), in, previewStageNames, deps)
			return evaluateRunExit(err)
		},
	}
	bindCommonFlags(cmd, o)
	cmd.Flags().StringVar(&o.link, "link", placeholderLink, "Download link used for {app_download_url}")
	cmd.Flags().StringVar(&o.qrcode, "qrcode", placeholderLink, "QR code link used for {app_logo_url}")
	return cmd
}
