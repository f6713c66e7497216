package run

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/relmail/internal/config"
)

// options mirrors the command-line flags. Values only override the file and
// environment when the flag was set explicitly.
type options struct {
	configPath string
	envFile    string
	verbose    bool
	progress   bool

	releaseDir    string
	changelogFile string
	templateFile  string
	appName       string
	emailTo       string
	gmailUser     string
	gmailPassword string
	diawiToken    string

	uploadURL    string
	statusURL    string
	pollInterval time.Duration
	pollTimeout  time.Duration
	maxAttempts  int
	smtpHost     string
	smtpPort     int
	gitRepo      string
	output       string
	logFormat    string

	link   string
	qrcode string
}

func bindCommonFlags(cmd *cobra.Command, o *options) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "Path to config file (.cue)")
	f.StringVar(&o.envFile, "env-file", ".env", "Dotenv file loaded before reading RELMAIL_* variables")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log debug details")
	f.StringVar(&o.releaseDir, "release.dir", "", "Path to the release folder holding output-metadata.json")
	f.StringVar(&o.changelogFile, "changelog.file", "", "Path to the changelog file")
	f.StringVar(&o.templateFile, "template.file", "", "Path to the email template file")
	f.StringVar(&o.appName, "app.name", "", "App display name")
	f.StringVar(&o.gitRepo, "git.repo", "", "Repository used to fill {git_commit} and {git_branch}")
	f.StringVar(&o.logFormat, "log.format", "", "Log format: text|json")
}

func bindRunFlags(cmd *cobra.Command, o *options) {
	bindCommonFlags(cmd, o)
	f := cmd.Flags()
	f.StringVar(&o.emailTo, "email.to", "", "Comma separated email recipients")
	f.StringVar(&o.gmailUser, "gmail.user", "", "SMTP username")
	f.StringVar(&o.gmailPassword, "gmail.password", "", "SMTP password")
	f.StringVar(&o.diawiToken, "diawi.token", "", "Distribution service API token")
	f.StringVar(&o.uploadURL, "upload.url", "", "Upload endpoint")
	f.StringVar(&o.statusURL, "status.url", "", "Job status endpoint")
	f.DurationVar(&o.pollInterval, "poll.interval", 0, "Delay between status requests (default 1s)")
	f.DurationVar(&o.pollTimeout, "poll.timeout", 0, "Give up waiting for the upload after this long (default 10m)")
	f.IntVar(&o.maxAttempts, "poll.max-attempts", 0, "Maximum status requests, 0 for no limit")
	f.StringVar(&o.smtpHost, "smtp.host", "", "SMTP host (default smtp.gmail.com)")
	f.IntVar(&o.smtpPort, "smtp.port", 0, "SMTP implicit TLS port (default 465)")
	f.StringVar(&o.output, "output", "", "Run summary format: yaml|json|none")
	f.BoolVar(&o.progress, "progress", true, "Print upload progress to stderr")
}

// loadConfig merges the config file, environment and explicit flags.
func loadConfig(cmd *cobra.Command, o *options) (*config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.LoadFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if o.envFile != "" {
		if err := config.LoadDotEnv(o.envFile); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(&cfg, nil); err != nil {
		return nil, err
	}
	applyFlags(cmd, o, &cfg)
	cfg.Sanitize()
	return &cfg, nil
}

func applyFlags(cmd *cobra.Command, o *options, cfg *config.Config) {
	set := func(name string, apply func()) {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			apply()
		}
	}
	set("release.dir", func() { cfg.ReleaseDir = o.releaseDir })
	set("changelog.file", func() { cfg.ChangelogFile = o.changelogFile })
	set("template.file", func() { cfg.TemplateFile = o.templateFile })
	set("app.name", func() { cfg.AppName = o.appName })
	set("email.to", func() { cfg.EmailTo = o.emailTo })
	set("gmail.user", func() { cfg.Mail.User = o.gmailUser })
	set("gmail.password", func() { cfg.Mail.Password = o.gmailPassword })
	set("diawi.token", func() { cfg.Distribution.Token = o.diawiToken })
	set("upload.url", func() { cfg.Distribution.UploadURL = o.uploadURL })
	set("status.url", func() { cfg.Distribution.StatusURL = o.statusURL })
	set("poll.interval", func() { cfg.Distribution.PollInterval = o.pollInterval })
	set("poll.timeout", func() { cfg.Distribution.PollTimeout = o.pollTimeout })
	set("poll.max-attempts", func() { cfg.Distribution.MaxAttempts = o.maxAttempts })
	set("smtp.host", func() { cfg.Mail.Host = o.smtpHost })
	set("smtp.port", func() { cfg.Mail.Port = o.smtpPort })
	set("git.repo", func() { cfg.GitRepo = o.gitRepo })
	set("output", func() { cfg.Output = o.output })
	set("log.format", func() { cfg.LogFormat = o.logFormat })
}
