// Package cmd implements the generate command for asana-mailer.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/palantir/asana-mailer/internal/asana"
	"github.com/palantir/asana-mailer/internal/cache"
	"github.com/palantir/asana-mailer/internal/config"
	"github.com/palantir/asana-mailer/internal/deliver"
	"github.com/palantir/asana-mailer/internal/render"
	"github.com/palantir/asana-mailer/internal/report"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [project-id]",
	Short: "Generate and deliver a project status report",
	Long: `Generate a status report for an Asana project and deliver it.

The project's tasks are grouped into sections (a task whose name ends with
':' marks the start of a section; tasks before the first marker land in a
synthetic 'Misc:' section). Tag and section filters narrow the report, and
empty sections are dropped.

When from and to addresses are configured the report is emailed as a
multipart message via the mail server (default localhost). Otherwise it is
written to
AsanaMailer_<date>.html and AsanaMailer_<date>.markdown in the current
directory. A delivery failure is logged but does not fail the run.

Examples:
  asana-mailer generate 123456789
  asana-mailer generate 123456789 --completed 24
  asana-mailer generate 123456789 --filter-tags weekly,ops
  asana-mailer generate 123456789 --filter-sections "In Flight"
  asana-mailer generate 123456789 --mail-server smtp.example.com \
      --from-address reports@example.com --to-addresses team@example.com`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var (
	genToken          string
	genCompleted      int
	genFilterTags     []string
	genFilterSections []string
	genSkipInlineCSS  bool
	genHTMLTemplate   string
	genTextTemplate   string
	genTemplatesDir   string
	genMailServer     string
	genSMTPPort       int
	genFromAddress    string
	genToAddresses    []string
	genCcAddresses    []string
	genUsername       string
	genPassword       string
	genUseCache       bool
	genTimeout        int
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&genToken, "token", "", "Asana personal access token (default: config or ASANA_ACCESS_TOKEN)")
	generateCmd.Flags().IntVar(&genCompleted, "completed", 0, "Include tasks completed within the last N hours")
	generateCmd.Flags().StringSliceVar(&genFilterTags, "filter-tags", nil, "Only include tasks carrying all of these tags")
	generateCmd.Flags().StringSliceVar(&genFilterSections, "filter-sections", nil, "Only include these sections")
	generateCmd.Flags().BoolVar(&genSkipInlineCSS, "skip-inline-css", false, "Skip inlining CSS into the HTML report")
	generateCmd.Flags().StringVar(&genHTMLTemplate, "html-template", "", "Custom HTML template file name")
	generateCmd.Flags().StringVar(&genTextTemplate, "text-template", "", "Custom text template file name")
	generateCmd.Flags().StringVar(&genTemplatesDir, "templates-dir", "", "Directory holding custom templates")
	generateCmd.Flags().StringVar(&genMailServer, "mail-server", "", "SMTP server for report delivery")
	generateCmd.Flags().IntVar(&genSMTPPort, "smtp-port", 0, "SMTP port (default: 465 when authenticated)")
	generateCmd.Flags().StringVar(&genFromAddress, "from-address", "", "Sender address")
	generateCmd.Flags().StringSliceVar(&genToAddresses, "to-addresses", nil, "Recipient addresses")
	generateCmd.Flags().StringSliceVar(&genCcAddresses, "cc-addresses", nil, "Cc addresses")
	generateCmd.Flags().StringVar(&genUsername, "username", "", "SMTP username")
	generateCmd.Flags().StringVar(&genPassword, "password", "", "SMTP password")
	generateCmd.Flags().BoolVar(&genUseCache, "cache", false, "Cache fetched comments in the local story cache")
	generateCmd.Flags().IntVar(&genTimeout, "timeout", 0, "Asana API timeout in seconds (default: 30)")
}

// loadConfig reads the effective configuration, honoring --config.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(".")
}

// applyGenerateFlags folds command-line flags into the loaded config.
// A flag the user actually set wins over the file value.
func applyGenerateFlags(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("token") {
		cfg.Asana.AccessToken = genToken
	}
	if flags.Changed("completed") {
		cfg.Report.CompletedLookbackHours = genCompleted
	}
	if flags.Changed("filter-tags") {
		cfg.Report.TagFilters = genFilterTags
	}
	if flags.Changed("filter-sections") {
		cfg.Report.SectionFilters = genFilterSections
	}
	if flags.Changed("skip-inline-css") {
		cfg.Report.SkipInlineCSS = genSkipInlineCSS
	}
	if flags.Changed("html-template") {
		cfg.Templates.HTML = genHTMLTemplate
	}
	if flags.Changed("text-template") {
		cfg.Templates.Text = genTextTemplate
	}
	if flags.Changed("templates-dir") {
		cfg.Templates.Dir = genTemplatesDir
	}
	if flags.Changed("mail-server") {
		cfg.Mail.Server = genMailServer
	}
	if flags.Changed("smtp-port") {
		cfg.Mail.Port = genSMTPPort
	}
	if flags.Changed("from-address") {
		cfg.Mail.From = genFromAddress
	}
	if flags.Changed("to-addresses") {
		cfg.Mail.To = genToAddresses
	}
	if flags.Changed("cc-addresses") {
		cfg.Mail.Cc = genCcAddresses
	}
	if flags.Changed("username") {
		cfg.Mail.Username = genUsername
	}
	if flags.Changed("password") {
		cfg.Mail.Password = genPassword
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = genUseCache
	}
	if flags.Changed("timeout") {
		cfg.Asana.TimeoutSeconds = genTimeout
	}
}

// deliverByMail reports whether the report goes out as email rather than
// files. Email is chosen iff both a from address and to addresses are set;
// validateDelivery has already rejected one without the other.
func deliverByMail(m config.MailConfig) bool {
	return m.From != "" && len(m.To) > 0
}

// validateDelivery checks the mail settings that can only be judged together.
func validateDelivery(m config.MailConfig) error {
	fromSet := m.From != ""
	toSet := len(m.To) > 0
	if fromSet != toSet {
		return fmt.Errorf("--from-address and --to-addresses must be given together")
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyGenerateFlags(cfg, cmd.Flags())

	projectID := cfg.Asana.ProjectID
	if len(args) > 0 {
		projectID = args[0]
	}
	if projectID == "" {
		return fmt.Errorf("project ID required: pass it as an argument or set asana.project_id in config")
	}
	if cfg.Asana.AccessToken == "" {
		return fmt.Errorf("no Asana access token: use --token, set %s, or run 'asana-mailer init'", config.AccessTokenEnvVar)
	}
	if err := validateDelivery(cfg.Mail); err != nil {
		return err
	}

	log, closeLog, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	api := asana.New(asana.Config{
		Token:   cfg.Asana.AccessToken,
		BaseURL: cfg.Asana.BaseURL,
		Timeout: time.Duration(cfg.Asana.TimeoutSeconds) * time.Second,
		Logger:  log,
	})

	opts := report.AssembleOptions{
		TagFilters:     report.NewStringSet(cfg.Report.TagFilters...),
		SectionFilters: report.NewStringSet(normalizeSections(cfg.Report.SectionFilters)...),
		Workers:        cfg.Report.Workers,
		Logger:         log,
	}
	if cfg.Report.CompletedLookbackHours > 0 {
		opts.CompletedLookback = time.Duration(cfg.Report.CompletedLookbackHours) * time.Hour
	}

	if cfg.Cache.Enabled {
		storyCache, err := openStoryCache(cfg)
		if err != nil {
			// A broken cache should not block the report
			log.Warn("story cache unavailable", "error", err)
		} else {
			defer storyCache.Close()
			opts.Cache = storyCache
		}
	}

	now := time.Now()
	ctx := context.Background()

	log.Info("assembling report", "project", projectID)
	project, err := report.Assemble(ctx, api, projectID, now, opts)
	if err != nil {
		return fmt.Errorf("assembling report: %w", err)
	}

	renderer, err := render.New(render.Options{
		TemplatesDir: cfg.Templates.Dir,
		HTMLTemplate: cfg.Templates.HTML,
		TextTemplate: cfg.Templates.Text,
		InlineCSS:    !cfg.Report.SkipInlineCSS,
		Logger:       log,
	})
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	htmlBody, textBody, err := renderer.Render(project, now)
	if err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	// Deliver: email when configured, files otherwise. Either way a
	// delivery failure is logged, not returned.
	if deliverByMail(cfg.Mail) {
		server := cfg.Mail.Server
		if server == "" {
			server = "localhost"
		}
		subject := fmt.Sprintf("%s Daily Mailer %s", project.Name, now.Format("2006-01-02"))
		err := deliver.SendMail(ctx, subject, htmlBody, textBody, deliver.MailOptions{
			Server:   server,
			Port:     cfg.Mail.Port,
			From:     cfg.Mail.From,
			To:       cfg.Mail.To,
			Cc:       cfg.Mail.Cc,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			Logger:   log,
		})
		if err != nil {
			log.Error("sending report email", "error", err)
		}
		return nil
	}

	if err := deliver.WriteFiles(".", now, htmlBody, textBody, log); err != nil {
		log.Error("writing report files", "error", err)
	}
	return nil
}

// normalizeSections appends the trailing colon to section filter names that
// lack it, so "--filter-sections 'In Flight'" matches the section marker.
func normalizeSections(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if report.IsSectionMarker(name) {
			out[i] = name
		} else {
			out[i] = name + ":"
		}
	}
	return out
}

// openStoryCache opens the story cache inside the config directory,
// creating the directory if needed. A cache.dir setting overrides the
// default location.
func openStoryCache(cfg *config.Config) (*cache.Cache, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		configDir, err := config.EnsureConfigDir(".")
		if err != nil {
			return nil, err
		}
		dir = configDir
	}
	return cache.Open(dir)
}
