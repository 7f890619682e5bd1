package cmd

import (
	"reflect"
	"testing"

	"github.com/palantir/asana-mailer/internal/config"
)

func TestValidateDelivery(t *testing.T) {
	tests := []struct {
		name    string
		mail    config.MailConfig
		wantErr bool
	}{
		{
			name:    "no mail config",
			mail:    config.MailConfig{},
			wantErr: false,
		},
		{
			name: "from and to with server",
			mail: config.MailConfig{
				Server: "smtp.example.com",
				From:   "reports@example.com",
				To:     []string{"team@example.com"},
			},
			wantErr: false,
		},
		{
			name: "from without to",
			mail: config.MailConfig{
				Server: "smtp.example.com",
				From:   "reports@example.com",
			},
			wantErr: true,
		},
		{
			name: "to without from",
			mail: config.MailConfig{
				Server: "smtp.example.com",
				To:     []string{"team@example.com"},
			},
			wantErr: true,
		},
		{
			name: "addresses without server falls back to localhost",
			mail: config.MailConfig{
				From: "reports@example.com",
				To:   []string{"team@example.com"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDelivery(tt.mail)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDelivery() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDeliverByMail(t *testing.T) {
	tests := []struct {
		name string
		mail config.MailConfig
		want bool
	}{
		{
			name: "no addresses writes files",
			mail: config.MailConfig{Server: "smtp.example.com"},
			want: false,
		},
		{
			name: "from and to sends email",
			mail: config.MailConfig{
				From: "reports@example.com",
				To:   []string{"team@example.com"},
			},
			want: true,
		},
		{
			name: "from alone writes files",
			mail: config.MailConfig{From: "reports@example.com"},
			want: false,
		},
		{
			name: "to alone writes files",
			mail: config.MailConfig{To: []string{"team@example.com"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deliverByMail(tt.mail); got != tt.want {
				t.Errorf("deliverByMail() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeSections(t *testing.T) {
	got := normalizeSections([]string{"In Flight", "Done:", "Misc"})
	want := []string{"In Flight:", "Done:", "Misc:"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeSections = %v, want %v", got, want)
	}
}

func TestApplyGenerateFlags(t *testing.T) {
	flags := generateCmd.Flags()
	if err := flags.Set("completed", "24"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := flags.Set("filter-tags", "weekly,ops"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Report.SectionFilters = []string{"Done:"}
	applyGenerateFlags(cfg, flags)

	if cfg.Report.CompletedLookbackHours != 24 {
		t.Errorf("completed lookback = %d, want 24", cfg.Report.CompletedLookbackHours)
	}
	if !reflect.DeepEqual(cfg.Report.TagFilters, []string{"weekly", "ops"}) {
		t.Errorf("tag filters = %v", cfg.Report.TagFilters)
	}
	// A flag the user never set must leave the config value alone
	if !reflect.DeepEqual(cfg.Report.SectionFilters, []string{"Done:"}) {
		t.Errorf("section filters overwritten: %v", cfg.Report.SectionFilters)
	}
}
