package cli

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"IntelBriefing/internal/config"
	"IntelBriefing/internal/domain"
)

const maxURLWidth = 72

func newSourcesCommand(loadConfig func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources in fetch order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			printSources(cmd.OutOrStdout(), domain.NewSources(cfg.Sources), cfg.Scraper.Backend)
			return nil
		},
	}
}

func printSources(w io.Writer, sources []domain.Source, backend string) {
	hostWidth := runewidth.StringWidth("HOST")
	for _, src := range sources {
		hostWidth = max(hostWidth, runewidth.StringWidth(hostOf(src.URL)))
	}

	fmt.Fprintf(w, "%s  %s  %s\n", runewidth.FillRight("#", 3), runewidth.FillRight("HOST", hostWidth), "URL")
	for _, src := range sources {
		fmt.Fprintf(w, "%s  %s  %s\n",
			runewidth.FillRight(strconv.Itoa(src.Position+1), 3),
			runewidth.FillRight(hostOf(src.URL), hostWidth),
			runewidth.Truncate(src.URL, maxURLWidth, "…"),
		)
	}
	fmt.Fprintf(w, "\n%d sources, backend %s\n", len(sources), backend)
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "-"
	}
	return u.Host
}
