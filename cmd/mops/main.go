package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"mops-cli/internal/cli"
)

func isCampaignID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "cmp-") && len(s) > len("cmp-")
}

// rewriteDirectCampaignLookupArgs makes `mops <campaign-id>` work like
// `mops campaigns show <campaign-id>`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first, so this looks for the first
// positional token rather than argv[1].
func rewriteDirectCampaignLookupArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--api-url": true,
		"--org":     true,
		"--token":   true,
		"--timeout": true,
		"--format":  true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if isCampaignID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "campaigns", "show")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectCampaignLookupArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := cli.NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
