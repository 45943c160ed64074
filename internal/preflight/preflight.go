package preflight

import (
	"context"

	"podopt/internal/auphonic"
	"podopt/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free space below which a storage disk is reported.
const minFreeBytes = 1 << 30

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Private storage", cfg.Paths.PrivateDir),
		CheckDirectoryAccess("Public storage", cfg.Paths.PublicDir),
		CheckFreeSpace("Private storage space", cfg.Paths.PrivateDir, minFreeBytes),
		CheckFreeSpace("Public storage space", cfg.Paths.PublicDir, minFreeBytes),
		CheckWebhookURL(cfg.WebhookURL()),
	}

	client, err := auphonic.New(auphonic.Config{
		BaseURL: cfg.Auphonic.BaseURL,
		Token:   cfg.Auphonic.Token,
		Timeout: cfg.AuphonicTimeout(),
	})
	if err != nil {
		results = append(results, Result{Name: auphonicCheckName, Detail: err.Error()})
		return results
	}
	return append(results, CheckAuphonic(ctx, client, cfg.Auphonic.LowCreditThreshold))
}

// Failed filters the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
