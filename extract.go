package ytcookies

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

const (
	defaultDomain = "youtube.com"
	defaultOutput = "youtube_cookies.txt"
)

// Extract runs the full pipeline: discover profiles for each candidate
// browser, snapshot and read each cookie store, decrypt the values, merge
// everything across sources and write one Netscape cookie file.
//
// All discovered sources are read, not just the first that succeeds; a later
// scan overwriting an earlier cookie is deliberate (the preference order ends
// on the source assumed freshest). Only total exhaustion is an error, and it
// carries the per-source reasons. Nothing is written in that case.
func Extract(ctx context.Context, env Env, opts Options) (Report, error) {
	if opts.Domain == "" {
		opts.Domain = defaultDomain
	}
	if opts.Output == "" {
		opts.Output = defaultOutput
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	browsers := opts.Browsers
	if len(browsers) == 0 {
		browsers = DefaultBrowsers()
	}

	var report Report
	var all []Cookie

	for _, b := range browsers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		profiles, warnings := discoverProfiles(env, b)
		report.Warnings = append(report.Warnings, warnings...)
		if len(profiles) == 0 {
			report.Sources = append(report.Sources, SourceReport{Browser: b, Failure: FailureNotFound})
			continue
		}

		// One key resolver per user-data root; a failed key read is
		// remembered so sibling profiles fail fast with the same reason.
		keysByRoot := make(map[string]*chromiumKeys)
		for _, prof := range profiles {
			var cookies []Cookie
			var rep SourceReport
			var w []string

			if b == BrowserFirefox {
				cookies, rep, w = readFirefoxProfile(ctx, prof, opts.Domain, opts.IncludeExpired)
			} else {
				keys, ok := keysByRoot[prof.UserData]
				if !ok {
					keys = &chromiumKeys{
						vendor:   chromiumVendorForBrowser(b),
						userData: prof.UserData,
						timeout:  opts.Timeout,
					}
					keysByRoot[prof.UserData] = keys
				}
				cookies, rep, w = readChromiumProfile(ctx, prof, opts.Domain, keys, opts.IncludeExpired)
			}

			report.Warnings = append(report.Warnings, w...)
			report.Sources = append(report.Sources, rep)
			report.Dropped += rep.Dropped
			all = append(all, cookies...)
		}
	}

	if len(all) == 0 {
		return report, &ExhaustedError{Sources: report.Sources}
	}

	report.Cookies = dedupeCookies(all)

	out, err := filepath.Abs(opts.Output)
	if err != nil {
		out = opts.Output
	}
	if err := writeCookieFile(out, report.Cookies); err != nil {
		return report, fmt.Errorf("ytcookies: writing cookie file: %w", err)
	}
	report.Output = out
	return report, nil
}
