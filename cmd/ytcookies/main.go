package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/MihrimatriX/ytcookies"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "ytcookies"
	app.Usage = "extract YouTube session cookies from local browsers into a Netscape cookie file"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "browser, b",
			Value: "auto",
			Usage: "browser to read: auto, edge, chrome or firefox (auto tries Edge, Chrome, Firefox in order)",
		},
		cli.StringFlag{
			Name:  "output, o",
			Value: "youtube_cookies.txt",
			Usage: "cookie file to write",
		},
		cli.StringFlag{
			Name:  "domain",
			Value: "youtube.com",
			Usage: "target domain suffix",
		},
		cli.BoolFlag{
			Name:  "include-expired",
			Usage: "keep cookies whose expiry has passed",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "print per-source details and warnings",
		},
	}
	app.Action = runExtract
	app.Commands = []cli.Command{
		{
			Name:      "check",
			Usage:     "validate an existing Netscape cookie file",
			ArgsUsage: "<file>",
			Action:    runCheck,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ytcookies: %s\n", err.Error())
		os.Exit(1)
	}
}

func runExtract(c *cli.Context) error {
	browsers, err := ytcookies.ParseBrowser(c.String("browser"))
	if err != nil {
		return err
	}

	report, err := ytcookies.Extract(context.Background(), ytcookies.SystemEnv(), ytcookies.Options{
		Browsers:       browsers,
		Domain:         c.String("domain"),
		Output:         c.String("output"),
		IncludeExpired: c.Bool("include-expired"),
	})
	if c.Bool("verbose") {
		for _, w := range report.Warnings {
			fmt.Fprintln(os.Stderr, w)
		}
		for _, s := range report.Sources {
			fmt.Fprintln(os.Stderr, s.String())
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("%d cookies extracted: %s\n", len(report.Cookies), report.Output)
	if report.Dropped > 0 {
		fmt.Printf("%d cookie values could not be decrypted and were skipped\n", report.Dropped)
	}
	return nil
}

func runCheck(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("usage: ytcookies check <file>", 1)
	}
	path := c.Args().First()
	cookies, err := ytcookies.ParseFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: valid cookie file, %d cookies\n", path, len(cookies))
	return nil
}
