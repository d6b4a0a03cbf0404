package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mdchat/serverconf"
)

func validateCmd(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", serverconf.DefaultPath, "path to config file")
	format := fs.String("format", "json", "output format: json|text")
	watch := fs.Bool("watch", false, "stay running and re-validate on file changes")
	logLevel := fs.String("log-level", "info", "log level in watch mode: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *format != "json" && *format != "text" {
		fmt.Fprintf(os.Stderr, "invalid -format %q (use: json|text)\n", *format)
		return 2
	}

	if *watch {
		return validateWatch(*configPath, *logLevel)
	}

	return emitValidation(*format, checkFile(*configPath))
}

// checkFile runs the full read/parse/compile pipeline and folds every
// failure mode into a ValidationResult, so validate output has one shape
// whether the file is unreadable, unparsable, or merely invalid.
func checkFile(path string) serverconf.ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return resultFromError(serverconf.KindIO, err)
	}
	f, err := serverconf.Parse(data)
	if err != nil {
		return resultFromError(serverconf.KindSyntax, err)
	}
	return serverconf.ValidateWithResult(f)
}

func resultFromError(fallback serverconf.ErrorKind, err error) serverconf.ValidationResult {
	var diags serverconf.Diagnostics
	if errors.As(err, &diags) {
		return serverconf.ValidationResult{Errors: diags}
	}
	return serverconf.ValidationResult{Errors: []serverconf.Diagnostic{{Kind: fallback, Message: err.Error()}}}
}

func emitValidation(format string, res serverconf.ValidationResult) int {
	if format == "text" {
		msg := serverconf.FormatValidationText(res)
		if res.OK {
			fmt.Fprintln(os.Stdout, msg)
			return 0
		}
		fmt.Fprintln(os.Stderr, msg)
		return 1
	}

	out, err := serverconf.FormatValidationJSON(res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	if res.OK {
		fmt.Fprintln(os.Stdout, out)
		return 0
	}
	fmt.Fprintln(os.Stderr, out)
	return 1
}

// validateWatch re-validates the file on every change until interrupted.
// Findings go to the structured log rather than stdout, since the command
// is expected to run unattended. The exit status is always 0; the point of
// watch mode is the log stream, not a final verdict.
func validateWatch(path, logLevel string) int {
	logger, err := newLogger(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	check := func(trigger string) {
		res := checkFile(path)
		if res.OK {
			logger.Info("config_ok",
				slog.String("path", path),
				slog.String("trigger", trigger),
				slog.Int("warnings", len(res.Warnings)),
			)
			for _, w := range res.Warnings {
				logger.Warn("config_warning", slog.String("path", path), slog.String("detail", w))
			}
			return
		}
		logger.Error("config_invalid",
			slog.String("path", path),
			slog.String("trigger", trigger),
			slog.Int("errors", len(res.Errors)),
			slog.Any("diagnostics", res.Errors),
		)
	}

	check("startup")
	watchConfig(ctx, path, logger, func() { check("change") })
	return 0
}
