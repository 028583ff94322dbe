// Command ossim runs simulator scripts.
//
//	ossim -config ossim.yaml -script demo.ossim
//	echo "create 3\nrun SJF\nshow stats" | ossim
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	ossim "github.com/farxan99/OsSimulator"
	"github.com/farxan99/OsSimulator/progress"
	"github.com/farxan99/OsSimulator/service/dispatcher"
	"github.com/farxan99/OsSimulator/shell"
)

func main() {
	if err := run(); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "ossim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configURL := flag.String("config", "ossim.yaml", "configuration URL; defaults apply when absent")
	scriptURL := flag.String("script", "", "script URL; standard input when empty")
	background := flag.Bool("background", false, "run the background dispatcher while the script executes")
	trace := flag.Bool("trace", false, "print kernel and cache events as JSON lines")
	traceFile := flag.String("otel", "", "write OpenTelemetry spans to this file")
	noColor := flag.Bool("no-color", false, "disable colours")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := ossim.LoadConfig(ctx, *configURL)
	if err != nil {
		return err
	}
	options := []ossim.Option{ossim.WithConfig(cfg), ossim.WithLogWriter(os.Stderr)}
	if *traceFile != "" {
		options = append(options, ossim.WithTracing("ossim", "1.0.0", *traceFile))
	}
	srv, err := ossim.New(options...)
	if err != nil {
		return err
	}
	defer srv.Close()

	runtime := srv.Runtime()
	if *background {
		logger := srv.Logger()
		onProgress := dispatcher.WithProgressListener(func(p progress.Progress) {
			logger.Debug("background dispatch", "admitted", p.AdmittedTasks, "dispatched", p.DispatchedTasks)
		})
		if err = runtime.Start(ctx, onProgress); err != nil {
			return err
		}
		defer func() { _ = runtime.Shutdown(context.Background()) }()
	}

	sh := shell.New(srv, os.Stdout,
		shell.WithColors(!*noColor),
		shell.WithProgress(!*noColor),
		shell.WithTrace(*trace))
	if *scriptURL != "" {
		return sh.RunURL(ctx, *scriptURL)
	}
	return interactive(ctx, sh, os.Stdin)
}

// interactive executes standard input line by line, reporting errors without
// stopping.
func interactive(ctx context.Context, sh *shell.Shell, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++
		command, err := shell.ParseLine(scanner.Bytes(), lineNo)
		if err == nil && command != nil {
			err = sh.Execute(ctx, command)
		}
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}
