package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/mview/internal/config"
	"github.com/danmuck/mview/internal/logging"
	"github.com/danmuck/mview/internal/observability"
	"github.com/danmuck/mview/internal/pipeline"
	"github.com/danmuck/mview/internal/schema"
)

var version = "0.4.0"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mview: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if cli.version {
		fmt.Fprintf(stdout, "mview %s\n", version)
		return nil
	}
	if cli.writeProfile != "" {
		if err := config.WriteProfileTemplate(cli.writeProfile, false); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote run profile template to %s\n", cli.writeProfile)
		return nil
	}

	logging.ConfigureRuntime()
	opts, err := resolveOptions(cli)
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	s, err := schema.Load(opts.Schema)
	if err != nil {
		return err
	}

	in, err := pipeline.OpenInput(opts.Input)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := pipeline.OpenOutput(opts.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	followInput := opts.Input == "" && pipeline.StdinInteractive()
	src, sink, err := pipeline.Build(opts, s, in, out, followInput)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// a second signal after the first falls back to the default handling
	context.AfterFunc(ctx, stop)
	disarm := pipeline.CloseOnCancel(ctx, in)
	defer disarm()

	var statusErr <-chan error
	if opts.StatusAddr != "" {
		status := observability.NewStatusServer(opts.StatusAddr, version, opts.CorsOrigins, func() any {
			return sink.Stats.Snapshot()
		})
		statusErr = watchStatus(ctx, status.Serve, func(err error) {
			logging.Errf("mview status endpoint addr=%s failed: %v", opts.StatusAddr, err)
		})
		logging.Infof("mview status endpoint addr=%s", opts.StatusAddr)
	}

	logging.Debugf("mview run schema=%s fields=%d declared_bits=%d window=%d", opts.Schema, len(s), s.DeclaredBits(), sink.Slicer.Size)
	runErr := pipeline.Run(ctx, src, sink)
	stop()
	if statusErr != nil {
		if err := <-statusErr; err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// watchStatus runs serve in the background and reports a failure as soon as
// it happens. The returned channel yields serve's result.
func watchStatus(ctx context.Context, serve func(context.Context) error, report func(error)) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := serve(ctx)
		if err != nil {
			report(err)
		}
		done <- err
	}()
	return done
}
