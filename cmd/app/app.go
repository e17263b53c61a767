package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DRSN-tech/style-finder/internal/app"
	config "github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/usecase"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "style-finder",
		Usage: "Find a catalog look by photo and describe its items",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start HTTP and gRPC servers",
				Action: serveCommand,
			},
			{
				Name:   "analyze",
				Usage:  "Analyze a single image and print the markdown response",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "image",
						Aliases:  []string{"i"},
						Usage:    "Path or URL of the image",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "url",
						Usage: "Treat --image as a URL",
					},
					&cli.BoolFlag{
						Name:  "alternatives",
						Usage: "Also search for available alternatives",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Sync catalog embeddings into the Qdrant collection",
				Action: indexCommand,
			},
		},
	}
}

// bootstrap загружает конфигурацию и каталог. Логи пишутся в stderr, чтобы stdout оставался под результат.
func bootstrap(c *cli.Context) (*app.App, logger.Logger, error) {
	log := logger.NewSlogLoggerWithWriter(os.Stderr, c.String("log-level"))

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return nil, nil, err
	}

	application, err := app.NewApp(c.Context, cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return nil, nil, err
	}

	return application, log, nil
}

func serveCommand(c *cli.Context) error {
	application, log, err := bootstrap(c)
	if err != nil {
		return err
	}

	if err := application.Build(c.Context); err != nil {
		log.Errorf(err, "failed to build pipeline")
		closeApp(application, log)
		return err
	}

	return application.Run()
}

func analyzeCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, log, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer closeApp(application, log)

	if err := application.Build(ctx); err != nil {
		log.Errorf(err, "failed to build pipeline")
		return err
	}

	src := domain.ImageSource{Location: c.String("image"), IsURL: c.Bool("url")}
	res, err := application.Analyze(ctx, src, c.Bool("alternatives"))
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, res.Markdown)

	if res.Failure != usecase.FailureNone {
		return cli.Exit(fmt.Sprintf("analysis failed: %s", res.Failure), 2)
	}

	return nil
}

func indexCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, log, err := bootstrap(c)
	if err != nil {
		return err
	}
	defer closeApp(application, log)

	synced, err := application.Index(ctx)
	if err != nil {
		log.Errorf(err, "index sync failed after %d points", synced)
		return err
	}

	fmt.Fprintf(c.App.Writer, "synced %d points\n", synced)

	return nil
}

func closeApp(application *app.App, log logger.Logger) {
	if err := application.Close(context.Background()); err != nil {
		log.Warnf("%v", err)
	}
}
