package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/ItsNotGoodName/x-tilewm/internal/api"
	"github.com/ItsNotGoodName/x-tilewm/internal/build"
	"github.com/ItsNotGoodName/x-tilewm/internal/bus"
	"github.com/ItsNotGoodName/x-tilewm/internal/config"
	"github.com/ItsNotGoodName/x-tilewm/internal/core"
	"github.com/ItsNotGoodName/x-tilewm/internal/xwm"
	"github.com/ItsNotGoodName/x-tilewm/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

type Options struct {
	Debug  bool   `doc:"enable debug"`
	Host   string `doc:"host to listen on, overrides the config file"`
	Port   int    `doc:"port to listen on, overrides the config file"`
	Socket string `doc:"event socket path, overrides the config file"`
	Config string `doc:"config file" default:".x-tilewm.yaml"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		if options.Debug {
			InitLogger(slog.LevelDebug)
		} else {
			InitLogger(slog.LevelInfo)
		}

		OnServe(hooks, func(ctx context.Context) error {
			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			driver, err := config.NewDriver(configFilePath)
			if err != nil {
				return err
			}

			store, err := config.NewStore(driver)
			if err != nil {
				return err
			}

			cfg, err := store.GetConfig()
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			host, port := cfg.API.Host, cfg.API.Port
			if options.Host != "" {
				host = options.Host
			}
			if options.Port != 0 {
				port = options.Port
			}

			broadcaster := bus.NewBroadcaster(bus.DefaultBufferSize)
			queue := api.NewQueue()
			watcher := config.NewWatcher(configFilePath, config.DefaultDebounce)
			wm := xwm.NewHost(&store, broadcaster, queue, watcher.Changed())

			super := sutureext.NewSimple("root")
			sutureext.Add(super, broadcaster)
			sutureext.Add(super, bus.NewSocketServer(broadcaster, socketPath(options.Socket, cfg)))
			sutureext.Add(super, watcher)
			sutureext.Add(super, api.NewServer(core.Address(host, port), queue))
			sutureext.Add(super, sutureext.TerminateOnExit(wm))

			return sutureext.IgnoreTerminate(super.Serve(ctx))
		})
	})

	cli.Root().Version = build.Current.String()

	cli.Root().AddCommand(&cobra.Command{
		Use:   "events",
		Short: "Print layout events as they happen",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			InitLogger(slog.LevelInfo)

			path := options.Socket
			if path == "" {
				path = bus.DefaultSocketPath()
				if cfg, err := readConfig(options.Config); err == nil {
					path = socketPath("", cfg)
				}
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			err := bus.Dial(ctx, path, func(ev bus.Event) {
				fmt.Fprint(os.Stdout, ev.Wire())
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
		}),
	})

	cli.Run()
}

func readConfig(filePath string) (config.Config, error) {
	filePath, err := filepath.Abs(filePath)
	if err != nil {
		return config.Config{}, err
	}

	driver, err := config.NewDriver(filePath)
	if err != nil {
		return config.Config{}, err
	}

	return driver.Read()
}

func socketPath(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Events.Socket != "" {
		return cfg.Events.Socket
	}
	return bus.DefaultSocketPath()
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
