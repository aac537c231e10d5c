package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/azaliaz/bookhaven/internal/catalog"
	"github.com/azaliaz/bookhaven/internal/config"
	"github.com/azaliaz/bookhaven/internal/covers"
	"github.com/azaliaz/bookhaven/internal/logger"
	"github.com/azaliaz/bookhaven/internal/server"
	"github.com/azaliaz/bookhaven/internal/storage"
)

const prefetchWorkers = 8

type storageCloser interface {
	server.Storage
	Close() error
}

func openStorage(ctx context.Context, cfg *config.Config, log *zerolog.Logger) storageCloser {
	switch cfg.Storage {
	case config.StorageMemory:
		return storage.New()
	case config.StorageSQLite:
		stor, err := storage.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.SQLitePath).Msg("opening sqlite failed")
			return storage.New()
		}
		return stor
	}
	if err := storage.Migrations(cfg.DBDsn, cfg.MigratePath); err != nil {
		log.Error().Err(err).Msg("migrations failed")
		return storage.New()
	}
	stor, err := storage.NewDB(ctx, cfg.DBDsn)
	if err != nil {
		log.Error().Err(err).Msg("connecting to data base failed")
		return storage.New()
	}
	return stor
}

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}
	log := logger.Get(cfg.Debug)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		<-c

		log.Debug().Msg("ctx cancel; catch os signal")
		cancel()
	}()

	log.Debug().Str("addr", cfg.Addr).Str("storage", cfg.Storage).Bool("covers", cfg.CoverLookup).Send()

	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading catalog failed")
	}
	log.Info().Int("books", cat.Len()).Msg("catalog loaded")

	stor := openStorage(ctx, cfg, log)
	defer func() {
		if err := stor.Close(); err != nil {
			log.Error().Err(err).Msg("closing storage failed")
		}
	}()

	res, err := covers.New(covers.WithLookup(cfg.CoverLookup))
	if err != nil {
		log.Fatal().Err(err).Msg("loading cover table failed")
	}

	serv := server.New(*cfg, stor, cat, res)
	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serv.Run(gCtx)
	})
	group.Go(func() error {
		log.Debug().Msg("error chan listener started")
		defer log.Debug().Msg("error chan listener - end")
		select {
		case err := <-serv.ErrChan:
			return err
		case <-gCtx.Done():
			return nil
		}
	})
	if cfg.CoverLookup {
		group.Go(func() error {
			if err := res.Prefetch(gCtx, cat.All(), prefetchWorkers); err != nil {
				log.Debug().Err(err).Msg("cover prefetch stopped")
			}
			return nil
		})
	}

	if err = group.Wait(); err != nil {
		log.Info().Str("stoping reason", err.Error()).Msg("Server stoped")
		return
	}
	log.Info().Msg("server stoped")
}
