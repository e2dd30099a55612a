package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"registrar/internal/enrollment/service"
	"registrar/internal/enrollment/store"
	"registrar/internal/enrollment/store/migrations"
	"registrar/internal/offering"
	"registrar/internal/platform/config"
	"registrar/internal/platform/kafka"
	"registrar/internal/platform/postgres"
	"registrar/internal/platform/redis"
	"registrar/internal/student"
	"registrar/pkg/platform/outbox"
	kafkapub "registrar/pkg/platform/outbox/publishers/kafka"
	"registrar/pkg/platform/outbox/publishers/logging"
	"registrar/pkg/platform/outbox/relay"
	outboxmemory "registrar/pkg/platform/outbox/store/memory"
	outboxpostgres "registrar/pkg/platform/outbox/store/postgres"
	"registrar/pkg/platform/pgmigrate"
)

// infra holds the storage, collaborators and relay chosen by configuration.
type infra struct {
	kind      string
	reader    service.EnrollmentReader
	tx        service.EnrollmentStoreTx
	students  service.StudentDirectory
	offerings service.OfferingDirectory
	relay     *relay.Relay

	closers []func()
}

func (i *infra) Close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *infra, err error) {
	in := &infra{}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	var (
		source  outbox.Source
		catalog interface {
			service.OfferingDirectory
			offeringWriter
		}
	)
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { _ = db.Close() })
		if cfg.Database.Migrate {
			if err := pgmigrate.Apply(ctx, db, migrations.FS, "."); err != nil {
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		in.kind = "postgres"
		source = wirePostgres(in, db)
		catalog = offering.NewPostgres(db)
	} else {
		in.kind = "memory"
		source = wireMemory(in)
		catalog = offering.NewInMemory()
	}
	in.offerings = catalog

	local := student.NewInMemory()
	if cfg.SeedDemo {
		if err := seedDemo(ctx, catalog, local); err != nil {
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
		log.Info("demo catalog loaded")
	}
	students, err := buildStudents(ctx, cfg, log, local, in)
	if err != nil {
		return nil, err
	}
	in.students = students

	publisher, err := buildPublisher(ctx, cfg.Kafka, log, in)
	if err != nil {
		return nil, err
	}
	in.relay = relay.New(source, publisher,
		relay.WithInterval(cfg.Kafka.RelayInterval),
		relay.WithBatchSize(cfg.Kafka.RelayBatchSize),
		relay.WithLogger(log),
		relay.WithMetrics(relay.NewMetrics()),
	)
	return in, nil
}

func wirePostgres(in *infra, db *sql.DB) outbox.Source {
	events := outboxpostgres.New(db)
	enrollments := store.NewPostgres(db)
	in.reader = enrollments
	in.tx = store.NewPostgresTx(db, enrollments, events)
	return events
}

func wireMemory(in *infra) outbox.Source {
	events := outboxmemory.NewInMemoryStore()
	enrollments := store.NewInMemory()
	in.reader = enrollments
	in.tx = store.NewShardedTx(enrollments, events)
	return events
}

// buildStudents prefers the remote registry, fronted by the Redis name cache
// when one is configured, and falls back to the in-process directory.
func buildStudents(ctx context.Context, cfg config.Server, log *slog.Logger, local *student.InMemory, in *infra) (service.StudentDirectory, error) {
	if cfg.Students.BaseURL == "" {
		return local, nil
	}
	var dir student.Directory = student.NewHTTPClient(cfg.Students.BaseURL, student.WithLogger(log))

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		in.closers = append(in.closers, func() { _ = rc.Close() })
		dir = student.NewCachedDirectory(dir, rc.Client, cfg.Redis.NameTTL, log)
	}
	return dir, nil
}

func buildPublisher(ctx context.Context, cfg config.Kafka, log *slog.Logger, in *infra) (outbox.Publisher, error) {
	client, err := kafka.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("no kafka brokers configured, outbox events go to the log")
		return logging.NewPublisher(log, slog.LevelDebug), nil
	}
	in.closers = append(in.closers, client.Close)
	if err := kafkapub.EnsureTopic(ctx, client, cfg.Topic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		return nil, err
	}
	return kafkapub.NewPublisher(client, cfg.Topic), nil
}
