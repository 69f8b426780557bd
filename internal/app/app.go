// Package app monta todos los contextos sobre la configuración; lo usan el servidor y el handler serverless.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/davicafu/igrejalab/internal/config"

	auditApp "github.com/davicafu/igrejalab/internal/auditoria/application"
	auditDomain "github.com/davicafu/igrejalab/internal/auditoria/domain"
	auditHttp "github.com/davicafu/igrejalab/internal/auditoria/infra/inbound/http"
	auditMongo "github.com/davicafu/igrejalab/internal/auditoria/infra/outbound/db/mongodb"
	auditSQL "github.com/davicafu/igrejalab/internal/auditoria/infra/outbound/db/postgres"
	auditFile "github.com/davicafu/igrejalab/internal/auditoria/infra/outbound/filesystem"
	celulaApp "github.com/davicafu/igrejalab/internal/celula/application"
	celulaDomain "github.com/davicafu/igrejalab/internal/celula/domain"
	celulaEvents "github.com/davicafu/igrejalab/internal/celula/infra/inbound/events"
	celulaHttp "github.com/davicafu/igrejalab/internal/celula/infra/inbound/http"
	celulaRepo "github.com/davicafu/igrejalab/internal/celula/infra/outbound/db/postgres"
	ensinoApp "github.com/davicafu/igrejalab/internal/ensino/application"
	ensinoDomain "github.com/davicafu/igrejalab/internal/ensino/domain"
	ensinoEvents "github.com/davicafu/igrejalab/internal/ensino/infra/inbound/events"
	ensinoHttp "github.com/davicafu/igrejalab/internal/ensino/infra/inbound/http"
	ensinoRepo "github.com/davicafu/igrejalab/internal/ensino/infra/outbound/db/postgres"
	eventoApp "github.com/davicafu/igrejalab/internal/evento/application"
	eventoDomain "github.com/davicafu/igrejalab/internal/evento/domain"
	eventoHttp "github.com/davicafu/igrejalab/internal/evento/infra/inbound/http"
	eventoRepo "github.com/davicafu/igrejalab/internal/evento/infra/outbound/db/postgres"
	finApp "github.com/davicafu/igrejalab/internal/financeiro/application"
	finDomain "github.com/davicafu/igrejalab/internal/financeiro/domain"
	finEvents "github.com/davicafu/igrejalab/internal/financeiro/infra/inbound/events"
	finHttp "github.com/davicafu/igrejalab/internal/financeiro/infra/inbound/http"
	finClickhouse "github.com/davicafu/igrejalab/internal/financeiro/infra/outbound/analytics/clickhouse"
	finRepo "github.com/davicafu/igrejalab/internal/financeiro/infra/outbound/db/postgres"
	notificacaoApp "github.com/davicafu/igrejalab/internal/notificacao/application"
	notificacaoRepo "github.com/davicafu/igrejalab/internal/notificacao/infra/outbound/db/postgres"
	pessoaApp "github.com/davicafu/igrejalab/internal/pessoa/application"
	pessoaDomain "github.com/davicafu/igrejalab/internal/pessoa/domain"
	pessoaHttp "github.com/davicafu/igrejalab/internal/pessoa/infra/inbound/http"
	pessoaRepo "github.com/davicafu/igrejalab/internal/pessoa/infra/outbound/db/postgres"
	sharedEvents "github.com/davicafu/igrejalab/internal/shared/domain/events"
	infraEvents "github.com/davicafu/igrejalab/internal/shared/infra/events"
	sharedHttp "github.com/davicafu/igrejalab/internal/shared/infra/inbound/http"
	infraCache "github.com/davicafu/igrejalab/internal/shared/infra/outbound/cache"
	sharedBus "github.com/davicafu/igrejalab/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/igrejalab/internal/shared/infra/platform/cache"
	"github.com/davicafu/igrejalab/internal/shared/infra/platform/db"
	"github.com/davicafu/igrejalab/internal/shared/infra/relayer"
)

// subscription es un consumidor de un topic.
type subscription struct {
	name    string
	topic   string
	handler infraEvents.MessageHandler
}

type App struct {
	cfg    *config.Config
	log    *zap.Logger
	conn   *sql.DB
	driver db.Driver
	router http.Handler

	subscriptions []subscription
	closers       []func() error
}

// New conecta la base de datos y los adaptadores opcionales (Redis, MongoDB, ClickHouse)
// y construye el router con las rutas de todos los módulos.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	// ---------------- DB ----------------
	conn, driver, err := db.Connect(ctx, cfg.DatabaseURL, cfg.ServiceRoleKey)
	if err != nil {
		return nil, err
	}
	a.conn, a.driver = conn, driver
	a.closers = append(a.closers, conn.Close)

	if cfg.AutoMigrate {
		if err := db.InitSchema(ctx, conn, driver); err != nil {
			a.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
		log.Info("Esquema inicializado", zap.String("driver", string(driver)))
	}

	// ---------------- Cache ----------------
	cache := a.newCache(ctx)

	// ---------------- Auditoría ----------------
	auditStore, err := a.newAuditStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	auditService := auditApp.NewAuditService(auditStore, log)

	// ---------------- Analítica ----------------
	var analytics finDomain.LancamentoAnalytics
	if cfg.ClickHouseAddr != "" {
		ch, err := finClickhouse.NewLancamentoAnalyticsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, tendencia deshabilitada", zap.Error(err))
		} else if err := ch.InitSchema(); err != nil {
			log.Warn("⚠️ No se pudo crear la tabla de ClickHouse", zap.Error(err))
			ch.Close()
		} else {
			analytics = ch
			a.closers = append(a.closers, ch.Close)
			log.Info("✅ ClickHouse conectado")
		}
	}

	// --------------- Servicios --------------
	notificacaoService := notificacaoApp.NewNotificacaoService(notificacaoRepo.NewNotificacaoRepo(conn, driver), log)
	pessoaService := pessoaApp.NewPessoaService(pessoaRepo.NewPessoaRepo(conn, driver), cache, log)
	celulaService := celulaApp.NewCelulaService(celulaRepo.NewCelulaRepo(conn, driver), notificacaoService, cache, log)
	ensinoService := ensinoApp.NewEnsinoService(ensinoRepo.NewEnsinoRepo(conn, driver), cache, log)
	eventoService := eventoApp.NewEventoService(eventoRepo.NewEventoRepo(conn, driver), cache, log)
	finService := finApp.NewFinanceiroService(finRepo.NewLancamentoRepo(conn, driver), analytics, auditService, log)

	// ---------------- Consumidores ----------------
	a.subscriptions = []subscription{
		{name: "celula", topic: pessoaDomain.PessoaTopic, handler: celulaEvents.NewPessoaConsumer(celulaService, log)},
		{name: "ensino", topic: ensinoDomain.EnsinoTopic, handler: ensinoEvents.NewEnsinoConsumer(ensinoService, log)},
	}
	if analytics != nil {
		a.subscriptions = append(a.subscriptions,
			subscription{name: "financeiro", topic: finDomain.FinanceiroTopic, handler: finEvents.NewLancamentoConsumer(finService, log)})
	}

	// ---------------- HTTP ----------------
	var routes []sharedHttp.Route
	routes = append(routes, celulaHttp.NewCelulaHandler(celulaService, cfg.PaginationMaxLimit).Routes()...)
	routes = append(routes, ensinoHttp.NewEnsinoHandler(ensinoService, cfg.PaginationMaxLimit).Routes()...)
	routes = append(routes, finHttp.NewFinanceiroHandler(finService, cfg.PaginationMaxLimit).Routes()...)
	routes = append(routes, eventoHttp.NewEventoHandler(eventoService, cfg.PaginationMaxLimit).Routes()...)
	routes = append(routes, pessoaHttp.NewPessoaHandler(pessoaService, cfg.PaginationMaxLimit).Routes()...)
	routes = append(routes, auditHttp.NewAuditHandler(auditService).Routes()...)
	a.router = sharedHttp.NewRouter(routes, log)

	return a, nil
}

func (a *App) Handler() http.Handler {
	return a.router
}

// ServerlessHandler sirve el router y, tras cada petición de escritura, publica el outbox
// pendiente por un bus síncrono antes de volver. Sin StartBackground no hay relayer vivo,
// así que los consumidores corren aquí.
func (a *App) ServerlessHandler() http.Handler {
	bus := infraEvents.NewSyncEventBus()
	for _, s := range a.subscriptions {
		bus.Handle(s.topic, s.handler)
	}
	worker := relayer.NewOutboxWorker(db.NewOutboxRepo(a.conn, a.driver), bus, EventRegistry(), a.cfg.OutboxPeriod, a.cfg.OutboxLimit, a.log)

	var mu sync.Mutex
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.router.ServeHTTP(w, r)
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			return
		}
		// un lote a la vez, para no publicar dos veces el mismo evento
		mu.Lock()
		defer mu.Unlock()
		worker.ProcessBatch(context.WithoutCancel(r.Context()))
	})
}

// EventRegistry une los eventos de todos los contextos para el relayer.
func EventRegistry() map[string]sharedEvents.EventMetadata {
	return sharedEvents.MergeRegistries(
		pessoaDomain.NewEventRegistry(),
		celulaDomain.NewEventRegistry(),
		ensinoDomain.NewEventRegistry(),
		finDomain.NewEventRegistry(),
		eventoDomain.NewEventRegistry(),
	)
}

// StartBackground arranca consumidores y relayer de outbox hasta que se cancele ctx.
func (a *App) StartBackground(ctx context.Context) {
	var publisher sharedBus.EventBus

	if a.cfg.UseKafka {
		a.log.Info("🚀 Usando Kafka como bus de eventos", zap.Strings("brokers", a.cfg.KafkaBrokers))

		writer := infraEvents.NewKafkaWriter(a.cfg.KafkaBrokers)
		a.closers = append(a.closers, writer.Close)
		publisher = infraEvents.NewKafkaPublisher(writer, a.log)

		for _, s := range a.subscriptions {
			reader := infraEvents.NewKafkaReader(a.cfg.KafkaBrokers, s.topic, a.cfg.KafkaGroupID+"-"+s.name)
			a.closers = append(a.closers, reader.Close)
			infraEvents.NewConsumerAdapter(reader, s.handler, a.log).Start(ctx)
		}
	} else {
		a.log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		bus := infraEvents.NewInMemoryEventBus()
		publisher = bus
		for _, s := range a.subscriptions {
			infraEvents.BackgroundConsumerChan(ctx, bus.Subscribe(s.topic, 100), s.handler, a.log)
		}
	}

	worker := relayer.NewOutboxWorker(db.NewOutboxRepo(a.conn, a.driver), publisher, EventRegistry(), a.cfg.OutboxPeriod, a.cfg.OutboxLimit, a.log)
	go worker.Start(ctx)
}

// Close libera conexiones en orden inverso a su apertura.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Error al cerrar recurso", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *App) newCache(ctx context.Context) sharedCache.Cache {
	if a.cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			a.closers = append(a.closers, rdb.Close)
			a.log.Info("✅ Redis conectado, cache habilitado")
			return infraCache.NewRedisCache(rdb, a.cfg.CacheTTL)
		}
		a.log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		rdb.Close()
	}

	mem := infraCache.NewInMemoryCache(a.cfg.CacheTTL, 3*a.cfg.CacheTTL)
	a.closers = append(a.closers, func() error {
		mem.Stop()
		return nil
	})
	return mem
}

func (a *App) newAuditStore(ctx context.Context) (auditDomain.AuditStore, error) {
	switch a.cfg.AuditStore {
	case config.AuditStoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })

		store, err := auditMongo.NewAuditRepoMongoDB(ctx, client, a.cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			a.log.Warn("⚠️ No se pudieron crear los índices de auditoría", zap.Error(err))
		}
		return store, nil
	case config.AuditStoreFile:
		return auditFile.NewJSONAuditStorage(a.cfg.AuditFilePath), nil
	default:
		return auditSQL.NewAuditRepo(a.conn, a.driver), nil
	}
}
