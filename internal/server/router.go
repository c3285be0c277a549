package server

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/opsdeck/backoffice/internal/apibind"
	"github.com/opsdeck/backoffice/internal/api/handler"
	"github.com/opsdeck/backoffice/internal/audit"
	"github.com/opsdeck/backoffice/internal/auth"
	"github.com/opsdeck/backoffice/internal/events"
	"github.com/opsdeck/backoffice/internal/logger"
	"github.com/opsdeck/backoffice/internal/pagedef"
	"github.com/opsdeck/backoffice/internal/rbac"
	"github.com/opsdeck/backoffice/internal/render"
	"github.com/opsdeck/backoffice/internal/render/controlpolicy"
	"github.com/opsdeck/backoffice/internal/server/middleware"
	"github.com/opsdeck/backoffice/internal/server/roles"
	"github.com/opsdeck/backoffice/internal/session"
	"github.com/opsdeck/backoffice/pkg/metrics"
)

// New assembles the API: middleware chain, RBAC, editor and runtime
// handlers. The returned huma API exposes Adapter() for the HTTP server.
func New(db *sql.DB, rdb *redis.Client, cfg DBConfig) huma.API {
	r := chi.NewRouter()

	allowed := os.Getenv("ALLOWED_ORIGINS")
	if allowed == "" {
		allowed = "http://localhost:5173"
	}
	origins := strings.Split(allowed, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	var dialect ormdriver.Dialect
	if cfg.Driver == "postgres" {
		dialect = ormdriver.PostgresDialect{}
	} else {
		dialect = ormdriver.MySQLDialect{}
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.L.Error("JWT_SECRET environment variable is not set. Application cannot start.")
		os.Exit(1)
	}

	m := model.NewModel()
	m.AddDef("r", "r", "sub, obj, act")
	m.AddDef("p", "p", "sub, obj, act")
	m.AddDef("g", "g", "_, _")
	m.AddDef("e", "e", "some(where (p.eft == allow))")
	m.AddDef("m", "m", "g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act")
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		logger.L.Error("casbin enforcer", "err", err)
	} else {
		for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
			e.AddPolicy("admin", "/v1/*", method)
			e.AddPolicy("admin", "/admin/*", method)
		}
		// Operators can use every page but not mutate definitions.
		e.AddPolicy("operator", "/v1/pages", "GET")
		e.AddPolicy("operator", "/v1/pages/*", "GET")
		e.AddPolicy("operator", "/v1/pages/*/submit", "POST")
		e.AddPolicy("operator", "/v1/pages/*/buttons/*", "POST")
		e.AddPolicy("operator", "/v1/auth/*", "GET")
		e.AddPolicy("operator", "/v1/auth/sign-out", "POST")
		e.AddPolicy("operator", "/v1/profile/*", "GET")
		e.AddPolicy("operator", "/v1/profile/*", "PUT")
		if db != nil {
			if err := rbac.Load(context.Background(), db, cfg.TablePrefix, e); err != nil {
				logger.L.Error("load rbac", "err", err)
			}
		}
	}

	api := humachi.New(r, huma.DefaultConfig("Backoffice API", "1.0.0"))
	jwtHandler := auth.NewJWT(secret, 15*time.Minute)
	sessions := session.New(rdb, "")

	authHandler := &auth.Handler{
		Repo:     &auth.UserRepo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix},
		JWT:      jwtHandler,
		Sessions: sessions,
	}
	// Login, refresh and two-factor verification are registered before the
	// auth middleware so they stay publicly accessible.
	auth.Register(api, authHandler)
	auth.RegisterTwoFactorVerify(api, authHandler)

	api.UseMiddleware(auth.Middleware(api, jwtHandler))

	auth.RegisterSignOut(api, authHandler)
	auth.RegisterTwoFactorSetup(api, authHandler)

	resolver := func(ctx context.Context, user string) ([]string, error) {
		return roles.OfUser(ctx, db, cfg.Driver, cfg.TablePrefix, user)
	}

	// The capability endpoint is authenticated but not RBAC-guarded, so any
	// signed-in user can ask what they may do.
	handler.RegisterAuthCaps(api, &handler.AuthHandler{Enf: e, Roles: resolver})

	if err == nil {
		api.UseMiddleware(middleware.RBAC(e, resolver))
	}
	api.UseMiddleware(middleware.MetricsMW)

	rec := &audit.Recorder{DB: db, Driver: cfg.Driver, TablePrefix: cfg.TablePrefix}

	evtConf, err := events.LoadConfig(os.Getenv("BO_EVENTS_CONFIG"))
	if err != nil {
		logger.L.Error("Failed to load events configuration", "err", err)
		os.Exit(1)
	}
	var sinks []events.Sink
	if wh := events.NewWebhookSink(evtConf.Sinks.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	if rs, err := events.NewRedisSink(evtConf.Sinks.Redis); err == nil && rs != nil {
		sinks = append(sinks, rs)
	} else if err != nil {
		logger.L.Error("redis sink", "err", err)
	}
	if ks, err := events.NewKafkaSink(evtConf.Sinks.Kafka); err == nil && ks != nil {
		sinks = append(sinks, ks)
	} else if err != nil {
		logger.L.Error("kafka sink", "err", err)
	}
	events.Default = events.NewDispatcher(evtConf, &events.SQLDLQ{DB: db, Driver: cfg.Driver, TablePrefix: cfg.TablePrefix}, sinks...)

	repo := &pagedef.Repo{DB: db, Dialect: dialect, TablePrefix: cfg.TablePrefix}
	handler.RegisterPages(api, &handler.PageHandler{Repo: repo, Recorder: rec})

	templates := render.NewTemplateRegistry()
	for _, name := range strings.Split(os.Getenv("LAYOUT_TEMPLATES"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			templates.Register(name)
		}
	}

	var policy *controlpolicy.Store
	if path := os.Getenv("CONTROL_POLICY"); path != "" {
		policy, err = controlpolicy.NewStore(path, logger.L)
		if err != nil {
			logger.L.Error("load control policy", "path", path, "err", err)
		} else if err := policy.Start(context.Background()); err != nil {
			logger.L.Error("watch control policy", "err", err)
		}
	}

	upstream := os.Getenv("UPSTREAM_URL")
	client := apibind.New(upstream,
		apibind.WithTokenSource(apibind.StaticToken(os.Getenv("UPSTREAM_TOKEN"))),
		apibind.WithTimeout(10*time.Second),
	)

	handler.RegisterRuntime(api, &handler.RuntimeHandler{
		Repo:     repo,
		Resolver: &render.Resolver{Pages: repo, Templates: templates},
		Client:   client,
		Policy:   policy,
		Guard:    &apibind.Guard{},
		Roles:    resolver,
	})
	handler.RegisterProfile(api, &handler.ProfileHandler{Sessions: sessions})

	if db != nil {
		metrics.StartPageGauge(context.Background(), repo)
	}
	return api
}
