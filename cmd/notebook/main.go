package main

import (
	"context"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/stagefive/notebook/internal/config"
	"github.com/stagefive/notebook/internal/infra/cache"
	"github.com/stagefive/notebook/internal/infra/database"
	"github.com/stagefive/notebook/internal/infra/repository"
	"github.com/stagefive/notebook/internal/present/rest"
	restmw "github.com/stagefive/notebook/internal/present/rest/middleware"
	"github.com/stagefive/notebook/internal/service"
	"github.com/stagefive/notebook/internal/trace"
	"github.com/stagefive/notebook/internal/usecase"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	conf, err := config.Load(configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}

	err = database.MigratePostgres(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	noteRepo := repository.NewNoteRepository(db)
	listingCache := cache.NewListingCache(mc, conf.Notebook.ListingCacheTTL())

	signal := service.NewSignalService(rdb)
	identity := service.NewIdentityService(
		conf.Notebook.SessionSecret,
		conf.Notebook.FQDN,
		conf.Notebook.SessionTTL(),
	)

	noteUC := usecase.NewNoteUsecase(noteRepo, listingCache, signal)
	commentUC := usecase.NewCommentUsecase(noteRepo, listingCache, signal)

	renderer, err := rest.NewRenderer(conf.Server.TemplateDir)
	if err != nil {
		panic("failed to parse templates: " + err.Error())
	}

	e := echo.New()
	e.Renderer = renderer
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	if conf.Server.EnableTrace {
		shutdown, err := trace.SetupTraceProvider(
			context.Background(),
			conf.Server.TraceEndpoint,
			"notebook",
		)
		if err != nil {
			panic("failed to setup tracing: " + err.Error())
		}
		defer shutdown(context.Background())

		e.Use(otelecho.Middleware("notebook"))
	}

	auth := restmw.NewAuthMiddleware(identity)
	e.Use(auth.IdentifyIdentity)

	handler := rest.NewHandler(noteUC, commentUC, identity, signal)
	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}
