package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "ville-ideale-api/docs"
	"ville-ideale-api/internal/config"
	"ville-ideale-api/internal/handler"
	"ville-ideale-api/internal/logger"
	"ville-ideale-api/internal/repository"
	"ville-ideale-api/internal/scraper"
	"ville-ideale-api/internal/service"
	"ville-ideale-api/internal/telemetry"
	"ville-ideale-api/internal/tunnel"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title        Ville Idéale API
// @version      1.0.0
// @description  API for fetching town scores from ville-ideale.fr
// @BasePath     /
func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	if err := logger.Setup(config.LogLevel, config.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("cannot set up logger")
	}
	gin.SetMode(config.GinMode)

	shutdownTracing, err := telemetry.Setup(config.TraceExporter, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot set up tracing")
	}

	// Initialize layers
	client := scraper.NewClient(scraper.Options{
		BaseURL:        config.BaseURL,
		UserAgent:      config.UserAgent,
		RateLimit:      config.RateLimit,
		RequestTimeout: config.RequestTimeout,
	})
	cache := repository.NewTownCache(config.CacheMaxSize, config.CacheTTL)

	townService := service.NewTownService(client, cache)
	townHandler := handler.NewTownHandler(townService)

	r := gin.Default()
	r.Use(handler.RateLimit(config.InboundRPS, config.InboundBurst))
	handler.Register(r, townHandler)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{{Addr: config.ServerAddress, Handler: r}}

	if config.NgrokAuthToken == "" {
		log.Info().Msgf("NGROK_AUTH_TOKEN not set, ngrok will not be started. API will be available at http://%s", config.ServerAddress)
	} else if tun, err := tunnel.Listen(ctx, config.NgrokAuthToken, config.NgrokRegion); err != nil {
		log.Error().Err(err).Msg("error while trying to start ngrok tunnel")
	} else {
		log.Info().Str("url", tun.URL()).Msg("public URL")
		public := &http.Server{Handler: r}
		servers = append(servers, public)
		go func() {
			if err := public.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("tunnel server stopped")
			}
		}()
	}

	go func() {
		log.Info().Str("addr", config.ServerAddress).Msg("server started")
		if err := servers[0].ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown error")
	}
}
