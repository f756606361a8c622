package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaoprovincial/expediente/internal/atividade"
	"github.com/gestaoprovincial/expediente/internal/auth"
	"github.com/gestaoprovincial/expediente/internal/config"
	"github.com/gestaoprovincial/expediente/internal/documento"
	httpmiddleware "github.com/gestaoprovincial/expediente/internal/http/middleware"
	"github.com/gestaoprovincial/expediente/internal/midia"
	"github.com/gestaoprovincial/expediente/internal/painel"
	"github.com/gestaoprovincial/expediente/internal/storage"
)

// NewRouter devolve roteador configurado com todos os módulos do portal.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) (http.Handler, error) {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	var uploader storage.Uploader = storage.NoopUploader{}
	if cfg.Storage.Configured() {
		s3, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.Endpoint,
			Region:       cfg.Storage.Region,
			Bucket:       cfg.Storage.Bucket,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			PublicDomain: cfg.Storage.PublicDomain,
		})
		if err != nil {
			return nil, err
		}
		uploader = s3
	} else {
		log.Warn().Msg("storage não configurado; uploads desativados")
	}

	atividadeService := atividade.NewService(atividade.NewRepository(pool))
	documentoService := documento.NewService(documento.NewRepository(pool), atividadeService)
	midiaService := midia.NewService(midia.NewRepository(pool), uploader, atividadeService)
	painelService := painel.NewService(painel.NewRepository(pool), redisClient)

	publicLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst)
	authLimiter := httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "rota não encontrada", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "método não suportado", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(httpmiddleware.IPRateLimit(publicLimiter))
		r.Use(httpmiddleware.Auth(jwtManager))
		r.Use(httpmiddleware.UserRateLimit(authLimiter))
		r.Use(httpmiddleware.Escopo)

		documento.Mount(r, documento.NewHandler(documentoService))
		midia.NewHandler(midiaService).RegisterRoutes(r)
		painel.NewHandler(painelService).RegisterRoutes(r)
		atividade.NewHandler(atividadeService).RegisterRoutes(r)
	})

	return r, nil
}
