package router

import (
	"time"

	"partediario/internal/config"
	"partediario/internal/handler"
	"partediario/internal/infra"
	"partediario/internal/middleware"
	"partediario/internal/repository"
	"partediario/internal/service"
	"partediario/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	establecimientoRepo := repository.NewEstablecimientoRepository(db)
	usuarioRepo := repository.NewUsuarioRepository(db)
	loteRepo := repository.NewLoteRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	insumoRepo := repository.NewInsumoRepository(db)
	stockRepo := repository.NewStockRepository(db)
	actividadRepo := repository.NewActividadRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	stockSvc := service.NewStockService(stockRepo, movimientoRepo)
	validador := service.NewValidador(loteRepo, categoriaRepo, insumoRepo)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	actividadSvc := service.NewActividadService(actividadRepo, stockRepo, movimientoRepo, insumoRepo, validador, dispatcher)
	reversionSvc := service.NewReversionService(actividadRepo, stockRepo, movimientoRepo, insumoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	actividadesH := handler.NewActividadesHandler(actividadSvc, reversionSvc)
	stockH := handler.NewStockHandler(stockSvc)
	referenciasH := handler.NewReferenciasHandler(establecimientoRepo, loteRepo, categoriaRepo, insumoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operario, encargado, administrador — declared per-endpoint
		todos := middleware.RequireRole("operario", "encargado", "administrador")
		gestion := middleware.RequireRole("encargado", "administrador")
		admin := middleware.RequireRole("administrador")

		v1.POST("/actividades", todos, actividadesH.Crear)
		v1.GET("/actividades", todos, actividadesH.Listar)
		v1.GET("/actividades/:id", todos, actividadesH.Obtener)
		v1.PUT("/actividades/:id", gestion, actividadesH.Actualizar)
		v1.PATCH("/actividades/:id/baja", gestion, actividadesH.DarDeBaja)
		v1.GET("/actividades/:id/reversibilidad", todos, actividadesH.Reversibilidad)
		v1.POST("/actividades/:id/revertir", gestion, actividadesH.Revertir)

		v1.GET("/stock", todos, stockH.Listar)
		v1.GET("/stock/peso-promedio", todos, stockH.PesoPromedio)
		v1.GET("/stock/movimientos", gestion, stockH.Movimientos)

		v1.GET("/establecimientos", todos, referenciasH.ListarEstablecimientos)
		v1.POST("/establecimientos", admin, referenciasH.CrearEstablecimiento)

		v1.GET("/lotes", todos, referenciasH.ListarLotes)
		v1.POST("/lotes", gestion, referenciasH.CrearLote)
		v1.DELETE("/lotes/:id", admin, referenciasH.EliminarLote)

		v1.GET("/categorias", todos, referenciasH.ListarCategorias)
		v1.POST("/categorias", admin, referenciasH.CrearCategoria)

		v1.GET("/insumos", todos, referenciasH.ListarInsumos)
		v1.POST("/insumos", gestion, referenciasH.CrearInsumo)

		v1.GET("/tipos-movimiento", todos, referenciasH.ListarTiposMovimiento)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
