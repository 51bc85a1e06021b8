package router

import (
	"time"

	"agrotrace/internal/config"
	"agrotrace/internal/handler"
	"agrotrace/internal/infra"
	"agrotrace/internal/middleware"
	"agrotrace/internal/repository"
	"agrotrace/internal/service"
	"agrotrace/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, registryCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	ggnClient := infra.NewGGNClient(cfg.GGNRegistryURL)

	// ── Repositories ─────────────────────────────────────────────────────────
	producerRepo := repository.NewProducerRepository(db)
	receptionRepo := repository.NewReceptionRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	consolidationRepo := repository.NewConsolidationRepository(db)
	expeditionRepo := repository.NewExpeditionRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	locationRepo := repository.NewLocationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ledgerSvc := service.NewLedgerService(receptionRepo, reservationRepo)
	certificationSvc := service.NewCertificationService(ggnClient, registryCB)
	producerSvc := service.NewProducerService(producerRepo)
	receptionSvc := service.NewReceptionService(receptionRepo, producerRepo)
	consolidationSvc := service.NewConsolidationService(consolidationRepo, receptionRepo, ledgerSvc, certificationSvc)
	expeditionSvc := service.NewExpeditionService(expeditionRepo, receptionRepo, positionRepo, ledgerSvc, certificationSvc)
	storageSvc := service.NewStorageService(movementRepo, positionRepo, locationRepo, receptionRepo)
	traceSvc := service.NewTraceabilityService(receptionRepo, consolidationRepo, expeditionRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	producersH := handler.NewProducersHandler(producerSvc, certificationSvc)
	receptionsH := handler.NewReceptionsHandler(receptionSvc, ledgerSvc, rdb)
	consolidationsH := handler.NewConsolidationsHandler(consolidationSvc)
	expeditionsH := handler.NewExpeditionsHandler(expeditionSvc)
	storageH := handler.NewStorageHandler(storageSvc)
	traceH := handler.NewTraceabilityHandler(traceSvc, dispatcher)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, registryCB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	writeMW := middleware.WriteRateLimiter()

	v1 := r.Group("/v1")
	{
		producers := v1.Group("/producers")
		{
			producers.POST("", producersH.Create)
			producers.GET("", producersH.List)
			producers.GET("/:id", producersH.GetByID)
			producers.PATCH("/:id/certificate", producersH.RenewCertificate)
			producers.GET("/ggn/:ggn", producersH.VerifyGGN)
		}

		receptions := v1.Group("/receptions")
		{
			receptions.POST("", receptionsH.Create)
			receptions.GET("", receptionsH.List)
			receptions.GET("/:id", receptionsH.GetByID)
			receptions.GET("/:id/availability", receptionsH.Availability)
			receptions.GET("/:id/reservations", receptionsH.Reservations)
			receptions.POST("/:id/approve", receptionsH.Approve)
			receptions.POST("/:id/reject", receptionsH.Reject)
		}

		consolidations := v1.Group("/consolidations")
		{
			consolidations.POST("", writeMW, consolidationsH.Create)
			consolidations.GET("", consolidationsH.List)
			consolidations.GET("/:id", consolidationsH.GetByID)
			consolidations.DELETE("/:id", writeMW, consolidationsH.Delete)
		}

		expeditions := v1.Group("/expeditions")
		{
			expeditions.POST("", writeMW, expeditionsH.Create)
			expeditions.GET("", expeditionsH.List)
			expeditions.GET("/:id", expeditionsH.GetByID)
			expeditions.DELETE("/:id", writeMW, expeditionsH.Delete)
		}

		v1.POST("/movements", storageH.RecordMovement)
		v1.GET("/movements", storageH.ListMovements)
		v1.GET("/positions", storageH.ListPositions)
		v1.GET("/positions/:id", storageH.GetPosition)
		v1.POST("/locations", storageH.CreateLocation)
		v1.GET("/locations", storageH.ListLocations)

		trace := v1.Group("/traceability")
		{
			trace.GET("/forward/:id", traceH.Forward)
			trace.GET("/backward/:kind/:id", traceH.Backward)
			trace.GET("/label/:kind/:id", traceH.LabelPayload)
			trace.POST("/report/:kind/:id", traceH.ExportReport)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
