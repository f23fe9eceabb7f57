package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/academia-dev/academia-api/api/swagger"
	"github.com/academia-dev/academia-api/internal/handler"
	"github.com/academia-dev/academia-api/internal/middleware"
	"github.com/academia-dev/academia-api/internal/repository"
	"github.com/academia-dev/academia-api/internal/service"
	"github.com/academia-dev/academia-api/pkg/cache"
	"github.com/academia-dev/academia-api/pkg/config"
	"github.com/academia-dev/academia-api/pkg/database"
	"github.com/academia-dev/academia-api/pkg/export"
	"github.com/academia-dev/academia-api/pkg/logger"
	corsmiddleware "github.com/academia-dev/academia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/academia-dev/academia-api/pkg/middleware/requestid"
)

// @title Academia API
// @version 1.0.0
// @description Academic progression engine: curricula, enrollments, grades and final exams
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var dashboardCache *cache.Store
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		dashboardCache = cache.NewStore(redisClient)
	}

	userRepo := repository.NewUserRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	careerRepo := repository.NewCareerRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	finalExamRepo := repository.NewFinalExamRepository(db)
	inscriptionRepo := repository.NewSubjectInscriptionRepository(db)
	finalInscriptionRepo := repository.NewFinalExamInscriptionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, studentRepo, professorRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	facultySvc := service.NewFacultyService(facultyRepo, careerRepo, nil, logr)
	careerSvc := service.NewCareerService(careerRepo, facultyRepo, studentRepo, subjectRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, careerRepo, inscriptionRepo, nil, logr)
	finalExamSvc := service.NewFinalExamService(finalExamRepo, subjectRepo, finalInscriptionRepo, nil, logr)
	assignmentSvc := service.NewAssignmentService(subjectRepo, finalExamRepo, professorRepo, nil, logr)
	enrollmentSvc := service.NewEnrollmentService(studentRepo, subjectRepo, finalExamRepo, inscriptionRepo, finalInscriptionRepo, gradeRepo, nil, logr)
	gradeSvc := service.NewGradeService(gradeRepo, inscriptionRepo, subjectRepo, nil, logr)
	professorSvc := service.NewProfessorService(professorRepo, subjectRepo, finalExamRepo, finalInscriptionRepo, nil, logr)

	var studentSvc *service.StudentService
	if dashboardCache != nil {
		studentSvc = service.NewStudentService(studentRepo, careerRepo, inscriptionRepo, finalInscriptionRepo, gradeRepo, enrollmentSvc, dashboardCache, cfg.Dashboard.CacheTTL, nil, logr)
	} else {
		studentSvc = service.NewStudentService(studentRepo, careerRepo, inscriptionRepo, finalInscriptionRepo, gradeRepo, enrollmentSvc, nil, 0, nil, logr)
	}
	studentSvc.SetMetrics(metricsSvc)
	certificateSvc := service.NewCertificateService(studentSvc, gradeRepo, export.NewPDFExporter(), export.NewCSVExporter(), cfg.Certificates, logr)

	h := handlers{
		auth:        handler.NewAuthHandler(authSvc),
		faculties:   handler.NewFacultyHandler(facultySvc),
		careers:     handler.NewCareerHandler(careerSvc),
		subjects:    handler.NewSubjectHandler(subjectSvc, assignmentSvc, finalExamSvc, certificateSvc),
		finals:      handler.NewFinalExamHandler(finalExamSvc, assignmentSvc),
		students:    handler.NewStudentHandler(studentSvc, certificateSvc),
		professors:  handler.NewProfessorHandler(professorSvc),
		grades:      handler.NewGradeHandler(gradeSvc, professorSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc, studentSvc, metricsSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg.APIPrefix, authSvc, h)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
