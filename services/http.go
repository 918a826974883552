package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	docs "github.com/excel-master-lab/excel_quest_api/docs"
	"github.com/excel-master-lab/excel_quest_api/services/handlers"
	"github.com/excel-master-lab/excel_quest_api/shared"
)

type HttpService struct {
	context.DefaultService

	catalogSvc    *CatalogService
	completionSvc *CompletionService
	recordSvc     *RecordService
	chatSvc       *ChatService
	mediaSvc      *MediaService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.catalogSvc = svc.Service(CATALOG_SVC).(*CatalogService)
	svc.completionSvc = svc.Service(COMPLETION_SVC).(*CompletionService)
	svc.recordSvc = svc.Service(RECORD_SVC).(*RecordService)
	svc.chatSvc = svc.Service(CHAT_SVC).(*ChatService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	docs.SwaggerInfo.BasePath = ""

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})
	app.Use(recover.New())

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	lessonHandler := handlers.NewLessonHandler(svc.catalogSvc, svc.completionSvc)
	progressHandler := handlers.NewProgressHandler(svc.completionSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.recordSvc)
	chatHandler := handlers.NewChatHandler(svc.chatSvc, svc.mediaSvc)

	v1 := app.Group("/api/v1")

	v1.Get("/ping", svc.ping)

	v1.Get("/lessons", lessonHandler.ListLessons)
	v1.Get("/lessons/:lessonId", lessonHandler.GetLesson)
	v1.Post("/lessons/:lessonId/start", lessonHandler.StartLesson)
	v1.Post("/lessons/:lessonId/submit", svc.rateLimitSvc.Middleware(RateLimitSubmit), lessonHandler.SubmitAnswer)

	v1.Get("/progress/:studentId", progressHandler.GetProgress)
	v1.Post("/progress/:studentId/redeem", progressHandler.RedeemReward)
	v1.Post("/progress/:studentId/reset", progressHandler.ResetProgress)

	v1.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
	v1.Get("/leaderboard/rank/:studentId", leaderboardHandler.GetPlayerRank)

	v1.Post("/lessons/:lessonId/chat", svc.rateLimitSvc.Middleware(RateLimitChat), chatHandler.SendMessage)
	v1.Get("/lessons/:lessonId/chat/:studentId", chatHandler.GetTranscript)
	v1.Post("/chat/images", svc.rateLimitSvc.Middleware(RateLimitUpload), chatHandler.UploadImage)
	v1.Delete("/chat/images/+", chatHandler.DeleteImage)

	app.Use(func(c *fiber.Ctx) error {
		return svc.handleError(c, errors.New("page not found"))
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	if err.Error() == "page not found" {
		return shared.ResponseNotFound(c)
	}

	return shared.ResponseInternalError(c, err)
}
