package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ventzon/loyalty/app/repository"
	"github.com/ventzon/loyalty/internal/pkg/cache"
	"github.com/ventzon/loyalty/internal/pkg/database"
	"github.com/ventzon/loyalty/internal/pkg/env"
	"github.com/ventzon/loyalty/internal/pkg/localday"
	"github.com/ventzon/loyalty/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// A bad REFERENCE_TIMEZONE should kill the process here, not surface on
	// the first signup of the day.
	localday.Location()

	app := fiber.New(fiber.Config{
		BodyLimit: 1 << 20, // webhook payloads are small JSON documents
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
