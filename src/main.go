package main

import (
	_ "Backend-Evalhub/docs"
	"Backend-Evalhub/src/database"
	"Backend-Evalhub/src/jobs"
	"Backend-Evalhub/src/routes"
	"Backend-Evalhub/src/services/aggregation"
	"Backend-Evalhub/src/services/assignments"
	"Backend-Evalhub/src/services/progress"
	"Backend-Evalhub/src/services/scoring"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
)

// @title        Evalhub API
// @version      1.0
// @description  Evaluation assignment and scoring aggregation engine
// @BasePath     /api/v1
func main() {

	err := database.ConnectMongoDB()
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}
	database.InitRedis()
	database.InitAsynq()

	// One shared service graph: HTTP handlers and the background worker
	// go through the same per-key locks.
	broadcaster := progress.NewBroadcaster(database.RedisClient)
	registry := assignments.NewMongoService()
	aggregates := aggregation.NewMongoService(registry, broadcaster)
	engine := scoring.NewMongoService(registry, aggregates)

	go jobs.StartWorker(aggregates)

	app := fiber.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	fmt.Println(origins)

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	routes.InitRoutes(app, engine, registry, aggregates, broadcaster)

	appURI := os.Getenv("APP_URI")
	if appURI == "" {
		appURI = "8888"
	}

	log.Println("Server is running on port " + appURI)
	err = app.Listen(fmt.Sprintf(":%s", url.PathEscape(appURI)))
	if err != nil {
		log.Fatal(err)
	}

}
