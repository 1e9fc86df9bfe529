package api

import (
	"log"

	"github.com/edstack/institute-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewAPIServer builds the fiber app with the centralized error handler
// installed. Every error returned from a handler or middleware flows
// through it.
func NewAPIServer(listenAddress string, env string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			ErrorHandler: middleware.NewErrorHandler(env),
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}
