package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow/config"
	"leadflow/internal/clients"
	"leadflow/internal/handlers"
	"leadflow/internal/phone"
	"leadflow/internal/repositories"
	"leadflow/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title LeadFlow Conversion Engine API
// @version 1.0
// @description Contact-to-lead conversion and workflow choreography engine for the CRM console
// @host localhost:8081
// @BasePath /api/v1
func main() {
	cfg := config.NewConfig()

	scratchDB, err := config.OpenScratchpad(cfg.ScratchpadPath)
	if err != nil {
		log.Fatalf("Error opening scratchpad: %v", err)
	}
	defer scratchDB.Close()

	crmClient := clients.NewCRMClient(cfg.CRMBaseURL)
	channelClient := clients.NewChannelClient(cfg.ChannelBaseURL)

	normalizer := phone.NewNormalizer(cfg.CountryCode, cfg.LocalDigits)
	scratchpad := repositories.NewSQLiteScratchpadRepository(scratchDB)
	notifications := repositories.NewInMemoryNotificationRepository()

	notifier := services.NewNotifier(notifications)
	choreographer := services.NewChoreographer(scratchpad, crmClient, cfg.ChainTimeout)
	resolver := services.NewLeadResolver(crmClient, normalizer)
	conversion := services.NewConversionService(crmClient, resolver, choreographer, notifier, normalizer, cfg.LeadSource)
	gate := services.NewSessionGate(channelClient, cfg.SessionWindow, cfg.DefaultTemplate, cfg.TemplateLanguage)

	httpHandler := handlers.NewHTTPHandler(conversion, gate, choreographer, notifier)
	router := mux.NewRouter().PathPrefix("/api/v1").Subrouter()

	router.HandleFunc("/convert", httpHandler.Convert).Methods("POST", "OPTIONS")
	router.HandleFunc("/retry-link", httpHandler.RetryLink).Methods("POST", "OPTIONS")
	router.HandleFunc("/send-reply", httpHandler.SendReply).Methods("POST", "OPTIONS")
	router.HandleFunc("/send-mode", httpHandler.GetSendMode).Methods("GET", "OPTIONS")

	// Workflow choreography routes
	router.HandleFunc("/workflow/signal", httpHandler.GetWorkflowSignal).Methods("GET", "OPTIONS")
	router.HandleFunc("/workflow/ack", httpHandler.AckWorkflowSignal).Methods("POST", "OPTIONS")
	router.HandleFunc("/workflow/assistant-complete", httpHandler.AssistantComplete).Methods("POST", "OPTIONS")
	router.HandleFunc("/workflow/state", httpHandler.GetWorkflowState).Methods("GET", "OPTIONS")

	// Notification routes
	router.HandleFunc("/notifications", httpHandler.GetNotifications).Methods("GET", "OPTIONS")
	router.HandleFunc("/notifications/unread-count", httpHandler.GetUnreadCount).Methods("GET", "OPTIONS")
	router.HandleFunc("/notifications/mark-read", httpHandler.MarkNotificationRead).Methods("POST", "OPTIONS")
	router.HandleFunc("/notifications/mark-all-read", httpHandler.MarkAllNotificationsRead).Methods("POST", "OPTIONS")

	// WebSocket route for console surfaces
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	// Swagger static files and UI
	fs := http.FileServer(http.Dir("./docs"))
	router.PathPrefix("/swagger/").Handler(http.StripPrefix("/api/v1/swagger/", fs))
	router.PathPrefix("/swagger-ui/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:"+cfg.Port+"/api/v1/swagger/swagger.json"),
		httpSwagger.DeepLinking(true),
	))

	mainRouter := mux.NewRouter()
	mainRouter.PathPrefix("/api/v1").Handler(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := c.Handler(mainRouter)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Printf("Server is running on http://localhost:%s\n", cfg.Port)
		fmt.Printf("Swagger UI available at: http://localhost:%s/api/v1/swagger-ui/\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-stop
	fmt.Println("\nShutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	fmt.Println("Server stopped successfully")
}
