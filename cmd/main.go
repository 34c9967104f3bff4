package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/config"
	"FounderHub/server/internal/db"
	"FounderHub/server/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	config.Load()
	db.InitDB(config.C.DatabaseURL)
	defer db.Pool.Close()

	r := chi.NewRouter()

	r.Use(appMiddleware.CorsMiddleware)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/register", handlers.Register)
	r.Post("/login", handlers.Login)

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.AuthMiddleware)

		r.Get("/api/profile", handlers.GetProfile)
		r.Put("/api/profile", handlers.UpdateProfile)
		r.Get("/api/users/{user_id}", handlers.GetUserById)
		r.Get("/api/users/{user_id}/startups", handlers.GetStartupsByUser)

		r.Post("/api/startups", handlers.CreateStartup)
		r.Get("/api/startups/{startup_id}", handlers.GetStartupById)

		r.Post("/api/invitations/invite", handlers.SendInvitation)
		r.Get("/api/invitations/sent-invites", handlers.ListSentInvitations)
		r.Get("/api/invitations/received-invites", handlers.ListReceivedInvitations)
		r.Put("/api/invitations/{invitation_id}/accept-invite", handlers.AcceptInvitation)
		r.Put("/api/invitations/{invitation_id}/reject-invite", handlers.RejectInvitation)
		r.Put("/api/invitations/{invitation_id}/cancel-invite", handlers.CancelInvitation)
		r.Put("/api/invitations/{invitation_id}/cancel-dealing", handlers.CancelDealing)
		r.Put("/api/invitations/{invitation_id}/confirm-success", handlers.ConfirmSuccess)

		r.Post("/api/chats/create", handlers.CreateChatRoom)
		r.Get("/api/chats", handlers.GetChatRooms)
		r.Get("/api/chats/{room_id}", handlers.GetChatRoomInfo)
		r.Get("/api/chats/{room_id}/messages", handlers.GetChatMessages)
		r.Post("/api/chats/messages", handlers.SendChatMessage)
		r.Put("/api/chats/{room_id}/read", handlers.MarkChatMessagesRead)
		r.Delete("/api/chats/messages/{message_id}", handlers.DeleteChatMessage)

		r.Post("/api/private-chats/create", handlers.CreatePrivateChatRoom)
		r.Get("/api/private-chats", handlers.GetPrivateChatRooms)
		r.Get("/api/private-chats/{room_id}", handlers.GetPrivateChatRoomInfo)
		r.Get("/api/private-chats/{room_id}/messages", handlers.GetPrivateChatMessages)
		r.Post("/api/private-chats/{room_id}/messages", handlers.SendPrivateChatMessage)
		r.Put("/api/private-chats/{room_id}/read", handlers.MarkPrivateChatMessagesRead)
		r.Delete("/api/private-chats/messages/{message_id}", handlers.DeletePrivateChatMessage)

		r.Post("/api/upload", handlers.UploadFile)
	})

	r.Get("/ws", handlers.WebSocketHandler)

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(config.C.UploadDir)))
	r.Get("/uploads/*", uploads.ServeHTTP)

	addr := ":" + config.C.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server started on %s\n", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %s\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Println("Stopping the server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %s\n", err)
	}
	log.Println("Server has been successfully stopped")
}
