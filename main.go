package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/mishastik78/yamdb-final/config"
	"github.com/mishastik78/yamdb-final/handlers"
	"github.com/mishastik78/yamdb-final/middleware"
	"github.com/mishastik78/yamdb-final/service"
	"github.com/mishastik78/yamdb-final/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("mongodb indexes:", err)
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := &service.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.EmailFrom,
	}
	authService := &service.AuthService{
		Users:         db,
		Tokens:        tokens,
		Mailer:        mailer,
		FailSilently:  cfg.MailFailSilently,
		ReusableCodes: cfg.AuthCodeReusable,
	}
	reviewService := &service.ReviewService{Content: db}

	authHandler := &handlers.AuthHandler{Auth: authService}
	usersHandler := &handlers.UsersHandler{DB: db}
	titlesHandler := &handlers.TitlesHandler{DB: db}
	categoriesHandler := &handlers.TaxonomyHandler{Store: db.CategoryStore(), Label: "category"}
	genresHandler := &handlers.TaxonomyHandler{Store: db.GenreStore(), Label: "genre"}
	reviewsHandler := &handlers.ReviewsHandler{Svc: reviewService, DB: db}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/email", authHandler.RequestCode)
		r.Post("/auth/token", authHandler.ExchangeCode)

		// Safe verbs are public; a bearer token is picked up when present.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(tokens, db))
			r.Get("/categories", categoriesHandler.List)
			r.Get("/genres", genresHandler.List)
			r.Get("/titles", titlesHandler.List)
			r.Get("/titles/{titleID}", titlesHandler.Get)
			r.Get("/titles/{titleID}/reviews", reviewsHandler.ListReviews)
			r.Get("/titles/{titleID}/reviews/{reviewID}", reviewsHandler.GetReview)
			r.Get("/titles/{titleID}/reviews/{reviewID}/comments", reviewsHandler.ListComments)
			r.Get("/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", reviewsHandler.GetComment)
		})

		// Mutations require authentication; per-resource policy is enforced
		// in the handlers and services.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens, db))
			r.Post("/categories", categoriesHandler.Create)
			r.Delete("/categories/{slug}", categoriesHandler.Delete)
			r.Post("/genres", genresHandler.Create)
			r.Delete("/genres/{slug}", genresHandler.Delete)
			r.Post("/titles", titlesHandler.Create)
			r.Patch("/titles/{titleID}", titlesHandler.Update)
			r.Delete("/titles/{titleID}", titlesHandler.Delete)
			r.Post("/titles/{titleID}/reviews", reviewsHandler.CreateReview)
			r.Patch("/titles/{titleID}/reviews/{reviewID}", reviewsHandler.UpdateReview)
			r.Delete("/titles/{titleID}/reviews/{reviewID}", reviewsHandler.DeleteReview)
			r.Post("/titles/{titleID}/reviews/{reviewID}/comments", reviewsHandler.CreateComment)
			r.Patch("/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", reviewsHandler.UpdateComment)
			r.Delete("/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", reviewsHandler.DeleteComment)

			r.Get("/users/me", usersHandler.Me)
			r.Patch("/users/me", usersHandler.UpdateMe)
			r.Get("/users", usersHandler.List)
			r.Post("/users", usersHandler.Create)
			r.Get("/users/{username}", usersHandler.Get)
			r.Patch("/users/{username}", usersHandler.Update)
			r.Delete("/users/{username}", usersHandler.Delete)
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
