package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"recipebook/internal/config"
	"recipebook/internal/database"
	"recipebook/internal/handlers"
	authmw "recipebook/internal/middleware"
	"recipebook/internal/repository"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	tagRepo := repository.NewTagRepository(db)
	favRepo := repository.NewFavoritesRepository(db)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo, recipeRepo)
	recipeHandler := handlers.NewRecipeHandler(recipeRepo)
	ingredientHandler := handlers.NewIngredientHandler(ingredientRepo)
	tagHandler := handlers.NewTagHandler(tagRepo, recipeRepo)
	favHandler := handlers.NewFavoritesHandler(favRepo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(authmw.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		// Credential endpoints get their own rate limit
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/users", userHandler.Create)
		})

		// Public read paths
		r.Get("/recipes", recipeHandler.List)
		r.Get("/recipes/{id}", recipeHandler.Get)
		r.Get("/ingredients", ingredientHandler.List)
		r.Get("/ingredients/{id}", ingredientHandler.Get)
		r.Get("/tags", tagHandler.List)
		r.Get("/tags/{id}", tagHandler.Get)
		r.Get("/tags/{id}/recipes", tagHandler.Recipes)
		r.Get("/users/{id}/recipes", userHandler.Recipes)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth(cfg.JWTSecret))

			r.Get("/auth/me", authHandler.Me)

			r.Post("/recipes", recipeHandler.Create)
			r.Put("/recipes/{id}", recipeHandler.Update)
			r.Delete("/recipes/{id}", recipeHandler.Delete)

			r.Post("/ingredients", ingredientHandler.Create)
			r.Post("/tags", tagHandler.Create)

			r.Get("/users/{id}", userHandler.Get)
			r.Put("/users/{id}", userHandler.Update)

			r.Get("/favorites", favHandler.List)
			r.Post("/favorites/{recipeId}", favHandler.Add)
			r.Delete("/favorites/{recipeId}", favHandler.Remove)

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(authmw.RequireAdmin)

				r.Get("/users", userHandler.List)
				r.Delete("/users/{id}", userHandler.Delete)

				r.Put("/ingredients/{id}", ingredientHandler.Update)
				r.Delete("/ingredients/{id}", ingredientHandler.Delete)

				r.Put("/tags/{id}", tagHandler.Update)
				r.Delete("/tags/{id}", tagHandler.Delete)
			})
		})
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}
