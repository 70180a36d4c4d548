package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/zizouhuweidi/trivia/internal/config"
	"github.com/zizouhuweidi/trivia/internal/database"
	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/handler"
	"github.com/zizouhuweidi/trivia/internal/repository/memory"
	"github.com/zizouhuweidi/trivia/internal/repository/postgres"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// stores groups the repositories selected by STORE_DRIVER
type stores struct {
	questions  domain.QuestionRepository
	categories domain.CategoryRepository
	health     handler.Pinger
	close      func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memory.NewStore(
			domain.Category{ID: 1, Type: "Science"},
			domain.Category{ID: 2, Type: "Art"},
			domain.Category{ID: 3, Type: "Geography"},
			domain.Category{ID: 4, Type: "History"},
			domain.Category{ID: 5, Type: "Entertainment"},
			domain.Category{ID: 6, Type: "Sports"},
		)
		return &stores{
			questions:  store.Questions(),
			categories: store.Categories(),
			health:     store,
			close:      func() {},
		}, nil
	}

	pool, err := database.ConnectPostgres(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &stores{
		questions:  postgres.NewQuestionRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		health:     pool,
		close:      pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize Echo
	e := echo.New()
	e.Logger.SetLevel(cfg.LogLevel)
	handler.Setup(e, cfg.CORSAllowedOrigins)

	// Initialize store
	st, err := openStores(context.Background(), cfg)
	if err != nil {
		e.Logger.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer st.close()

	// Initialize services and handlers
	catalogService := service.NewCatalogService(st.questions, st.categories)
	handler.NewCatalogHandler(catalogService).Register(e)
	handler.NewHealthHandler(st.health).Register(e)

	// Start server
	go func() {
		e.Logger.Infof("Serving trivia API on %s with %s store", cfg.ServerAddr, cfg.StoreDriver)
		if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal("shutting down the server: ", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}
}
