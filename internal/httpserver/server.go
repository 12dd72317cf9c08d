package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/fdg312/meal-planner/internal/blob"
	"github.com/fdg312/meal-planner/internal/catalog"
	"github.com/fdg312/meal-planner/internal/config"
	"github.com/fdg312/meal-planner/internal/exports"
	"github.com/fdg312/meal-planner/internal/mealplans"
	"github.com/fdg312/meal-planner/internal/nutrition"
	"github.com/fdg312/meal-planner/internal/progress"
	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/fdg312/meal-planner/internal/storage/memory"
	"github.com/fdg312/meal-planner/internal/storage/postgres"
	"github.com/google/uuid"
)

// Server представляет HTTP сервер
type Server struct {
	config    *config.Config
	mux       *http.ServeMux
	storage   storage.Storage
	catalog   catalog.Provider
	blobStore blob.Store
}

// New создаёт новый HTTP сервер
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	// Инициализируем storage, каталог и blob store
	s.initStorage()
	s.initCatalog()
	s.initBlobStore()

	// Регистрируем маршруты
	s.routes()
	return s
}

// initStorage инициализирует storage (Memory или Postgres)
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: используется in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: подключение к PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: ошибка подключения к PostgreSQL: %v", err)
		log.Println("WARN storage: fallback на in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: PostgreSQL подключен успешно")
	s.storage = pgStorage
}

// initCatalog загружает каталог блюд (встроенный или из CATALOG_PATH)
func (s *Server) initCatalog() {
	c, err := catalog.Load(s.config.CatalogPath)
	if err != nil {
		log.Fatalf("FATAL catalog: %v", err)
	}

	source := "embedded"
	if strings.TrimSpace(s.config.CatalogPath) != "" {
		source = s.config.CatalogPath
	}
	log.Printf("INFO catalog: source=%s records=%d", source, c.Size())
	s.catalog = catalog.NewStaticProvider(c)
}

// initBlobStore инициализирует хранилище файлов экспорта
func (s *Server) initBlobStore() {
	store, mode, err := blob.NewBlobStore(context.Background(), s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize export store: %v", err)
	}
	log.Printf("INFO blob: export store mode=%s", mode)
	s.blobStore = store
}

// routes регистрирует маршруты
func (s *Server) routes() {
	// Health check
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Catalog API
	catalogHandler := catalog.NewHandler(s.catalog)
	s.mux.HandleFunc("GET /v1/catalog", catalogHandler.HandleList)

	// Calories API
	caloriesHandler := nutrition.NewHandler()
	s.mux.HandleFunc("POST /v1/calories", caloriesHandler.HandleCalculate)

	// Meal plans API
	generator := mealplans.NewGenerator(s.catalog, mealplans.NewSource(s.config.PlanSeed))
	mealPlansService := mealplans.NewService(s.getPlansStorage(), generator, s.config.ShoppingListPageSize)
	mealPlansHandler := mealplans.NewHandler(mealPlansService)

	// POST /v1/meal/plan/generate - generate and store the active plan
	s.mux.HandleFunc("POST /v1/meal/plan/generate", mealPlansHandler.HandleGenerate)

	// GET /v1/meal/plan?user= - active plan
	s.mux.HandleFunc("GET /v1/meal/plan", mealPlansHandler.HandleGet)

	// DELETE /v1/meal/plan?user= - delete active plan
	s.mux.HandleFunc("DELETE /v1/meal/plan", mealPlansHandler.HandleDelete)

	// POST /v1/meal/swap - stateless swap of one meal
	s.mux.HandleFunc("POST /v1/meal/swap", mealPlansHandler.HandleSwap)

	// POST /v1/meal/plan/swap - swap a meal of the stored plan
	s.mux.HandleFunc("POST /v1/meal/plan/swap", mealPlansHandler.HandlePlanSwap)

	// GET /v1/meal/plan/shopping-list?user=&page= - paginated shopping list
	s.mux.HandleFunc("GET /v1/meal/plan/shopping-list", mealPlansHandler.HandleShoppingList)

	// Progress API
	progressService := progress.NewService(s.getProgressStorage(), mealPlansService)
	progressHandler := progress.NewHandler(progressService)
	s.mux.HandleFunc("POST /v1/progress", progressHandler.HandleSave)
	s.mux.HandleFunc("GET /v1/progress", progressHandler.HandleList)

	// Exports API
	linkSecret := s.config.ExportLinkSecret
	if strings.TrimSpace(linkSecret) == "" {
		log.Println("WARN exports: EXPORT_LINK_SECRET is empty, using a per-process secret")
		linkSecret = uuid.NewString()
	}
	exportsService := exports.NewService(
		s.getExportsStorage(),
		mealPlansService,
		s.blobStore,
		exports.NewLinkSigner(linkSecret, s.config.ExportLinkTTLSeconds),
		s.config.Blob.S3.PresignTTLSeconds,
		s.config.Blob.S3.PublicBaseURL,
		s.config.Blob.S3.PreferPublicURL,
	)
	exportsHandler := exports.NewHandlers(exportsService)

	// POST /v1/exports - render the active plan
	s.mux.HandleFunc("POST /v1/exports", exportsHandler.HandleCreate)

	// GET /v1/exports?user= - list exports
	s.mux.HandleFunc("GET /v1/exports", exportsHandler.HandleList)

	// GET /v1/exports/{id}/download?token= - signed download
	s.mux.HandleFunc("GET /v1/exports/{id}/download", exportsHandler.HandleDownload)

	// DELETE /v1/exports/{id} - delete export
	s.mux.HandleFunc("DELETE /v1/exports/{id}", exportsHandler.HandleDelete)
}

// getPlansStorage returns the plans storage based on storage type
func (s *Server) getPlansStorage() storage.PlansStorage {
	switch st := s.storage.(type) {
	case *memory.MemoryStorage:
		return st.GetPlansStorage()
	case *postgres.PostgresStorage:
		return st.GetPlansStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

// getProgressStorage returns the progress storage based on storage type
func (s *Server) getProgressStorage() storage.ProgressStorage {
	switch st := s.storage.(type) {
	case *memory.MemoryStorage:
		return st.GetProgressStorage()
	case *postgres.PostgresStorage:
		return st.GetProgressStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

// getExportsStorage returns the exports storage based on storage type
func (s *Server) getExportsStorage() storage.ExportsStorage {
	switch st := s.storage.(type) {
	case *memory.MemoryStorage:
		return st.GetExportsStorage()
	case *postgres.PostgresStorage:
		return st.GetExportsStorage()
	default:
		log.Fatal("unknown storage type")
		return nil
	}
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler возвращает роутер с middleware (снаружи внутрь): CORS → Rate Limit → Router
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start запускает HTTP сервер
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("Сервер запущен на http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)
	log.Printf("Meal plans API: http://localhost%s/v1/meal/plan/generate\n", addr)

	return http.ListenAndServe(addr, s.Handler())
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
