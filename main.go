package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biens-api/config"
	"biens-api/controllers"
	"biens-api/domain"
	"biens-api/middleware"
	"biens-api/publishers"
	"biens-api/repositories"
	"biens-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// ============================================
	// 1. CONFIGURATION - Variables d'environnement
	// ============================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Erreur de configuration:", err)
	}

	log.Println("🔧 Configuration chargée:")
	log.Printf("   - DB: %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)
	log.Printf("   - Memcached: %s", cfg.MemcachedHost)

	// ============================================
	// 2. CONNEXION À MYSQL
	// ============================================
	log.Println("📡 Connexion à MySQL...")
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Connexion à la base impossible:", err)
	}
	log.Println("✅ Connexion à MySQL réussie")

	// ============================================
	// 3. MIGRATIONS
	// ============================================
	// GORM crée les tables "biens" et "photos" si elles n'existent pas
	log.Println("🔄 Exécution des migrations...")
	if err := db.AutoMigrate(&domain.Bien{}, &domain.Photo{}); err != nil {
		log.Fatal("❌ Échec des migrations:", err)
	}
	log.Println("✅ Tables créées/à jour")

	// ============================================
	// 4. INITIALISATION DES COUCHES
	// ============================================
	log.Println("🏗️  Initialisation des couches...")

	// Repository : accès aux données
	bienRepo := repositories.NewBienRepository(db)

	// Cache : deux niveaux (local + Memcached) pour la liste publique
	cacheRepo := repositories.NewCacheRepository(cfg.MemcachedHost, time.Duration(cfg.CacheTTLMin)*time.Minute)

	// Publisher : événements de biens vers le search-service
	// Sans RABBITMQ_URL on tourne sans broker (développement local)
	var publisher publishers.EventPublisher
	if cfg.RabbitMQURL != "" {
		rabbitPublisher, err := publishers.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Fatal("❌ Connexion à RabbitMQ impossible:", err)
		}
		publisher = rabbitPublisher
	} else {
		log.Println("⚠️  RABBITMQ_URL absent : événements désactivés")
		publisher = publishers.NoopPublisher{}
	}

	// Service : logique métier
	bienService := services.NewBienService(bienRepo, cacheRepo, publisher)

	// Controller : gestion HTTP
	bienController := controllers.NewBienController(bienService)

	log.Println("✅ Couches initialisées")

	// ============================================
	// 5. CONFIGURATION DE GIN
	// ============================================
	router := gin.Default()

	// CORS - autoriser les requêtes du frontend
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// ============================================
	// 6. ROUTES
	// ============================================
	log.Println("🛣️  Configuration des routes...")

	router.GET("/health", bienController.HealthCheck)

	biens := router.Group("/biens")
	{
		// Routes PUBLIQUES (sans authentification)
		biens.GET("", bienController.ListPublic)   // Liste filtrée et paginée
		biens.GET("/:id", bienController.GetByID)  // Détail + photos

		// Routes PROTÉGÉES (JWT émis par le users-service)
		biens.GET("/mes-biens", middleware.AuthMiddleware(), middleware.VendeurMiddleware(), bienController.MesBiens)
		biens.POST("", middleware.AuthMiddleware(), middleware.VendeurMiddleware(), bienController.Create)
		biens.PUT("/:id", middleware.AuthMiddleware(), bienController.Update)      // propriétaire uniquement
		biens.DELETE("/:id", middleware.AuthMiddleware(), bienController.Delete)   // propriétaire uniquement
	}

	log.Println("✅ Routes configurées:")
	log.Println("   - GET    /health")
	log.Println("   - GET    /biens")
	log.Println("   - GET    /biens/:id")
	log.Println("   - GET    /biens/mes-biens (vendeur)")
	log.Println("   - POST   /biens (vendeur)")
	log.Println("   - PUT    /biens/:id (propriétaire)")
	log.Println("   - DELETE /biens/:id (propriétaire)")

	// ============================================
	// 7. DÉMARRAGE DU SERVEUR + ARRÊT PROPRE
	// ============================================
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		log.Println("🚀 =======================================")
		log.Printf("🚀 Biens API en écoute sur le port %s", cfg.ServerPort)
		log.Println("🚀 =======================================")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Démarrage du serveur impossible:", err)
		}
	}()

	// Attendre SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Arrêt de Biens API...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Erreur à l'arrêt du serveur HTTP: %v", err)
	} else {
		log.Println("Serveur HTTP arrêté")
	}

	if err := publisher.Close(); err != nil {
		log.Printf("Erreur à la fermeture du publisher: %v", err)
	}

	log.Println("Biens API arrêtée")
}
