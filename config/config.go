package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config regroupe toute la configuration du service
// Chaque champ vient d'une variable d'environnement, avec un défaut
// utilisable en développement local
type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8081"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER" default:"biens_user"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"biens_password"`
	DBName     string `envconfig:"DB_NAME" default:"biens_db"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"default-secret-change-in-production"`

	MemcachedHost string `envconfig:"MEMCACHED_HOST" default:"localhost:11211"`
	CacheTTLMin   int    `envconfig:"CACHE_TTL_MIN" default:"5"`

	RabbitMQURL   string `envconfig:"RABBITMQ_URL" default:""`
	RabbitMQQueue string `envconfig:"RABBITMQ_QUEUE" default:"biens_queue"`
}

// Load charge la configuration depuis l'environnement
// Le .env est chargé s'il existe (pratique en local, absent en prod)
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Fichier .env chargé")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("lecture de la configuration: %w", err)
	}
	return cfg, nil
}

// DSN construit la chaîne de connexion MySQL
// Format : utilisateur:password@tcp(host:port)/base?options
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
