package repositories

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"biens-api/domain"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
)

// versionKey est la clé Memcached du compteur de version du cache
// Incrémenter la version invalide d'un coup toutes les pages en cache
const versionKey = "biens:cache:version"

// CacheRepository définit l'interface du cache de la liste publique
type CacheRepository interface {
	Get(key string) ([]domain.Bien, int64, bool)
	Set(key string, biens []domain.Bien, total int64)
	InvalidateAll()
}

// cacheData représente les données stockées en cache
type cacheData struct {
	Biens []domain.Bien `json:"biens"`
	Total int64         `json:"total"`
}

// cacheRepository implémente CacheRepository sur deux niveaux :
// ccache local (rapide, par instance) + Memcached (partagé)
type cacheRepository struct {
	localCache      *ccache.Cache[*cacheData]
	memcachedClient *memcache.Client
	ttl             time.Duration
	localVersion    atomic.Int64
}

// NewCacheRepository crée une nouvelle instance de CacheRepository
func NewCacheRepository(memcachedHost string, ttl time.Duration) CacheRepository {
	localCache := ccache.New(ccache.Configure[*cacheData]().MaxSize(1000))
	memcachedClient := memcache.New(memcachedHost)

	log.Printf("Cache initialisé : Memcached sur %s, TTL %s", memcachedHost, ttl)

	repo := &cacheRepository{
		localCache:      localCache,
		memcachedClient: memcachedClient,
		ttl:             ttl,
	}
	repo.localVersion.Store(time.Now().UnixNano())
	return repo
}

// version lit la version courante du cache dans Memcached
// Si Memcached est injoignable on retombe sur la version locale
func (r *cacheRepository) version() int64 {
	item, err := r.memcachedClient.Get(versionKey)
	if err == nil {
		if v, perr := strconv.ParseInt(string(item.Value), 10, 64); perr == nil {
			return v
		}
	}
	v := r.localVersion.Load()
	// Poser notre version pour que les autres instances s'alignent
	r.memcachedClient.Set(&memcache.Item{
		Key:   versionKey,
		Value: []byte(strconv.FormatInt(v, 10)),
	})
	return v
}

// cleVersionnee préfixe une clé par la version courante
func (r *cacheRepository) cleVersionnee(key string) string {
	return fmt.Sprintf("biens:v%d:%s", r.version(), key)
}

// Get cherche une page de résultats, d'abord en local puis dans Memcached
func (r *cacheRepository) Get(key string) ([]domain.Bien, int64, bool) {
	fullKey := r.cleVersionnee(key)

	// 1. Chercher dans le cache local
	if item := r.localCache.Get(fullKey); item != nil && !item.Expired() {
		data := item.Value()
		log.Printf("Cache HIT (local): key=%s", fullKey)
		return data.Biens, data.Total, true
	}

	// 2. Sinon, chercher dans Memcached
	memcachedItem, err := r.memcachedClient.Get(fullKey)
	if err != nil {
		if err == memcache.ErrCacheMiss {
			log.Printf("Cache MISS: key=%s", fullKey)
			return nil, 0, false
		}
		log.Printf("Erreur Memcached Get: key=%s, error=%v", fullKey, err)
		return nil, 0, false
	}

	// 3. Parser et recopier dans le cache local pour les prochains appels
	var data cacheData
	if err := json.Unmarshal(memcachedItem.Value, &data); err != nil {
		log.Printf("Erreur de décodage du cache: key=%s, error=%v", fullKey, err)
		return nil, 0, false
	}

	r.localCache.Set(fullKey, &data, r.ttl)
	log.Printf("Cache HIT (Memcached): key=%s", fullKey)

	return data.Biens, data.Total, true
}

// Set stocke une page de résultats dans les deux niveaux
func (r *cacheRepository) Set(key string, biens []domain.Bien, total int64) {
	fullKey := r.cleVersionnee(key)
	data := &cacheData{
		Biens: biens,
		Total: total,
	}

	// 1. Cache local
	r.localCache.Set(fullKey, data, r.ttl)

	// 2. Sérialiser en JSON pour Memcached
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("Erreur d'encodage du cache: key=%s, error=%v", fullKey, err)
		return
	}

	// Memcached compte le TTL en secondes
	memcachedItem := &memcache.Item{
		Key:        fullKey,
		Value:      jsonData,
		Expiration: int32(r.ttl / time.Second),
	}
	if err := r.memcachedClient.Set(memcachedItem); err != nil {
		log.Printf("Erreur Memcached Set: key=%s, error=%v", fullKey, err)
		return
	}

	log.Printf("Cache SET: key=%s", fullKey)
}

// InvalidateAll invalide toutes les pages en cache en changeant la version
// Appelé après chaque création, modification ou suppression de bien
// Les anciennes entrées deviennent inaccessibles et expirent d'elles-mêmes
func (r *cacheRepository) InvalidateAll() {
	v := time.Now().UnixNano()
	r.localVersion.Store(v)

	if err := r.memcachedClient.Set(&memcache.Item{
		Key:   versionKey,
		Value: []byte(strconv.FormatInt(v, 10)),
	}); err != nil {
		log.Printf("Erreur d'invalidation du cache: %v", err)
		return
	}

	log.Printf("Cache invalidé (version %d)", v)
}
