package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/config"
	"github.com/oksasatya/project-board/internal/infrastructure/memory"
	"github.com/oksasatya/project-board/pkg/helpers"
)

// app-level container to share constructed components across packages.
// The router wires modules from these singletons; nil optional clients
// disable the feature they back.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	memStore    *memory.Store
	memSessions *memory.SessionStore
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		return helpers.NewDiscardLogger()
	}
	return logger
}

func SetPGPool(p *pgxpool.Pool) { pgPool = p }
func GetPGPool() *pgxpool.Pool  { return pgPool }

// SetMemoryStore selects the in-process repositories instead of Postgres.
func SetMemoryStore(s *memory.Store) { memStore = s }
func GetMemoryStore() *memory.Store  { return memStore }

// SetMemorySessions selects the in-process session store instead of Redis.
func SetMemorySessions(s *memory.SessionStore) { memSessions = s }
func GetMemorySessions() *memory.SessionStore  { return memSessions }

func SetRedis(r *redis.Client) { redisClient = r }
func GetRedis() *redis.Client  { return redisClient }

func SetGCS(s *storage.Client) { gcsClient = s }
func GetGCS() *storage.Client  { return gcsClient }

func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	c := GetConfig()
	jwtManager = helpers.NewJWTManager(c.JWTSecret, c.JWTTTL, c.AppName)
	return jwtManager
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func SetES(c *elasticsearch.Client) { esClient = c }
func GetES() *elasticsearch.Client  { return esClient }

// Reset clears every singleton. Tests use it between router setups.
func Reset() {
	cfg, logger, pgPool, memStore, memSessions = nil, nil, nil, nil, nil
	redisClient, gcsClient, jwtManager, rabbitPub, esClient = nil, nil, nil, nil, nil
}
