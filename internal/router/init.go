package router

import (
	"github.com/oksasatya/project-board/internal/application"
	"github.com/oksasatya/project-board/internal/container"
	repo "github.com/oksasatya/project-board/internal/domain/repository"
	"github.com/oksasatya/project-board/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/project-board/internal/infrastructure/postgres"
	"github.com/oksasatya/project-board/internal/infrastructure/redisstore"
	"github.com/oksasatya/project-board/internal/infrastructure/search"
	handlers "github.com/oksasatya/project-board/internal/interface/http"
	"github.com/oksasatya/project-board/internal/interface/middleware"
	"github.com/oksasatya/project-board/internal/router/modules"
	"github.com/oksasatya/project-board/pkg/helpers"
)

// Repositories is the storage backend chosen at startup.
type Repositories struct {
	Users    repo.UserRepository
	Projects repo.ProjectRepository
	Tasks    repo.TaskRepository
	Tx       repo.Transactor
	Sessions repo.SessionRepository
}

func buildRepositories() Repositories {
	var r Repositories
	if s := container.GetMemoryStore(); s != nil {
		r.Users, r.Projects, r.Tasks, r.Tx = s.Users(), s.Projects(), s.Tasks(), s.Transactor()
	} else {
		pool := container.GetPGPool()
		r.Users = pginfra.NewUserRepository(pool)
		r.Projects = pginfra.NewProjectRepository(pool)
		r.Tasks = pginfra.NewTaskRepository(pool)
		r.Tx = pginfra.NewTransactor(pool)
	}

	switch {
	case container.GetMemorySessions() != nil:
		r.Sessions = container.GetMemorySessions()
	case container.GetRedis() != nil:
		r.Sessions = redisstore.NewSessionStore(container.GetRedis())
	default:
		r.Sessions = memory.NewSessionStore()
	}
	return r
}

// Services groups the application services shared by the modules.
type Services struct {
	Identity *application.IdentityService
	Projects *application.ProjectService
	Tasks    *application.TaskService
	Scores   *application.ScoreService
}

func buildServices(r Repositories) Services {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var pub application.EventPublisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}
	notifier := application.NewNotifier(pub, logger, cfg.MailSendEnabled, cfg.CompanyName, cfg.AppURL)

	var index application.ProjectIndex
	if es := container.GetES(); es != nil {
		index = search.NewProjectIndex(es, cfg.ESProjectsIndex)
	}
	var storage application.ObjectStorage
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		storage = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}

	scores := application.NewScoreService(r.Users)
	return Services{
		Identity: application.NewIdentityService(r.Users, r.Sessions, container.GetJWT(), logger, notifier),
		Projects: application.NewProjectService(r.Projects, r.Users, index, storage, notifier, logger),
		Tasks:    application.NewTaskService(r.Tasks, r.Projects, r.Users, r.Tx, scores, notifier, logger, cfg.CompletionPoints),
		Scores:   scores,
	}
}

// InitModules builds the services from the container and registers every
// module. Call once during startup, after the container is populated.
func InitModules(r *Registry) Services {
	svc := buildServices(buildRepositories())
	logger := container.GetLogger()
	auth := middleware.Auth(svc.Identity)

	r.Add(modules.NewDebugModule(container.GetConfig().DebugMetricsEnabled))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Identity, logger), auth))
	r.Add(modules.NewProjectModule(handlers.NewProjectHandler(svc.Projects, logger), auth))
	r.Add(modules.NewTaskModule(handlers.NewTaskHandler(svc.Tasks, logger), auth))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Scores, logger), auth))
	return svc
}
