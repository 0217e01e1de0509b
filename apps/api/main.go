package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trezcool/codestock/apps/api/echo"
	"github.com/trezcool/codestock/core"
	"github.com/trezcool/codestock/core/assignment"
	"github.com/trezcool/codestock/core/award"
	"github.com/trezcool/codestock/core/material"
	"github.com/trezcool/codestock/core/presence"
	"github.com/trezcool/codestock/core/session"
	"github.com/trezcool/codestock/core/user"
	"github.com/trezcool/codestock/core/visit"
	"github.com/trezcool/codestock/services/email"
	"github.com/trezcool/codestock/services/logger"
	"github.com/trezcool/codestock/storage/database"
	"github.com/trezcool/codestock/storage/database/inmem"
	"github.com/trezcool/codestock/storage/database/sqlx"
	"github.com/trezcool/codestock/storage/session"
)

type repos struct {
	user       user.Repository
	presence   presence.Repository
	material   material.Repository
	assignment assignment.Repository
	award      award.Repository
	visit      visit.Repository
}

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	if err := run(logger); err != nil {
		logger.Fatal("api run error", err)
	}
}

func run(logger core.Logger) error {
	// set up storage
	var rps repos
	if core.Conf.Debug {
		db, err := inmemdb.Open()
		if err != nil {
			return err
		}
		rps = repos{
			user:       inmemdb.NewUserRepository(db),
			presence:   inmemdb.NewPresenceRepository(db),
			material:   inmemdb.NewMaterialRepository(db),
			assignment: inmemdb.NewAssignmentRepository(db),
			award:      inmemdb.NewAwardRepository(db),
			visit:      inmemdb.NewVisitRepository(db),
		}
	} else {
		db, err := database.Open(core.Conf)
		if err != nil {
			return err
		}
		defer db.Close()
		if err = database.Ping(db); err != nil {
			return err
		}
		if err = database.Migrate(db); err != nil {
			return err
		}
		rps = repos{
			user:       sqlxrepos.NewUserRepository(db),
			presence:   sqlxrepos.NewPresenceRepository(db),
			material:   sqlxrepos.NewMaterialRepository(db),
			assignment: sqlxrepos.NewAssignmentRepository(db),
			award:      sqlxrepos.NewAwardRepository(db),
			visit:      sqlxrepos.NewVisitRepository(db),
		}
	}

	var sessionStore session.Repository
	if core.Conf.Redis.Enabled {
		client, err := sessionstore.NewRedisClient(&core.Conf.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		sessionStore = sessionstore.NewRedisStore(client)
	} else {
		sessionStore = sessionstore.NewInMemStore()
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(rps.user, mailSvc, logger)
	sessSvc := session.NewService(sessionStore, core.Conf.Server.SessionTTL)
	presSvc := presence.NewService(rps.presence, usrSvc, logger)
	matSvc := material.NewService(rps.material)
	asgSvc := assignment.NewService(rps.assignment)
	awdSvc := award.NewService(rps.award)
	vstSvc := visit.NewService(rps.visit)

	if core.Conf.Debug {
		seedDemoData(usrSvc, matSvc, asgSvc, awdSvc, logger)
	}

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:        core.Conf.Server.Address(),
			Logger:         logger,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },

			UserSvc:       usrSvc,
			SessionSvc:    sessSvc,
			PresenceSvc:   presSvc,
			MaterialSvc:   matSvc,
			AssignmentSvc: asgSvc,
			AwardSvc:      awdSvc,
			VisitSvc:      vstSvc,
		},
	)
	go app.Start()

	<-shutdown
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.Stop(ctx)
}

// seedDemoData loads a small fixture set so a fresh DEV instance is usable
// right away. Duplicate errors on restart are ignored.
func seedDemoData(
	usrSvc *user.Service,
	matSvc *material.Service,
	asgSvc *assignment.Service,
	awdSvc *award.Service,
	logger core.Logger,
) {
	admin, err := usrSvc.Create(user.NewUser{
		Username:  "admin",
		AccountID: "ADM001",
		Email:     "admin@codestock.dev",
		Password:  "LibraryOfBabel",
		Role:      user.RoleAdmin,
	})
	if err != nil {
		logger.Warn("seeding admin user", err)
		return
	}

	if _, err = matSvc.Create(material.NewMaterial{
		Title:    "Introduction to Go",
		Content:  "Start with the tour, then write small programs.",
		Category: "golang",
		ReadTime: 12,
	}, admin.ID); err != nil {
		logger.Warn("seeding materials", err)
	}

	if _, err = asgSvc.Create(assignment.NewAssignment{
		Title:       "HTTP server basics",
		Description: "Build a small REST endpoint with tests.",
		Course:      "golang",
		DueDate:     time.Now().AddDate(0, 0, 14),
	}); err != nil {
		logger.Warn("seeding assignments", err)
	}

	if _, err = awdSvc.Create(award.NewAward{
		Name:        "First Steps",
		Description: "Completed the onboarding track.",
		Badge:       "GO",
	}); err != nil {
		logger.Warn("seeding awards", err)
	}
}
