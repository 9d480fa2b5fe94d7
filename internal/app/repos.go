package app

import (
	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type Repos struct {
	ProductIdea  repos.ProductIdeaRepo
	UserIdea     repos.UserIdeaRepo
	Report       repos.ReportRepo
	SharedReport repos.SharedReportRepo
	Milestone    repos.MilestoneRepo
	Preferences  repos.PreferencesRepo
	Profile      repos.ProfileRepo
	SystemLog    repos.SystemLogRepo
}

func wireRepos(ideasDB, userDB *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	r := Repos{
		UserIdea:     repos.NewUserIdeaRepo(userDB, log),
		Report:       repos.NewReportRepo(userDB, log),
		SharedReport: repos.NewSharedReportRepo(userDB, log),
		Milestone:    repos.NewMilestoneRepo(userDB, log),
		Preferences:  repos.NewPreferencesRepo(userDB, log),
		Profile:      repos.NewProfileRepo(userDB, log),
		SystemLog:    repos.NewSystemLogRepo(userDB, log),
	}
	if ideasDB != nil {
		r.ProductIdea = repos.NewProductIdeaRepo(ideasDB, log)
	}
	return r
}
