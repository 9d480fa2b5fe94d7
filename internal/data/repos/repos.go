package repos

import (
	"gorm.io/gorm"

	"github.com/ideavault/ideavault-backend/internal/data/repos/ideastore"
	"github.com/ideavault/ideavault-backend/internal/data/repos/milestone"
	"github.com/ideavault/ideavault-backend/internal/data/repos/report"
	"github.com/ideavault/ideavault-backend/internal/data/repos/systemlog"
	"github.com/ideavault/ideavault-backend/internal/data/repos/user"
	"github.com/ideavault/ideavault-backend/internal/data/repos/useridea"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type ProductIdeaRepo = ideastore.ProductIdeaRepo

type UserIdeaRepo = useridea.UserIdeaRepo
type ReportRepo = report.ReportRepo
type SharedReportRepo = report.SharedReportRepo
type MilestoneRepo = milestone.MilestoneRepo
type PreferencesRepo = user.PreferencesRepo
type ProfileRepo = user.ProfileRepo
type SystemLogRepo = systemlog.SystemLogRepo

func NewProductIdeaRepo(db *gorm.DB, baseLog *logger.Logger) ProductIdeaRepo {
	return ideastore.NewProductIdeaRepo(db, baseLog)
}

func NewUserIdeaRepo(db *gorm.DB, baseLog *logger.Logger) UserIdeaRepo {
	return useridea.NewUserIdeaRepo(db, baseLog)
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return report.NewReportRepo(db, baseLog)
}

func NewSharedReportRepo(db *gorm.DB, baseLog *logger.Logger) SharedReportRepo {
	return report.NewSharedReportRepo(db, baseLog)
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return milestone.NewMilestoneRepo(db, baseLog)
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return user.NewPreferencesRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}

func NewSystemLogRepo(db *gorm.DB, baseLog *logger.Logger) SystemLogRepo {
	return systemlog.NewSystemLogRepo(db, baseLog)
}
