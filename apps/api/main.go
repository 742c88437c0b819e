package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	echoapi "github.com/mirpeset/mirpeset/apps/api/echo"
	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/recording"
	"github.com/mirpeset/mirpeset/core/schedule"
	"github.com/mirpeset/mirpeset/core/zman"
	emailsvc "github.com/mirpeset/mirpeset/services/email"
	logsvc "github.com/mirpeset/mirpeset/services/logger"
	"github.com/mirpeset/mirpeset/services/reminder"
	"github.com/mirpeset/mirpeset/storage/cachefs"
	"github.com/mirpeset/mirpeset/storage/githubfs"
	"github.com/mirpeset/mirpeset/storage/localfs"
	"github.com/mirpeset/mirpeset/storage/tiered"
)

func main() {
	conf, err := core.LoadConfig()
	errAndDie(err)

	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)
	var logger core.Logger
	if conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = core.NewStdLogger(std)
	}

	clock := core.NewRealClock()

	// storage tiers
	var remote tiered.Remote
	if conf.GitHubEnabled() {
		remote = githubfs.NewClient(conf)
	} else {
		logger.Warn("remote store not configured; writes stay local")
	}
	cache, err := cachefs.New(conf.DataDir, conf.CacheTTL, clock)
	errAndDie(err)

	lessonDocs, err := tiered.NewStore("lessons", remote, conf.GitHub.LessonsPath, cache, conf.StaticSnapshotURL, conf.DataDir, logger)
	errAndDie(err)
	recordingDocs, err := tiered.NewStore("recordings", remote, conf.GitHub.RecordingsPath, cache, "", conf.DataDir, logger)
	errAndDie(err)
	zmanStore, err := localfs.NewZmanStore(conf.DataDir)
	errAndDie(err)

	// services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	lessonSvc := lesson.NewService(tiered.NewLessonStore(lessonDocs), clock, logger, conf.DefaultReminderTimes)
	recordingSvc := recording.NewService(tiered.NewRecordingStore(recordingDocs), clock)
	zmanSvc := zman.NewService(zmanStore, clock)
	parser := schedule.NewParser(clock)
	scheduler := reminder.NewScheduler(conf, clock, mailSvc, logger)

	// daily sweep: durably complete elapsed lessons and re-arm reminders
	// from the fresh collection
	sweep := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if n, err := lessonSvc.CompleteElapsed(ctx); err != nil {
			logger.Error("completing elapsed lessons", err)
		} else if n > 0 {
			logger.Info("marked elapsed lessons as completed", n)
		}
		if lessons, err := lessonSvc.Upcoming(ctx); err != nil {
			logger.Error("arming reminders", err)
		} else {
			scheduler.ArmAll(lessons)
		}
	}
	sweep()

	c := cron.New()
	_, err = c.AddFunc("5 0 * * *", sweep)
	errAndDie(err)
	c.Start()
	defer c.Stop()
	defer scheduler.CancelAll()

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:      conf.ServerAddress(),
		LessonSvc:    lessonSvc,
		RecordingSvc: recordingSvc,
		ZmanSvc:      zmanSvc,
		Parser:       parser,
		Logger:       logger,
	})
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
