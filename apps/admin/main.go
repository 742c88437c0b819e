package main

import (
	"log"
	"os"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/schedule"
	"github.com/mirpeset/mirpeset/storage/cachefs"
	"github.com/mirpeset/mirpeset/storage/githubfs"
	"github.com/mirpeset/mirpeset/storage/tiered"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.LoadConfig()
	errAndDie(err)

	clock := core.NewRealClock()
	appLogger := core.NewStdLogger(logger)

	var remote tiered.Remote
	if conf.GitHubEnabled() {
		remote = githubfs.NewClient(conf)
	}
	cache, err := cachefs.New(conf.DataDir, conf.CacheTTL, clock)
	errAndDie(err)
	lessonDocs, err := tiered.NewStore("lessons", remote, conf.GitHub.LessonsPath, cache, conf.StaticSnapshotURL, conf.DataDir, appLogger)
	errAndDie(err)

	cli := commandLine{
		lessonSvc: lesson.NewService(tiered.NewLessonStore(lessonDocs), clock, appLogger, conf.DefaultReminderTimes),
		parser:    schedule.NewParser(clock),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
