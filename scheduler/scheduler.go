// Package scheduler triggers the periodic fleet fetch.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/JerryLinyx/NewsGOAT/services"
)

type Scheduler struct {
	cron     *cron.Cron
	news     *services.NewsService
	log      logrus.FieldLogger
	spec     string
	country  string
	language string
	entryID  cron.EntryID
}

func New(news *services.NewsService, log logrus.FieldLogger, spec, country, language string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		news:     news,
		log:      log,
		spec:     spec,
		country:  country,
		language: language,
	}
}

// Start registers the fleet-fetch entry and starts the cron loop. An
// empty spec disables scheduling entirely.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.log.Info("scheduled fetch disabled")
		return nil
	}

	id, err := s.cron.AddFunc(s.spec, func() {
		s.log.WithField("spec", s.spec).Info("scheduled fleet fetch starting")
		s.news.IngestAllCategories(context.Background(), s.country, s.language)
	})
	if err != nil {
		return err
	}
	s.entryID = id

	s.cron.Start()
	s.log.WithField("spec", s.spec).Info("scheduler started")
	return nil
}

// NextFetchTime reports when the next sweep fires; zero when disabled.
func (s *Scheduler) NextFetchTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
