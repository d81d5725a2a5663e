package cron

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/nucares/booking-gateway/session"
)

// StartCronJobs starts the background scheduler that sweeps idle booking-flow
// sessions out of the store.
func StartCronJobs(store *session.Store) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc("*/10 * * * *", func() {
		if dropped := store.Sweep(); dropped > 0 {
			log.Info().Int("dropped", dropped).Int("live", store.Len()).Msg("swept idle booking sessions")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Msg("session sweep scheduler started")
	return c, nil
}
