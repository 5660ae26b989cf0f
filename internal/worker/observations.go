package worker

import (
	"log"
	"time"

	"huntcore/internal/config"
	"huntcore/internal/service/observation"
)

// StartObservationFlushWorkers starts the write-behind persistence workers
// for scouting observations: dirty entries go to Redis frequently, the full
// set to PostgreSQL on a slower cadence.
func StartObservationFlushWorkers() {
	obsService := observation.GetObservationService()

	redisTicker := time.NewTicker(config.RedisBackupInterval)
	go func() {
		for range redisTicker.C {
			if err := obsService.SaveDirtyObservationsToRedis(); err != nil {
				log.Printf("Error saving observations to Redis: %v", err)
			}
		}
	}()

	pgTicker := time.NewTicker(config.PostgresBackupInterval)
	go func() {
		for range pgTicker.C {
			if err := obsService.SaveAllObservationsToPG(); err != nil {
				log.Printf("Error saving observations to PostgreSQL: %v", err)
			}
		}
	}()

	log.Printf("Observation flush workers started (redis %v, postgres %v)",
		config.RedisBackupInterval, config.PostgresBackupInterval)
}
