package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// artistsCompleted tracks artists fully scraped and checkpointed.
	artistsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_artists_completed_total",
		Help: "The total number of artists fully scraped.",
	})
	// artistsSkipped tracks artists skipped after a fetch or parse failure.
	artistsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_artists_skipped_total",
		Help: "The total number of artists skipped due to errors.",
	})
	// albumsSkipped tracks albums dropped after a lyrics page failure.
	albumsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_albums_skipped_total",
		Help: "The total number of albums skipped due to errors.",
	})
	// songsCollected tracks songs accumulated into the dataset.
	songsCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_songs_collected_total",
		Help: "The total number of songs collected into the dataset.",
	})
	// checkpointSaves tracks checkpoint persistence operations.
	checkpointSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metallyrics_checkpoint_saves_total",
		Help: "The total number of checkpoint saves.",
	})
)
