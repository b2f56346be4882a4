package services

import (
	"strings"
	"testing"
	"time"

	"dream-league-engine/metrics"
	"dream-league-engine/storage"

	"gorm.io/gorm"
)

// openTestDB gives each test its own in-memory sqlite database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(storage.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(seconds int64) { c.now = c.now.Add(time.Duration(seconds) * time.Second) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(testNow, 0)}
}

type testServices struct {
	athletes    *AthleteService
	teams       *TeamService
	tournaments *TournamentService
	creators    *CreatorService
	clock       *fakeClock
	metrics     *metrics.Recorder
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	db := openTestDB(t)
	rec := metrics.NewRecorder()
	clock := newFakeClock()

	ts := testServices{
		athletes:    NewAthleteService(db, rec),
		teams:       NewTeamService(db, rec, false),
		tournaments: NewTournamentService(db, rec),
		creators:    NewCreatorService(db, rec),
		clock:       clock,
		metrics:     rec,
	}
	ts.athletes.Now = clock.Now
	ts.teams.Now = clock.Now
	ts.tournaments.Now = clock.Now
	ts.creators.Now = clock.Now
	return ts
}
