package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/surf-spot-ranking/internal/geo"
	"github.com/i474232898/surf-spot-ranking/internal/surf"
)

const schema = `
CREATE TABLE IF NOT EXISTS surf_spots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	region TEXT NOT NULL DEFAULT '',
	break_type TEXT NOT NULL DEFAULT 'other',
	difficulty_level TEXT NOT NULL DEFAULT 'intermediate',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (name, region)
);
CREATE INDEX IF NOT EXISTS idx_surf_spots_lat_lng ON surf_spots(latitude, longitude);

CREATE TABLE IF NOT EXISTS user_preferences (
	session_id TEXT PRIMARY KEY,
	skill_level TEXT NOT NULL,
	min_wave_height REAL NOT NULL,
	max_wave_height REAL NOT NULL,
	max_wind_speed REAL NOT NULL,
	max_distance_km REAL NOT NULL,
	location_lat REAL,
	location_lng REAL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS forecast_cache (
	spot_id INTEGER NOT NULL,
	source TEXT NOT NULL,
	forecast_time INTEGER NOT NULL,
	wave_height REAL NOT NULL,
	wave_period REAL NOT NULL,
	wind_speed REAL NOT NULL,
	wind_direction REAL NOT NULL,
	cached_at INTEGER NOT NULL,
	PRIMARY KEY (spot_id, source, forecast_time)
);
CREATE INDEX IF NOT EXISTS idx_forecast_cache_spot_cached ON forecast_cache(spot_id, cached_at);
`

// SQLiteStore keeps the spot catalog, preferences and the forecast cache in a
// single SQLite database.
type SQLiteStore struct {
	db        *sql.DB
	freshness time.Duration
	now       func() time.Time
}

// OpenSQLite opens (creating if needed) the database at dbPath and ensures the
// schema exists.
func OpenSQLite(dbPath string, freshness time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite takes one writer at a time; a single connection keeps writes
	// serialized without lock errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	return &SQLiteStore{db: db, freshness: freshness, now: time.Now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Seed inserts spots that are not already present (matched on name and region)
// and returns how many rows were added.
func (s *SQLiteStore) Seed(ctx context.Context, spots []surf.Location) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO surf_spots (name, latitude, longitude, region, break_type, difficulty_level)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, region) DO NOTHING`)
	if err != nil {
		return 0, fmt.Errorf("preparing seed insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, sp := range spots {
		res, err := stmt.ExecContext(ctx, sp.Name, sp.Latitude, sp.Longitude, sp.Region, string(sp.BreakType), string(sp.Difficulty))
		if err != nil {
			return 0, fmt.Errorf("seeding %s: %w", sp.Name, err)
		}
		n, _ := res.RowsAffected()
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

const spotColumns = `id, name, latitude, longitude, region, break_type, difficulty_level`

func scanSpot(row interface{ Scan(...any) error }) (surf.Location, error) {
	var (
		l          surf.Location
		breakType  string
		difficulty string
	)
	if err := row.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.Region, &breakType, &difficulty); err != nil {
		return surf.Location{}, err
	}
	l.BreakType = surf.ParseBreakType(breakType)
	l.Difficulty = surf.Level(difficulty)
	return l, nil
}

// List returns all spots ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]surf.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+spotColumns+` FROM surf_spots ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying spots: %w", err)
	}
	defer rows.Close()

	out := []surf.Location{}
	for rows.Next() {
		l, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Get returns the spot with the given id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (surf.Location, error) {
	l, err := scanSpot(s.db.QueryRowContext(ctx, `SELECT `+spotColumns+` FROM surf_spots WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return surf.Location{}, fmt.Errorf("spot %d: %w", id, surf.ErrNotFound)
	}
	if err != nil {
		return surf.Location{}, fmt.Errorf("querying spot by id: %w", err)
	}
	return l, nil
}

// FindWithinRadius prefilters on a bounding box and then checks the exact
// haversine distance.
func (s *SQLiteStore) FindWithinRadius(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]surf.Candidate, error) {
	if radiusKm <= 0 {
		return []surf.Candidate{}, nil
	}

	minLat, maxLat, minLng, maxLng := geo.BoundingBox(center, radiusKm)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+spotColumns+`
		FROM surf_spots
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		ORDER BY id`,
		minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, fmt.Errorf("querying spots: %w", err)
	}
	defer rows.Close()

	var (
		spots  []surf.Location
		points []geo.Coordinate
	)
	for rows.Next() {
		l, err := scanSpot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spot: %w", err)
		}
		spots = append(spots, l)
		points = append(points, l.Coordinate())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hits := geo.WithinRadius(center, radiusKm, points)
	out := make([]surf.Candidate, 0, len(hits))
	for _, h := range hits {
		out = append(out, surf.Candidate{Location: spots[h.Index], DistanceKm: h.DistanceKm})
	}
	return out, nil
}

// SavePreferences upserts the profile keyed by session id.
func (s *SQLiteStore) SavePreferences(ctx context.Context, p surf.PreferenceProfile) (surf.PreferenceProfile, error) {
	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}

	var lat, lng sql.NullFloat64
	if p.Home != nil {
		lat = sql.NullFloat64{Float64: p.Home.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.Home.Lng, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_preferences
			(session_id, skill_level, min_wave_height, max_wave_height, max_wind_speed,
			 max_distance_km, location_lat, location_lng, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			skill_level = excluded.skill_level,
			min_wave_height = excluded.min_wave_height,
			max_wave_height = excluded.max_wave_height,
			max_wind_speed = excluded.max_wind_speed,
			max_distance_km = excluded.max_distance_km,
			location_lat = excluded.location_lat,
			location_lng = excluded.location_lng,
			updated_at = excluded.updated_at`,
		p.SessionID, string(p.SkillLevel), p.MinWaveHeight, p.MaxWaveHeight, p.MaxWindSpeed,
		p.MaxDistanceKm, lat, lng, updated.UnixMilli(), updated.UnixMilli())
	if err != nil {
		return surf.PreferenceProfile{}, fmt.Errorf("saving preferences: %w", err)
	}

	return s.GetPreferences(ctx, p.SessionID)
}

// GetPreferences returns the profile saved for sessionID.
func (s *SQLiteStore) GetPreferences(ctx context.Context, sessionID string) (surf.PreferenceProfile, error) {
	var (
		p        surf.PreferenceProfile
		skill    string
		lat, lng sql.NullFloat64
		updated  int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, skill_level, min_wave_height, max_wave_height, max_wind_speed,
		       max_distance_km, location_lat, location_lng, updated_at
		FROM user_preferences WHERE session_id = ?`, sessionID).
		Scan(&p.SessionID, &skill, &p.MinWaveHeight, &p.MaxWaveHeight, &p.MaxWindSpeed,
			&p.MaxDistanceKm, &lat, &lng, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return surf.PreferenceProfile{}, fmt.Errorf("preferences for session %q: %w", sessionID, surf.ErrNotFound)
	}
	if err != nil {
		return surf.PreferenceProfile{}, fmt.Errorf("querying preferences: %w", err)
	}

	p.SkillLevel = surf.Level(skill)
	if lat.Valid && lng.Valid {
		p.Home = &geo.Coordinate{Lat: lat.Float64, Lng: lng.Float64}
	}
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return p, nil
}

// ForecastCache returns the SQLite-backed forecast cache view of the store.
func (s *SQLiteStore) ForecastCache() *SQLiteForecastCache {
	return &SQLiteForecastCache{store: s}
}

// SQLiteForecastCache implements surf.ForecastCache on the forecast_cache table.
// Every row carries its cached_at; a location's live rows share the cached_at
// of the fetch that created them.
type SQLiteForecastCache struct {
	store *SQLiteStore
}

func (c *SQLiteForecastCache) cutoff() int64 {
	return c.store.now().Add(-c.store.freshness).UnixMilli()
}

// Get returns the live rows for locationID ordered by forecast time, then by
// insertion order.
func (c *SQLiteForecastCache) Get(ctx context.Context, locationID int64) (surf.ForecastSeries, bool, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT source, forecast_time, wave_height, wave_period, wind_speed, wind_direction
		FROM forecast_cache
		WHERE spot_id = ? AND cached_at > ?
		ORDER BY forecast_time, rowid`, locationID, c.cutoff())
	if err != nil {
		return nil, false, fmt.Errorf("querying forecast cache: %w", err)
	}
	defer rows.Close()

	series := surf.ForecastSeries{}
	for rows.Next() {
		var (
			sm surf.ConditionSample
			ts int64
		)
		if err := rows.Scan(&sm.Source, &ts, &sm.WaveHeight, &sm.WavePeriod, &sm.WindSpeed, &sm.WindDirection); err != nil {
			return nil, false, fmt.Errorf("scanning forecast row: %w", err)
		}
		sm.Time = time.UnixMilli(ts).UTC()
		series = append(series, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(series) == 0 {
		return nil, false, nil
	}
	return series, true, nil
}

// Put drops expired rows for locationID and inserts the new samples,
// ignoring those already stored.
func (c *SQLiteForecastCache) Put(ctx context.Context, locationID int64, series surf.ForecastSeries) error {
	if len(series) == 0 {
		return nil
	}

	cutoff := c.cutoff()
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM forecast_cache WHERE spot_id = ? AND cached_at <= ?`, locationID, cutoff); err != nil {
		return fmt.Errorf("expiring forecast rows: %w", err)
	}

	fetchedAt := c.store.now().UnixMilli()
	var live sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MIN(cached_at) FROM forecast_cache WHERE spot_id = ?`, locationID).Scan(&live); err != nil {
		return fmt.Errorf("reading cache age: %w", err)
	}
	if live.Valid {
		fetchedAt = live.Int64
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecast_cache
			(spot_id, source, forecast_time, wave_height, wave_period, wind_speed, wind_direction, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing cache insert: %w", err)
	}
	defer stmt.Close()

	for _, sm := range series {
		if _, err := stmt.ExecContext(ctx, locationID, sm.Source, sm.Time.UTC().UnixMilli(),
			sm.WaveHeight, sm.WavePeriod, sm.WindSpeed, sm.WindDirection, fetchedAt); err != nil {
			return fmt.Errorf("caching forecast row: %w", err)
		}
	}

	return tx.Commit()
}
