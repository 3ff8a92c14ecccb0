// Package store persists build artifacts (edge table, node table,
// supertable) in an embedded sqlite database, keyed by run id.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gridline-labs/roadrisk-cli/internal/model"
)

// SQLiteStore implements artifact persistence using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS edges (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	edge_id        INTEGER NOT NULL,
	start_lon      REAL NOT NULL,
	start_lat      REAL NOT NULL,
	end_lon        REAL NOT NULL,
	end_lat        REAL NOT NULL,
	mid_lon        REAL NOT NULL,
	mid_lat        REAL NOT NULL,
	length_m       REAL NOT NULL,
	cluster_id     TEXT NOT NULL,
	lat_sin        REAL NOT NULL,
	lat_cos        REAL NOT NULL,
	lon_sin        REAL NOT NULL,
	lon_cos        REAL NOT NULL,
	road_type      INTEGER NOT NULL,
	speedlimit     REAL,
	traffic_volume REAL NOT NULL,
	risk_score     REAL,
	PRIMARY KEY (run_id, edge_id)
);

CREATE TABLE IF NOT EXISTS nodes (
	run_id  TEXT NOT NULL REFERENCES runs(id),
	node_id INTEGER NOT NULL,
	x       REAL NOT NULL,
	y       REAL NOT NULL,
	lon     REAL NOT NULL,
	lat     REAL NOT NULL,
	edges   TEXT NOT NULL,
	PRIMARY KEY (run_id, node_id)
);

CREATE TABLE IF NOT EXISTS supertable (
	run_id         TEXT NOT NULL REFERENCES runs(id),
	bin            TEXT NOT NULL,
	cluster_id     TEXT NOT NULL,
	lat_sin        REAL NOT NULL,
	lat_cos        REAL NOT NULL,
	lon_sin        REAL NOT NULL,
	lon_cos        REAL NOT NULL,
	temperature    REAL NOT NULL,
	precipitation  REAL NOT NULL,
	rain           REAL NOT NULL,
	cloudcover     REAL NOT NULL,
	windspeed      REAL NOT NULL,
	traffic_volume REAL NOT NULL,
	label          INTEGER NOT NULL,
	PRIMARY KEY (run_id, bin, cluster_id)
);

CREATE INDEX IF NOT EXISTS idx_edges_cluster ON edges(run_id, cluster_id);
CREATE INDEX IF NOT EXISTS idx_supertable_bin ON supertable(run_id, bin);
`

// Migrate applies the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordRun registers a run id before its artifact rows are inserted.
func (s *SQLiteStore) RecordRun(ctx context.Context, runID, kind string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, created_at) VALUES (?, ?, ?)`,
		runID, kind, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", runID)
}

// InsertEdgeRows writes the edge table in one transaction.
func (s *SQLiteStore) InsertEdgeRows(ctx context.Context, runID string, rows []model.EdgeTableRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin edges tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO edges (
		run_id, edge_id, start_lon, start_lat, end_lon, end_lat, mid_lon, mid_lat,
		length_m, cluster_id, lat_sin, lat_cos, lon_sin, lon_cos,
		road_type, speedlimit, traffic_volume, risk_score
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare edges insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			runID, r.EdgeID, r.StartLon, r.StartLat, r.EndLon, r.EndLat, r.MidLon, r.MidLat,
			r.LengthM, r.ClusterID, r.LatSin, r.LatCos, r.LonSin, r.LonCos,
			r.RoadType, nullable(r.SpeedLimit), r.TrafficVolume, nullable(r.RiskScore),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert edge %d", r.EdgeID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit edges")
}

// InsertNodes writes the node table in one transaction. Incident edge ids
// are stored comma-joined.
func (s *SQLiteStore) InsertNodes(ctx context.Context, runID string, nodes []model.Node) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin nodes tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (run_id, node_id, x, y, lon, lat, edges) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare nodes insert")
	}
	defer stmt.Close()

	for _, n := range nodes {
		if _, err := stmt.ExecContext(ctx, runID, n.ID, n.X, n.Y, n.Lon, n.Lat, joinInts(n.Edges)); err != nil {
			return eris.Wrapf(err, "sqlite: insert node %d", n.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit nodes")
}

// InsertSuperRows writes the supertable in one transaction. Bin timestamps
// are stored as RFC 3339 UTC strings.
func (s *SQLiteStore) InsertSuperRows(ctx context.Context, runID string, rows []model.SuperRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin supertable tx")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO supertable (
		run_id, bin, cluster_id, lat_sin, lat_cos, lon_sin, lon_cos,
		temperature, precipitation, rain, cloudcover, windspeed,
		traffic_volume, label
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare supertable insert")
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err := stmt.ExecContext(ctx,
			runID, r.Bin.UTC().Format(time.RFC3339), r.ClusterID,
			r.LatSin, r.LatCos, r.LonSin, r.LonCos,
			r.Weather[0], r.Weather[1], r.Weather[2], r.Weather[3], r.Weather[4],
			r.TrafficVolume, r.Label,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert supertable row %s/%s", r.Bin, r.ClusterID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit supertable")
}

// SuperRows reads a run's supertable back, ordered by bin then cluster id.
func (s *SQLiteStore) SuperRows(ctx context.Context, runID string) ([]model.SuperRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		bin, cluster_id, lat_sin, lat_cos, lon_sin, lon_cos,
		temperature, precipitation, rain, cloudcover, windspeed,
		traffic_volume, label
	FROM supertable WHERE run_id = ? ORDER BY bin, cluster_id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query supertable")
	}
	defer rows.Close()

	var out []model.SuperRow
	for rows.Next() {
		var r model.SuperRow
		var bin string
		if err := rows.Scan(
			&bin, &r.ClusterID, &r.LatSin, &r.LatCos, &r.LonSin, &r.LonCos,
			&r.Weather[0], &r.Weather[1], &r.Weather[2], &r.Weather[3], &r.Weather[4],
			&r.TrafficVolume, &r.Label,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan supertable row")
		}
		t, err := time.Parse(time.RFC3339, bin)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse bin %q", bin)
		}
		r.Bin = t
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate supertable")
}

// Nodes reads a run's node table back, ordered by id.
func (s *SQLiteStore) Nodes(ctx context.Context, runID string) ([]model.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_id, x, y, lon, lat, edges FROM nodes WHERE run_id = ? ORDER BY node_id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query nodes")
	}
	defer rows.Close()

	var out []model.Node
	for rows.Next() {
		var n model.Node
		var edges string
		if err := rows.Scan(&n.ID, &n.X, &n.Y, &n.Lon, &n.Lat, &edges); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan node row")
		}
		ids, err := splitInts(edges)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: node %d edges %q", n.ID, edges)
		}
		n.Edges = ids
		out = append(out, n)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate nodes")
}

// EdgeRows reads a run's edge table back, ordered by edge id.
func (s *SQLiteStore) EdgeRows(ctx context.Context, runID string) ([]model.EdgeTableRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		edge_id, start_lon, start_lat, end_lon, end_lat, mid_lon, mid_lat,
		length_m, cluster_id, lat_sin, lat_cos, lon_sin, lon_cos,
		road_type, speedlimit, traffic_volume, risk_score
	FROM edges WHERE run_id = ? ORDER BY edge_id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query edges")
	}
	defer rows.Close()

	var out []model.EdgeTableRow
	for rows.Next() {
		var r model.EdgeTableRow
		var speed, risk sql.NullFloat64
		if err := rows.Scan(
			&r.EdgeID, &r.StartLon, &r.StartLat, &r.EndLon, &r.EndLat, &r.MidLon, &r.MidLat,
			&r.LengthM, &r.ClusterID, &r.LatSin, &r.LatCos, &r.LonSin, &r.LonCos,
			&r.RoadType, &speed, &r.TrafficVolume, &risk,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan edge row")
		}
		if speed.Valid {
			r.SpeedLimit = &speed.Float64
		}
		if risk.Valid {
			r.RiskScore = &risk.Float64
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate edges")
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, len(parts))
	for i, p := range parts {
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
