package persist

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/horizonengine/harness/internal/telemetry"
)

// RunRow is one recorded example run.
type RunRow struct {
	ID            uuid.UUID
	Example       string
	StartedAt     time.Time
	EndedAt       time.Time
	ExitCode      int
	Frames        uint64
	SkippedFrames uint64
	Resizes       uint64
	AvgFrameMS    float64
	ConfigHash    string
}

// NewRunRow builds a row from a telemetry summary.
func NewRunRow(example string, started, ended time.Time, exitCode int, s telemetry.Summary, configHash string) RunRow {
	var avg float64
	if s.Frames > 0 {
		avg = s.FrameSeconds / float64(s.Frames) * 1000
	}
	return RunRow{
		ID:            uuid.New(),
		Example:       example,
		StartedAt:     started,
		EndedAt:       ended,
		ExitCode:      exitCode,
		Frames:        s.Frames,
		SkippedFrames: s.SkippedFrames,
		Resizes:       s.Resizes,
		AvgFrameMS:    avg,
		ConfigHash:    configHash,
	}
}

// ConfigHash fingerprints raw config bytes with BLAKE2b-256.
func ConfigHash(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) Insert(ctx context.Context, row RunRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO runs (id, example, started_at, ended_at, exit_code, frames,
		                   skipped_frames, resizes, avg_frame_ms, config_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.ID, row.Example, row.StartedAt, row.EndedAt, row.ExitCode,
		int64(row.Frames), int64(row.SkippedFrames), int64(row.Resizes),
		row.AvgFrameMS, row.ConfigHash,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", row.ID, err)
	}
	return nil
}

// Recent returns the latest runs of an example, newest first.
func (r *RunRepo) Recent(ctx context.Context, example string, limit int) ([]RunRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, example, started_at, ended_at, exit_code, frames,
		        skipped_frames, resizes, avg_frame_ms, config_hash
		 FROM runs WHERE example = $1
		 ORDER BY started_at DESC LIMIT $2`,
		example, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var row RunRow
		var frames, skipped, resizes int64
		if err := rows.Scan(&row.ID, &row.Example, &row.StartedAt, &row.EndedAt, &row.ExitCode,
			&frames, &skipped, &resizes, &row.AvgFrameMS, &row.ConfigHash); err != nil {
			return nil, err
		}
		row.Frames, row.SkippedFrames, row.Resizes = uint64(frames), uint64(skipped), uint64(resizes)
		out = append(out, row)
	}
	return out, rows.Err()
}
