// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/theaxiomverse/hydra/internal/types"
)

// PoolSnapshot is one persisted observation of a pool at the end of a cycle.
type PoolSnapshot struct {
	CycleNumber    int
	Timestamp      time.Time
	Pair           types.PairID
	ReserveX       sdkmath.Int
	ReserveY       sdkmath.Int
	TotalShares    sdkmath.Int
	ActivePreset   types.CurvePreset
	ActiveConfig   types.CurveConfig
	CompositeScore int
}

// SavePoolSnapshot persists one pool snapshot. The active config is stored
// as JSONB so historical curve shapes survive preset changes.
func SavePoolSnapshot(snapshot PoolSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	configJSON, err := json.Marshal(snapshot.ActiveConfig)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal active_config: %w", err)
	}

	query := `
		INSERT INTO pool_snapshots (
			cycle_number, snapshot_timestamp, pair,
			reserve_x, reserve_y, total_shares,
			active_preset, active_config, composite_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.CycleNumber, snapshot.Timestamp, string(snapshot.Pair),
		snapshot.ReserveX.String(), snapshot.ReserveY.String(), snapshot.TotalShares.String(),
		string(snapshot.ActivePreset), configJSON, snapshot.CompositeScore,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save pool snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Int("cycle_number", snapshot.CycleNumber).
		Str("pair", string(snapshot.Pair)).
		Msg("Pool snapshot saved to database")

	return snapshotID, nil
}

// LoadLatestPoolSnapshot returns the most recent snapshot for a pair, or nil
// if the pair has never been snapshotted.
func LoadLatestPoolSnapshot(pair types.PairID) (*PoolSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT cycle_number, snapshot_timestamp, pair,
		       reserve_x, reserve_y, total_shares,
		       active_preset, active_config, composite_score
		FROM pool_snapshots
		WHERE pair = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT 1;`

	var (
		snap                            PoolSnapshot
		pairStr, presetStr              string
		reserveX, reserveY, totalShares string
		configJSON                      []byte
	)
	err := DB.QueryRow(query, string(pair)).Scan(
		&snap.CycleNumber, &snap.Timestamp, &pairStr,
		&reserveX, &reserveY, &totalShares,
		&presetStr, &configJSON, &snap.CompositeScore,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load latest snapshot for pair '%s': %w", pair, err)
	}

	snap.Pair = types.PairID(pairStr)
	snap.ActivePreset = types.CurvePreset(presetStr)
	if err := json.Unmarshal(configJSON, &snap.ActiveConfig); err != nil {
		return nil, fmt.Errorf("corrupt active_config for pair '%s': %w", pair, err)
	}

	var ok bool
	if snap.ReserveX, ok = sdkmath.NewIntFromString(reserveX); !ok {
		return nil, fmt.Errorf("corrupt reserve_x %q for pair '%s'", reserveX, pair)
	}
	if snap.ReserveY, ok = sdkmath.NewIntFromString(reserveY); !ok {
		return nil, fmt.Errorf("corrupt reserve_y %q for pair '%s'", reserveY, pair)
	}
	if snap.TotalShares, ok = sdkmath.NewIntFromString(totalShares); !ok {
		return nil, fmt.Errorf("corrupt total_shares %q for pair '%s'", totalShares, pair)
	}

	return &snap, nil
}

// SavePairMetrics persists one telemetry observation for a pair.
func SavePairMetrics(cycleNumber int, pair types.PairID, metrics types.MarketMetrics) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO pair_metrics (
			cycle_number, pair, market_cap_usd, volume_24h_usd, holder_count, age_seconds
		) VALUES ($1, $2, $3, $4, $5, $6);`

	_, err := DB.Exec(
		query,
		cycleNumber, string(pair),
		metrics.MarketCapUSD.String(), metrics.Volume24hUSD.String(),
		metrics.HolderCount, metrics.AgeSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to save pair metrics for '%s': %w", pair, err)
	}

	log.Debug().
		Str("pair", string(pair)).
		Int("cycle_number", cycleNumber).
		Msg("Pair metrics saved to database")
	return nil
}
