// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/theaxiomverse/hydra/internal/types"
)

// SaveEngineParameters saves a new version of engine parameters. Fixed-point
// values travel as decimal strings so NUMERIC(78, 0) round-trips exactly.
func SaveEngineParameters(params types.EngineParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
        INSERT INTO engine_parameters (
            version, config_name, is_active, activated_at, created_at,
            exp_taylor_terms, swap_fee_bps, max_price_ratio, min_liquidity,
            min_dwell_cycles, score_deadband
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9,
            $10, $11
        ) RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.ExpTaylorTerms, params.SwapFeeBps, params.MaxPriceRatio.String(), params.MinLiquidity.String(),
		params.MinDwellCycles, params.ScoreDeadband,
	).Scan(&paramsID)

	if err != nil {
		return 0, fmt.Errorf("failed to insert engine parameters: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", paramsID).
		Bool("active", makeActive).
		Msg("Saved engine parameters")
	return paramsID, nil
}

// LoadActiveEngineParameters loads the currently active engine parameters.
func LoadActiveEngineParameters(configName string) (*types.EngineParameters, error) {
	query := `
        SELECT
            exp_taylor_terms, swap_fee_bps, max_price_ratio, min_liquidity,
            min_dwell_cycles, score_deadband
        FROM engine_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`
	return loadEngineParameters(query, configName, "active")
}

// LoadLatestEngineParameters loads the most recently activated engine
// parameters for a given config name, active or not.
func LoadLatestEngineParameters(configName string) (*types.EngineParameters, error) {
	query := `
        SELECT
            exp_taylor_terms, swap_fee_bps, max_price_ratio, min_liquidity,
            min_dwell_cycles, score_deadband
        FROM engine_parameters
        WHERE config_name = $1
        ORDER BY activated_at DESC, created_at DESC
        LIMIT 1;`
	return loadEngineParameters(query, configName, "latest")
}

func loadEngineParameters(query, configName, kind string) (*types.EngineParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	p := &types.EngineParameters{}
	var maxPriceRatio, minLiquidity string
	row := DB.QueryRow(query, configName)
	err := row.Scan(
		&p.ExpTaylorTerms, &p.SwapFeeBps, &maxPriceRatio, &minLiquidity,
		&p.MinDwellCycles, &p.ScoreDeadband,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no %s engine parameters found for config '%s'", kind, configName)
		}
		return nil, fmt.Errorf("failed to scan %s engine parameters for config '%s': %w", kind, configName, err)
	}

	var ok bool
	p.MaxPriceRatio, ok = sdkmath.NewIntFromString(maxPriceRatio)
	if !ok {
		return nil, fmt.Errorf("corrupt max_price_ratio %q for config '%s'", maxPriceRatio, configName)
	}
	p.MinLiquidity, ok = sdkmath.NewIntFromString(minLiquidity)
	if !ok {
		return nil, fmt.Errorf("corrupt min_liquidity %q for config '%s'", minLiquidity, configName)
	}

	log.Info().Str("config", configName).Str("kind", kind).Msg("Loaded engine parameters")
	return p, nil
}

// GetActiveEngineParametersID returns the params_id of the currently active
// engine parameters, or nil if none are active.
func GetActiveEngineParametersID(configName string) (*int64, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
        SELECT params_id
        FROM engine_parameters
        WHERE config_name = $1 AND is_active = TRUE
        ORDER BY activated_at DESC
        LIMIT 1;`

	var paramsID int64
	row := DB.QueryRow(query, configName)
	err := row.Scan(&paramsID)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug().Str("config", configName).Msg("No active engine parameters found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active engine parameters ID for config '%s': %w", configName, err)
	}

	log.Debug().
		Str("config", configName).
		Int64("params_id", paramsID).
		Msg("Retrieved active engine parameters ID")

	return &paramsID, nil
}
