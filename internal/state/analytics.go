package state

import (
	"database/sql"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/theaxiomverse/hydra/internal/types"
)

// PairSummary represents high-level quoting statistics for one pair
type PairSummary struct {
	Pair           string `json:"pair"`
	QuoteCount     int    `json:"quote_count"`
	TotalVolumeIn  string `json:"total_volume_in"`  // fixed-point 10^18, decimal string
	TotalFees      string `json:"total_fees"`       // fixed-point 10^18, decimal string
	AvgPriceImpact string `json:"avg_price_impact"` // basis points
	LastQuotedAt   string `json:"last_quoted_at"`
	SnapshotCount  int    `json:"snapshot_count"`
	LastSnapshotAt string `json:"last_snapshot_at"`
}

// SaveQuote persists a swap quote for later analytics.
func SaveQuote(quote types.SwapQuote) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `
		INSERT INTO quote_history (
			quote_id, quoted_at, pair, token_in,
			amount_in, amount_out, fee_amount, price_impact_bps
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := DB.Exec(
		query,
		quote.QuoteID, quote.QuotedAt, string(quote.Pair), quote.TokenIn,
		quote.AmountIn.String(), quote.AmountOut.String(),
		quote.FeeAmount.String(), quote.PriceImpactBps.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save quote %s: %w", quote.QuoteID, err)
	}

	log.Debug().Str("quote_id", quote.QuoteID).Str("pair", string(quote.Pair)).Msg("Quote saved")
	return nil
}

// GetRecentQuotes retrieves recent quotes for a pair with a bounded limit.
func GetRecentQuotes(pair types.PairID, limit int) ([]types.SwapQuote, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `
		SELECT quote_id, quoted_at, pair, token_in,
		       amount_in, amount_out, fee_amount, price_impact_bps
		FROM quote_history
		WHERE pair = $1
		ORDER BY quoted_at DESC
		LIMIT $2;`

	rows, err := DB.Query(query, string(pair), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent quotes")
		return nil, fmt.Errorf("failed to query recent quotes: %w", err)
	}
	defer rows.Close()

	var quotes []types.SwapQuote
	for rows.Next() {
		var (
			q                                      types.SwapQuote
			pairStr                                string
			amountIn, amountOut, feeAmount, impact string
		)
		err := rows.Scan(
			&q.QuoteID, &q.QuotedAt, &pairStr, &q.TokenIn,
			&amountIn, &amountOut, &feeAmount, &impact,
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan quote row")
			continue // Skip this row and continue with others
		}

		q.Pair = types.PairID(pairStr)
		ok := true
		var parsed [4]sdkmath.Int
		for i, raw := range []string{amountIn, amountOut, feeAmount, impact} {
			if parsed[i], ok = sdkmath.NewIntFromString(raw); !ok {
				break
			}
		}
		if !ok {
			log.Error().Str("quote_id", q.QuoteID).Msg("Corrupt numeric field in quote row")
			continue
		}
		q.AmountIn, q.AmountOut, q.FeeAmount, q.PriceImpactBps = parsed[0], parsed[1], parsed[2], parsed[3]

		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during row iteration")
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Info().Int("count", len(quotes)).Int("limit", limit).Msg("Retrieved recent quotes")
	return quotes, nil
}

// GetPairSummary retrieves aggregated quoting statistics for one pair.
func GetPairSummary(pair types.PairID) (*PairSummary, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	summary := &PairSummary{Pair: string(pair)}

	query := `
		SELECT
			COUNT(*) as quote_count,
			COALESCE(SUM(amount_in), 0) as total_volume_in,
			COALESCE(SUM(fee_amount), 0) as total_fees,
			COALESCE(AVG(price_impact_bps), 0)::NUMERIC(78, 0) as avg_price_impact,
			COALESCE(MAX(quoted_at)::TEXT, '') as last_quoted_at
		FROM quote_history
		WHERE pair = $1;`

	err := DB.QueryRow(query, string(pair)).Scan(
		&summary.QuoteCount,
		&summary.TotalVolumeIn,
		&summary.TotalFees,
		&summary.AvgPriceImpact,
		&summary.LastQuotedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote summary for pair '%s': %w", pair, err)
	}

	var lastSnapshot sql.NullString
	err = DB.QueryRow(
		`SELECT COUNT(*), MAX(snapshot_timestamp)::TEXT FROM pool_snapshots WHERE pair = $1;`,
		string(pair),
	).Scan(&summary.SnapshotCount, &lastSnapshot)
	if err != nil {
		log.Error().Err(err).Str("pair", string(pair)).Msg("Failed to get snapshot count")
	}
	if lastSnapshot.Valid {
		summary.LastSnapshotAt = lastSnapshot.String
	}

	log.Info().
		Str("pair", string(pair)).
		Int("quoteCount", summary.QuoteCount).
		Msg("Retrieved pair summary")
	return summary, nil
}
