// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package evaluate

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// WriteTable prints the results as a Markdown table.
func (r *Report) WriteTable(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Sampled %d users, %d with a rating >= %.1f.\n\n",
		r.SampledUsers, r.UsersWithRelevant, r.RelevanceThreshold); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "| Model | Precision@%d | Coverage | Avg Rank Score | Users |\n", r.K); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|:--|--:|--:|--:|--:|"); err != nil {
		return err
	}
	for _, res := range r.Results {
		if _, err := fmt.Fprintf(w, "| %s | %.4f | %.4f | %.4f | %d |\n",
			res.Model, res.PrecisionAtK, res.Coverage, res.AvgRankScore, res.Evaluated); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the report as indented JSON to path.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
