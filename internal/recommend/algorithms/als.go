// Animerec - Hybrid Anime Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/animerec/internal/recommend"
)

// maxRating is the top of the rating scale used to scale confidence.
const maxRating = 10.0

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors is the dimension of the latent factor vectors.
	// Typical range: 32-128.
	NumFactors int

	// NumIterations is the number of ALS sweeps to run.
	// Typical range: 10-30.
	NumIterations int

	// Regularization is the L2 regularization parameter.
	// Typical range: 0.01-0.1.
	Regularization float64

	// Alpha scales the confidence transformation for ratings.
	// c = 1 + alpha * rating / 10.
	Alpha float64

	// NumWorkers is the number of parallel workers for training.
	// If <= 0, defaults to 4.
	NumWorkers int
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		NumFactors:     64,
		NumIterations:  15,
		Regularization: 0.01,
		Alpha:          40.0,
		NumWorkers:     4,
	}
}

// ALSConfigFrom converts engine configuration to training configuration.
func ALSConfigFrom(cfg recommend.ALSConfig, workers int) ALSConfig {
	return ALSConfig{
		NumFactors:     cfg.Factors,
		NumIterations:  cfg.Iterations,
		Regularization: cfg.Regularization,
		Alpha:          cfg.Alpha,
		NumWorkers:     workers,
	}
}

// ALS implements Alternating Least Squares for implicit feedback.
// Reference: "Collaborative Filtering for Implicit Feedback Datasets" (Hu, Koren, Volinsky, 2008)
//
// Every rating is treated as an observed preference p_ui = 1 with
// confidence c_ui = 1 + alpha * r_ui / 10. The objective minimizes:
//
//	sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
//
// The rated items of each user are kept as the interaction matrix so
// Recommend never returns something the user already rated.
type ALS struct {
	modelState
	config ALSConfig

	// X is the user factor matrix (numUsers x numFactors)
	X [][]float64

	// Y is the item factor matrix (numItems x numFactors)
	Y [][]float64

	// userIndex maps user ID to matrix row
	userIndex map[int]int

	// itemIndex maps item ID to matrix row
	itemIndex map[int]int

	// indexToUser maps matrix row to user ID
	indexToUser []int

	// indexToItem maps matrix row to item ID
	indexToItem []int

	// seen holds the sorted item rows each user interacted with.
	seen [][]int
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	if cfg.NumFactors <= 0 {
		cfg.NumFactors = 64
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = 15
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = 0.01
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = 40.0
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}

	return &ALS{
		modelState: modelState{name: "als"},
		config:     cfg,
		userIndex:  make(map[int]int),
		itemIndex:  make(map[int]int),
	}
}

// Train fits the model on explicit ratings. User and item rows are
// assigned in ascending ID order so the same ratings always produce the
// same factors.
//
//nolint:gocyclo // ML training algorithms are inherently complex
func (a *ALS) Train(ctx context.Context, ratings []recommend.Rating) error {
	a.lockFit()
	defer a.unlockFit()

	if canceled(ctx) {
		return ctx.Err()
	}

	a.buildIndices(ratings)

	numUsers := len(a.indexToUser)
	numItems := len(a.indexToItem)
	numFactors := a.config.NumFactors

	if numUsers == 0 || numItems == 0 {
		a.X, a.Y, a.seen = nil, nil, nil
		a.markTrained()
		return nil
	}

	// Sparse confidence matrix C[u][i]; duplicates keep the max.
	confidence := make([]map[int]float64, numUsers)
	for _, r := range ratings {
		ui := a.userIndex[r.UserID]
		ii := a.itemIndex[r.ItemID]
		if confidence[ui] == nil {
			confidence[ui] = make(map[int]float64)
		}
		conf := 1.0 + a.config.Alpha*r.Value/maxRating
		if conf > confidence[ui][ii] {
			confidence[ui][ii] = conf
		}
	}

	// Both sides are kept in ascending row order so every solve sums its
	// terms in the same order on every run.
	userItems := make([][]weightedRow, numUsers)
	itemUsers := make([][]weightedRow, numItems)
	a.seen = make([][]int, numUsers)
	for ui, itemMap := range confidence {
		rows := make([]int, 0, len(itemMap))
		for ii := range itemMap {
			rows = append(rows, ii)
		}
		sort.Ints(rows)
		a.seen[ui] = rows

		userItems[ui] = make([]weightedRow, len(rows))
		for k, ii := range rows {
			userItems[ui][k] = weightedRow{row: ii, c: itemMap[ii]}
			itemUsers[ii] = append(itemUsers[ii], weightedRow{row: ui, c: itemMap[ii]})
		}
	}

	if canceled(ctx) {
		return ctx.Err()
	}

	// Deterministic small initialization.
	a.X = make([][]float64, numUsers)
	for u := 0; u < numUsers; u++ {
		a.X[u] = make([]float64, numFactors)
		for f := 0; f < numFactors; f++ {
			a.X[u][f] = 0.1 * (float64((u*numFactors+f)%1000)/1000.0 - 0.5)
		}
	}

	a.Y = make([][]float64, numItems)
	for i := 0; i < numItems; i++ {
		a.Y[i] = make([]float64, numFactors)
		for f := 0; f < numFactors; f++ {
			a.Y[i][f] = 0.1 * (float64((i*numFactors+f)%1000)/1000.0 - 0.5)
		}
	}

	lambda := a.config.Regularization

	for iter := 0; iter < a.config.NumIterations; iter++ {
		if canceled(ctx) {
			return ctx.Err()
		}

		// Fix Y, solve for X.
		a.solveSide(a.X, a.Y, userItems, lambda)

		if canceled(ctx) {
			return ctx.Err()
		}

		// Fix X, solve for Y.
		a.solveSide(a.Y, a.X, itemUsers, lambda)
	}

	a.markTrained()
	return nil
}

// buildIndices assigns rows to users and items in ascending ID order.
func (a *ALS) buildIndices(ratings []recommend.Rating) {
	users := make(map[int]struct{})
	items := make(map[int]struct{})
	for _, r := range ratings {
		users[r.UserID] = struct{}{}
		items[r.ItemID] = struct{}{}
	}

	a.indexToUser = sortedKeys(users)
	a.indexToItem = sortedKeys(items)

	a.userIndex = make(map[int]int, len(a.indexToUser))
	for row, id := range a.indexToUser {
		a.userIndex[id] = row
	}
	a.itemIndex = make(map[int]int, len(a.indexToItem))
	for row, id := range a.indexToItem {
		a.itemIndex[id] = row
	}
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// weightedRow is one nonzero confidence, addressed by the row of the
// opposite factor matrix.
type weightedRow struct {
	row int
	c   float64
}

// solveSide recomputes every row of target with other held fixed.
// weights[row] lists the confidences of that row in ascending order.
//
//nolint:gocritic // matrix names follow linear algebra notation
func (a *ALS) solveSide(target, other [][]float64, weights [][]weightedRow, lambda float64) {
	numFactors := a.config.NumFactors

	// Precompute O'O
	OtO := make([][]float64, numFactors)
	for f := range OtO {
		OtO[f] = make([]float64, numFactors)
	}
	for _, vec := range other {
		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				OtO[f1][f2] += vec[f1] * vec[f2]
				if f1 != f2 {
					OtO[f2][f1] = OtO[f1][f2]
				}
			}
		}
	}

	numRows := len(target)
	var wg sync.WaitGroup
	chunkSize := (numRows + a.config.NumWorkers - 1) / a.config.NumWorkers

	for w := 0; w < a.config.NumWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > numRows {
			end = numRows
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(rStart, rEnd int) {
			defer wg.Done()

			for r := rStart; r < rEnd; r++ {
				target[r] = solveRow(other, weights[r], OtO, numFactors, lambda)
			}
		}(start, end)
	}

	wg.Wait()
}

// solveRow computes one factor vector:
//
//	A = O' * C * O + lambda * I
//	b = O' * C * p
//	x = A^(-1) * b
//
//nolint:gocritic // matrix names follow linear algebra notation
func solveRow(other [][]float64, conf []weightedRow, OtO [][]float64, numFactors int, lambda float64) []float64 {
	A := make([][]float64, numFactors)
	for f := range A {
		A[f] = make([]float64, numFactors)
		copy(A[f], OtO[f])
		A[f][f] += lambda
	}

	b := make([]float64, numFactors)
	for _, w := range conf {
		// A += (c - 1) * o * o'
		// b += c * o
		o, c := other[w.row], w.c
		cMinus1 := c - 1.0

		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				delta := cMinus1 * o[f1] * o[f2]
				A[f1][f2] += delta
				if f1 != f2 {
					A[f2][f1] += delta
				}
			}
			b[f1] += c * o[f1]
		}
	}

	return solveLinearSystem(A, b)
}

// solveLinearSystem solves A*x = b using Cholesky decomposition.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func solveLinearSystem(A [][]float64, b []float64) []float64 {
	n := len(b)

	// A = L * L'
	L := make([][]float64, n)
	for i := range L {
		L[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}

			if i == j {
				if sum <= 0 {
					sum = 1e-10
				}
				L[i][j] = math.Sqrt(sum)
			} else if L[j][j] != 0 {
				L[i][j] = sum / L[j][j]
			}
		}
	}

	// L * z = b
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		if L[i][i] != 0 {
			z[i] = sum / L[i][i]
		}
	}

	// L' * x = z
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		if L[i][i] != 0 {
			x[i] = sum / L[i][i]
		}
	}

	return x
}

// NumUsers returns the number of users with factors.
func (a *ALS) NumUsers() int {
	return len(a.indexToUser)
}

// NumItems returns the number of items with factors.
func (a *ALS) NumItems() int {
	return len(a.indexToItem)
}

// ItemIDs returns item IDs in row order.
func (a *ALS) ItemIDs() []int {
	out := make([]int, len(a.indexToItem))
	copy(out, a.indexToItem)
	return out
}

// Predict returns x_u' * y_i. Unknown users and items are reported with
// ErrUnknownUser and ErrUnknownCandidateItem.
func (a *ALS) Predict(userID, itemID int) (float64, error) {
	ui, ok := a.userIndex[userID]
	if !ok {
		return 0, recommend.NewError(recommend.KindUnknownUser, "als predict", fmt.Errorf("user %d", userID))
	}
	ii, ok := a.itemIndex[itemID]
	if !ok {
		return 0, recommend.NewError(recommend.KindUnknownCandidateItem, "als predict", fmt.Errorf("item %d", itemID))
	}
	return dot(a.X[ui], a.Y[ii]), nil
}

// Recommend returns up to n item IDs with the highest predicted affinity
// for the user, excluding items in the user's interaction row. Ties are
// broken by item row order.
func (a *ALS) Recommend(userID, n int) ([]int, []float64, error) {
	ui, ok := a.userIndex[userID]
	if !ok {
		return nil, nil, recommend.NewError(recommend.KindUnknownUser, "als recommend", fmt.Errorf("user %d", userID))
	}
	if n <= 0 {
		return []int{}, []float64{}, nil
	}
	if ui >= len(a.X) || ui >= len(a.seen) {
		return nil, nil, recommend.NewError(recommend.KindCorruptArtifact, "als recommend", fmt.Errorf("user row %d out of range", ui))
	}

	userVec := a.X[ui]
	seen := a.seen[ui]

	rows := make([]scoredRow, 0, len(a.Y))
	next := 0
	for ii, itemVec := range a.Y {
		// seen is sorted, so one pass skips every consumed row.
		if next < len(seen) && seen[next] == ii {
			next++
			continue
		}
		rows = append(rows, scoredRow{row: ii, score: dot(userVec, itemVec)})
	}

	top := topRows(rows, n)
	ids := make([]int, len(top))
	scores := make([]float64, len(top))
	for i, r := range top {
		ids[i] = a.indexToItem[r.row]
		scores[i] = r.score
	}
	return ids, scores, nil
}

// SeenItems returns the item IDs the user interacted with during training.
func (a *ALS) SeenItems(userID int) []int {
	ui, ok := a.userIndex[userID]
	if !ok || ui >= len(a.seen) {
		return nil
	}
	out := make([]int, len(a.seen[ui]))
	for i, row := range a.seen[ui] {
		out[i] = a.indexToItem[row]
	}
	return out
}

// userVector returns the user's factor row.
func (a *ALS) userVector(userID int) ([]float64, bool) {
	ui, ok := a.userIndex[userID]
	if !ok || ui >= len(a.X) {
		return nil, false
	}
	return a.X[ui], true
}

// itemVector returns the item's factor row.
func (a *ALS) itemVector(itemID int) ([]float64, bool) {
	ii, ok := a.itemIndex[itemID]
	if !ok || ii >= len(a.Y) {
		return nil, false
	}
	return a.Y[ii], true
}

// ALSState is the serializable form of a fitted model.
type ALSState struct {
	NumFactors int
	UserIDs    []int
	ItemIDs    []int
	X          [][]float64
	Y          [][]float64
	Seen       [][]int
	TrainedAt  time.Time
}

// State exports the fitted model for persistence.
func (a *ALS) State() ALSState {
	a.lockFit()
	defer a.unlockFit()

	return ALSState{
		NumFactors: a.config.NumFactors,
		UserIDs:    a.indexToUser,
		ItemIDs:    a.indexToItem,
		X:          a.X,
		Y:          a.Y,
		Seen:       a.seen,
		TrainedAt:  a.LastTrainedAt(),
	}
}

// NewALSFromState restores a fitted model. Inconsistent dimensions or
// duplicate IDs are reported as ErrCorruptArtifact.
//
//nolint:gocritic // hugeParam: state is consumed once at load
func NewALSFromState(state ALSState) (*ALS, error) {
	if err := state.validate(); err != nil {
		return nil, recommend.NewError(recommend.KindCorruptArtifact, "load als", err)
	}

	a := NewALS(ALSConfig{NumFactors: state.NumFactors})
	a.X = state.X
	a.Y = state.Y
	a.seen = state.Seen
	a.indexToUser = state.UserIDs
	a.indexToItem = state.ItemIDs

	a.userIndex = make(map[int]int, len(state.UserIDs))
	for row, id := range state.UserIDs {
		a.userIndex[id] = row
	}
	a.itemIndex = make(map[int]int, len(state.ItemIDs))
	for row, id := range state.ItemIDs {
		a.itemIndex[id] = row
	}

	a.markLoaded(state.TrainedAt)
	return a, nil
}

//nolint:gocritic // hugeParam: validated once at load
func (s ALSState) validate() error {
	if s.NumFactors <= 0 {
		return errors.New("non-positive factor count")
	}
	if len(s.X) != len(s.UserIDs) {
		return fmt.Errorf("user factors have %d rows for %d users", len(s.X), len(s.UserIDs))
	}
	if len(s.Y) != len(s.ItemIDs) {
		return fmt.Errorf("item factors have %d rows for %d items", len(s.Y), len(s.ItemIDs))
	}
	if len(s.Seen) != len(s.UserIDs) {
		return fmt.Errorf("interaction matrix has %d rows for %d users", len(s.Seen), len(s.UserIDs))
	}
	if err := uniqueIDs(s.UserIDs); err != nil {
		return fmt.Errorf("user ids: %w", err)
	}
	if err := uniqueIDs(s.ItemIDs); err != nil {
		return fmt.Errorf("item ids: %w", err)
	}
	for u, vec := range s.X {
		if len(vec) != s.NumFactors {
			return fmt.Errorf("user row %d has %d factors, want %d", u, len(vec), s.NumFactors)
		}
	}
	for i, vec := range s.Y {
		if len(vec) != s.NumFactors {
			return fmt.Errorf("item row %d has %d factors, want %d", i, len(vec), s.NumFactors)
		}
	}
	for u, rows := range s.Seen {
		for k, row := range rows {
			if row < 0 || row >= len(s.ItemIDs) {
				return fmt.Errorf("user row %d references item row %d", u, row)
			}
			if k > 0 && rows[k-1] >= row {
				return fmt.Errorf("user row %d interactions not strictly ascending", u)
			}
		}
	}
	return nil
}

func uniqueIDs(ids []int) error {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
