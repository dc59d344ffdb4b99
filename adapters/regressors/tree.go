package regressors

import (
	"math"
)

// regressionTree is a CART-style regression tree shared by the forest and
// boosting families. Splits minimize the sum of squared errors; every
// accepted split's SSE reduction accrues to the splitting feature in the
// gains slice the caller provides.
type regressionTree struct {
	feature   int
	threshold float64
	value     float64
	left      *regressionTree
	right     *regressionTree
}

func (t *regressionTree) isLeaf() bool {
	return t.left == nil && t.right == nil
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t
	for !node.isLeaf() {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// buildTree grows a tree over the given row indices. gains must have one
// slot per feature and accumulates impurity reduction across the whole tree.
func buildTree(x [][]float64, y []float64, rows []int, depth, maxDepth, minLeaf int, gains []float64) *regressionTree {
	node := &regressionTree{value: meanOf(y, rows)}

	if depth >= maxDepth || len(rows) < 2*minLeaf {
		return node
	}

	feature, threshold, gain, ok := bestSplit(x, y, rows, minLeaf)
	if !ok || gain <= 0 {
		return node
	}

	var leftRows, rightRows []int
	for _, r := range rows {
		if x[r][feature] <= threshold {
			leftRows = append(leftRows, r)
		} else {
			rightRows = append(rightRows, r)
		}
	}
	if len(leftRows) < minLeaf || len(rightRows) < minLeaf {
		return node
	}

	gains[feature] += gain
	node.feature = feature
	node.threshold = threshold
	node.left = buildTree(x, y, leftRows, depth+1, maxDepth, minLeaf, gains)
	node.right = buildTree(x, y, rightRows, depth+1, maxDepth, minLeaf, gains)
	return node
}

// bestSplit scans every feature for the threshold with the largest SSE
// reduction. Uses running sums so each feature scan is a single pass over
// sorted values.
func bestSplit(x [][]float64, y []float64, rows []int, minLeaf int) (feature int, threshold float64, gain float64, ok bool) {
	n := len(rows)
	if n < 2*minLeaf {
		return 0, 0, 0, false
	}

	totalSum, totalSq := 0.0, 0.0
	for _, r := range rows {
		totalSum += y[r]
		totalSq += y[r] * y[r]
	}
	parentSSE := totalSq - totalSum*totalSum/float64(n)

	bestGain := 0.0
	found := false

	numFeatures := len(x[rows[0]])
	sorted := make([]int, n)
	for f := 0; f < numFeatures; f++ {
		copy(sorted, rows)
		sortRowsByFeature(x, sorted, f)

		leftSum, leftSq := 0.0, 0.0
		for i := 0; i < n-1; i++ {
			r := sorted[i]
			leftSum += y[r]
			leftSq += y[r] * y[r]

			// Cannot split between equal values
			if x[sorted[i]][f] == x[sorted[i+1]][f] {
				continue
			}
			leftN := i + 1
			rightN := n - leftN
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			leftSSE := leftSq - leftSum*leftSum/float64(leftN)
			rightSSE := rightSq - rightSum*rightSum/float64(rightN)

			g := parentSSE - leftSSE - rightSSE
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (x[sorted[i]][f] + x[sorted[i+1]][f]) / 2
				found = true
			}
		}
	}

	if !found || math.IsNaN(bestGain) {
		return 0, 0, 0, false
	}
	return feature, threshold, bestGain, true
}

// sortRowsByFeature shell-sorts the row index slice in place by feature value
func sortRowsByFeature(x [][]float64, rows []int, f int) {
	n := len(rows)
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			r := rows[i]
			v := x[r][f]
			j := i
			for ; j >= gap && x[rows[j-gap]][f] > v; j -= gap {
				rows[j] = rows[j-gap]
			}
			rows[j] = r
		}
	}
}

func meanOf(y []float64, rows []int) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range rows {
		sum += y[r]
	}
	return sum / float64(len(rows))
}
