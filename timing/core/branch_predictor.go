package core

// BranchPredictorStats holds statistics for the branch predictor.
type BranchPredictorStats struct {
	// Predictions is the total number of conditional branches predicted.
	Predictions uint64
	// Correct is the number of correct predictions.
	Correct uint64
	// Mispredictions is the number of incorrect predictions.
	Mispredictions uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s BranchPredictorStats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BranchPredictor is a bimodal predictor: one 2-bit saturating counter per
// entry, indexed by the word address of the branch.
// States: 0=Strongly Not Taken, 1=Weakly Not Taken,
// 2=Weakly Taken, 3=Strongly Taken.
//
// Targets are encoded in the branch word, so no target buffer is modelled.
type BranchPredictor struct {
	bht     []uint8
	bhtSize uint32
	stats   BranchPredictorStats
}

// NewBranchPredictor creates a predictor with bhtSize counters. bhtSize
// must be a power of 2; 0 selects 64.
func NewBranchPredictor(bhtSize uint32) *BranchPredictor {
	if bhtSize == 0 {
		bhtSize = 64
	}

	bp := &BranchPredictor{
		bht:     make([]uint8, bhtSize),
		bhtSize: bhtSize,
	}
	bp.Reset()

	return bp
}

func (bp *BranchPredictor) bhtIndex(pc uint16) uint32 {
	return uint32(pc>>1) & (bp.bhtSize - 1)
}

// Predict returns whether the branch at pc is predicted taken.
func (bp *BranchPredictor) Predict(pc uint16) bool {
	return bp.bht[bp.bhtIndex(pc)] >= 2
}

// Update records the actual outcome of the branch at pc and reports whether
// the prediction made before the update was correct.
func (bp *BranchPredictor) Update(pc uint16, taken bool) bool {
	idx := bp.bhtIndex(pc)
	counter := bp.bht[idx]

	bp.stats.Predictions++
	correct := (counter >= 2) == taken
	if correct {
		bp.stats.Correct++
	} else {
		bp.stats.Mispredictions++
	}

	if taken {
		if counter < 3 {
			bp.bht[idx] = counter + 1
		}
	} else if counter > 0 {
		bp.bht[idx] = counter - 1
	}

	return correct
}

// Stats returns the branch predictor statistics.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset sets every counter to weakly taken and clears statistics.
func (bp *BranchPredictor) Reset() {
	for i := range bp.bht {
		bp.bht[i] = 2
	}
	bp.stats = BranchPredictorStats{}
}
