package evaluation

import (
	"fmt"
	"math/rand"

	"github.com/gkum4/vital-signs-decision-tree/internal/models"
)

type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func (tts *TrainTestSplitter) validate(instances []models.Instance) error {
	if len(instances) == 0 {
		return fmt.Errorf("cannot split empty dataset")
	}
	if tts.testSize <= 0 || tts.testSize >= 1 {
		return fmt.Errorf("test size must be between 0 and 1")
	}
	return nil
}

func (tts *TrainTestSplitter) Split(instances []models.Instance) ([]models.Instance, []models.Instance, error) {
	if err := tts.validate(instances); err != nil {
		return nil, nil, err
	}

	n := len(instances)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if tts.shuffle {
		rng := rand.New(rand.NewSource(tts.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testCount := int(float64(n) * tts.testSize)
	trainCount := n - testCount

	return pick(instances, indices[:trainCount]), pick(instances, indices[trainCount:]), nil
}

// StratifiedSplit holds out testSize of every class separately, keeping at
// least one instance of each class in the test side. Classes are visited in
// canonical order so a fixed seed always gives the same split.
func (tts *TrainTestSplitter) StratifiedSplit(instances []models.Instance) ([]models.Instance, []models.Instance, error) {
	if err := tts.validate(instances); err != nil {
		return nil, nil, err
	}

	classIndices := make(map[models.SeverityClass][]int)
	for i, inst := range instances {
		classIndices[inst.Class] = append(classIndices[inst.Class], i)
	}

	var trainIndices, testIndices []int

	rng := rand.New(rand.NewSource(tts.randomSeed))
	for _, class := range models.Severities() {
		indices := classIndices[class]
		if len(indices) == 0 {
			continue
		}
		if tts.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		testCount := int(float64(len(indices)) * tts.testSize)
		if testCount == 0 {
			testCount = 1
		}
		trainCount := len(indices) - testCount

		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	if tts.shuffle {
		rng.Shuffle(len(trainIndices), func(i, j int) {
			trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
		})
		rng.Shuffle(len(testIndices), func(i, j int) {
			testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
		})
	}

	return pick(instances, trainIndices), pick(instances, testIndices), nil
}

func pick(instances []models.Instance, indices []int) []models.Instance {
	out := make([]models.Instance, len(indices))
	for i, idx := range indices {
		out[i] = instances[idx]
	}
	return out
}

// Unlabeled strips labels so a holdout set can go through the classifier.
func Unlabeled(instances []models.Instance) []models.UnlabeledInstance {
	out := make([]models.UnlabeledInstance, len(instances))
	for i, inst := range instances {
		out[i] = inst.Unlabeled()
	}
	return out
}
