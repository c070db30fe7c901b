package models

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// rankingFixture separates perfectly on pressure quality, partially on
// pulse, and not at all on breathing.
func rankingFixture() []Instance {
	return []Instance{
		inst(1, 1, 1, 7, SeverityOne),
		inst(2, 2, 3, 7, SeverityOne),
		inst(3, 3, 2, 7, SeverityTwo),
		inst(4, 4, 4, 7, SeverityTwo),
	}
}

func TestBuildAllSameClass(t *testing.T) {
	instances := []Instance{
		inst(1, 0, 0, 0, SeverityOne),
		inst(2, 0, 0, 0, SeverityOne),
	}

	tree, err := Build(instances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaf, ok := tree.Root.(*Leaf)
	if !ok {
		t.Fatalf("expected a leaf root, got %T", tree.Root)
	}
	if leaf.Answer != SeverityOne {
		t.Fatalf("expected answer %s, got %s", SeverityOne, leaf.Answer)
	}
	if leaf.Incoming.Op != BranchNone {
		t.Fatalf("expected root to have no incoming branch, got %v", leaf.Incoming)
	}
}

func TestBuildEmpty(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, ErrEmptyTrainingSet) {
		t.Fatalf("expected ErrEmptyTrainingSet, got %v", err)
	}
}

func TestBuildRejectsClassAttribute(t *testing.T) {
	b := Builder{Attributes: []Attribute{Pulse, Class}}
	if _, err := b.Build(rankingFixture()); !errors.Is(err, ErrNotContinuous) {
		t.Fatalf("expected ErrNotContinuous, got %v", err)
	}
}

func TestGrowNoAttributesUsesMajority(t *testing.T) {
	instances := []Instance{
		inst(1, 0, 0, 0, SeverityOne),
		inst(2, 0, 0, 0, SeverityTwo),
		inst(3, 0, 0, 0, SeverityOne),
		inst(4, 0, 0, 0, SeverityOne),
	}

	node := Builder{}.grow(instances, nil, nil, Branch{})
	leaf, ok := node.(*Leaf)
	if !ok {
		t.Fatalf("expected a leaf, got %T", node)
	}
	if leaf.Answer != SeverityOne {
		t.Fatalf("expected majority %s, got %s", SeverityOne, leaf.Answer)
	}
}

func TestGrowEmptyUsesParentMajority(t *testing.T) {
	parent := []Instance{
		inst(1, 0, 0, 0, SeverityThree),
		inst(2, 0, 0, 0, SeverityFour),
		inst(3, 0, 0, 0, SeverityFour),
	}
	branch := Greater(decimal.NewFromInt(9))

	node := Builder{}.grow(nil, ContinuousAttributes(), parent, branch)
	leaf, ok := node.(*Leaf)
	if !ok {
		t.Fatalf("expected a leaf, got %T", node)
	}
	if leaf.Answer != SeverityFour {
		t.Fatalf("expected parent majority %s, got %s", SeverityFour, leaf.Answer)
	}
	if leaf.Incoming != branch {
		t.Fatalf("expected incoming branch %v, got %v", branch, leaf.Incoming)
	}
}

func TestMajorityTieFavoursCanonicalOrder(t *testing.T) {
	instances := []Instance{
		inst(1, 0, 0, 0, SeverityThree),
		inst(2, 0, 0, 0, SeverityTwo),
		inst(3, 0, 0, 0, SeverityThree),
		inst(4, 0, 0, 0, SeverityTwo),
	}
	if got := majority(instances); got != SeverityTwo {
		t.Fatalf("expected tie to resolve to %s, got %s", SeverityTwo, got)
	}
}

func TestBuildAscendingRanking(t *testing.T) {
	tree, err := Build(rankingFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root, ok := tree.Root.(*Internal)
	if !ok {
		t.Fatalf("expected internal root, got %T", tree.Root)
	}
	if root.Attribute != Breathing {
		t.Fatalf("expected smallest-gain attribute %s at root, got %s", Breathing, root.Attribute)
	}
	if !root.Threshold.IsZero() {
		t.Fatalf("expected zero threshold, got %s", root.Threshold)
	}

	left, ok := root.Left.(*Leaf)
	if !ok || left.Answer != SeverityOne {
		t.Fatalf("expected empty <= side to fall back to parent majority %s, got %#v", SeverityOne, root.Left)
	}

	right, ok := root.Right.(*Internal)
	if !ok {
		t.Fatalf("expected internal right child, got %T", root.Right)
	}
	if right.Attribute != Pulse || !right.Threshold.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected split on %s at 3, got %s at %s", Pulse, right.Attribute, right.Threshold)
	}

	if got := tree.Depth(); got != 3 {
		t.Fatalf("expected depth 3, got %d", got)
	}
	if got := tree.LeafCount(); got != 4 {
		t.Fatalf("expected 4 leaves, got %d", got)
	}
}

func TestBuildDescendingRanking(t *testing.T) {
	tree, err := Builder{Ranking: RankDescendingGain}.Build(rankingFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Tree{Root: &Internal{
		Attribute: PressureQuality,
		Threshold: decimal.NewFromFloat(2),
		Left:      &Leaf{Incoming: LessOrEqual(decimal.NewFromFloat(2)), Answer: SeverityOne},
		Right:     &Leaf{Incoming: Greater(decimal.NewFromFloat(2)), Answer: SeverityTwo},
	}}
	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("unexpected tree:\n got: %#v\nwant: %#v", tree.Root, want.Root)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	instances := []Instance{
		inst(1, 90, 60, 12, SeverityOne),
		inst(2, 85, 110, 22, SeverityThree),
		inst(3, 70, 75, 16, SeverityTwo),
		inst(4, 60, 130, 28, SeverityFour),
		inst(5, 88, 65, 14, SeverityOne),
		inst(6, 65, 120, 25, SeverityFour),
		inst(7, 72, 80, 18, SeverityTwo),
		inst(8, 72, 95, 21, SeverityThree),
	}

	for _, ranking := range []Ranking{RankAscendingGain, RankDescendingGain} {
		b := Builder{Ranking: ranking}
		first, err := b.Build(instances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := b.Build(instances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: expected identical trees from identical input", ranking)
		}
	}
}

func TestBuildChildBranchesMatchParent(t *testing.T) {
	instances := []Instance{
		inst(1, 90, 60, 12, SeverityOne),
		inst(2, 85, 110, 22, SeverityThree),
		inst(3, 70, 75, 16, SeverityTwo),
		inst(4, 60, 130, 28, SeverityFour),
		inst(5, 88, 65, 14, SeverityOne),
		inst(6, 65, 120, 25, SeverityFour),
	}

	for _, ranking := range []Ranking{RankAscendingGain, RankDescendingGain} {
		tree, err := Builder{Ranking: ranking}.Build(instances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, row := range tree.Levels() {
			for _, n := range row {
				in, ok := n.(*Internal)
				if !ok {
					continue
				}
				if got := in.Left.IncomingBranch(); got.Op != BranchLessOrEqual || !got.Threshold.Equal(in.Threshold) {
					t.Errorf("%s: left child of %s tagged %v", ranking, in.Attribute, got)
				}
				if got := in.Right.IncomingBranch(); got.Op != BranchGreater || !got.Threshold.Equal(in.Threshold) {
					t.Errorf("%s: right child of %s tagged %v", ranking, in.Attribute, got)
				}
			}
		}
	}
}

func TestBuildPartitionsExactly(t *testing.T) {
	instances := []Instance{
		inst(1, 90, 60, 12, SeverityOne),
		inst(2, 85, 110, 22, SeverityThree),
		inst(3, 70, 75, 16, SeverityTwo),
		inst(4, 60, 130, 28, SeverityFour),
		inst(5, 88, 65, 14, SeverityTwo),
		inst(6, 65, 120, 25, SeverityFour),
		inst(7, 70, 90, 16, SeverityThree),
		inst(8, 95, 60, 30, SeverityOne),
	}

	for _, ranking := range []Ranking{RankAscendingGain, RankDescendingGain} {
		tree, err := Builder{Ranking: ranking}.Build(instances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var walk func(n Node, subset []Instance)
		walk = func(n Node, subset []Instance) {
			in, ok := n.(*Internal)
			if !ok {
				return
			}

			var left, right []Instance
			for _, x := range subset {
				if x.Value(in.Attribute).LessThanOrEqual(in.Threshold) {
					left = append(left, x)
				} else {
					right = append(right, x)
				}
			}

			seen := make(map[int]int)
			for _, x := range left {
				seen[x.ID]++
			}
			for _, x := range right {
				if seen[x.ID] > 0 {
					t.Errorf("%s: id %d on both sides of %s <= %s", ranking, x.ID, in.Attribute, in.Threshold)
				}
				seen[x.ID]++
			}
			if len(left)+len(right) != len(subset) {
				t.Errorf("%s: split of %s lost instances: %d + %d != %d",
					ranking, in.Attribute, len(left), len(right), len(subset))
			}
			for _, x := range subset {
				if seen[x.ID] != 1 {
					t.Errorf("%s: id %d appears %d times after split on %s", ranking, x.ID, seen[x.ID], in.Attribute)
				}
			}

			walk(in.Left, left)
			walk(in.Right, right)
		}
		walk(tree.Root, instances)
	}
}

func TestBranchHolds(t *testing.T) {
	five := decimal.NewFromInt(5)
	cases := []struct {
		branch Branch
		value  int64
		want   bool
	}{
		{LessOrEqual(five), 5, true},
		{LessOrEqual(five), 6, false},
		{Greater(five), 5, false},
		{Greater(five), 6, true},
		{Branch{}, 5, false},
		{Branch{Op: BranchOp(9), Threshold: five}, 5, false},
	}
	for _, c := range cases {
		if got := c.branch.Holds(decimal.NewFromInt(c.value)); got != c.want {
			t.Errorf("expected %v.Holds(%d) = %v, got %v", c.branch.Op, c.value, c.want, got)
		}
	}
}

func TestBuildUsesEachAttributeOncePerPath(t *testing.T) {
	instances := []Instance{
		inst(1, 90, 60, 12, SeverityOne),
		inst(2, 85, 110, 22, SeverityThree),
		inst(3, 70, 75, 16, SeverityTwo),
		inst(4, 60, 130, 28, SeverityFour),
		inst(5, 88, 65, 14, SeverityTwo),
		inst(6, 65, 120, 25, SeverityFour),
	}

	tree, err := Build(instances)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var walk func(n Node, seen map[Attribute]bool)
	walk = func(n Node, seen map[Attribute]bool) {
		in, ok := n.(*Internal)
		if !ok {
			return
		}
		if seen[in.Attribute] {
			t.Fatalf("attribute %s reused on one path", in.Attribute)
		}
		next := map[Attribute]bool{in.Attribute: true}
		for a := range seen {
			next[a] = true
		}
		walk(in.Left, next)
		walk(in.Right, next)
	}
	walk(tree.Root, map[Attribute]bool{})

	if d := tree.Depth(); d > len(ContinuousAttributes()) {
		t.Fatalf("expected depth <= %d, got %d", len(ContinuousAttributes()), d)
	}
}

func TestClassifyReproducesPureTrainingLeaves(t *testing.T) {
	instances := rankingFixture()
	for _, ranking := range []Ranking{RankAscendingGain, RankDescendingGain} {
		tree, err := Builder{Ranking: ranking}.Build(instances)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, x := range instances {
			p, err := Classify(tree, x.Unlabeled())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.ID != x.ID || p.Class != x.Class {
				t.Errorf("%s: expected (%d, %s), got (%d, %s)", ranking, x.ID, x.Class, p.ID, p.Class)
			}
		}
	}
}

func TestClassifyThresholdGoesLeft(t *testing.T) {
	threshold := decimal.NewFromInt(80)
	tree := &Tree{Root: &Internal{
		Attribute: Pulse,
		Threshold: threshold,
		Left:      &Leaf{Incoming: LessOrEqual(threshold), Answer: SeverityOne},
		Right:     &Leaf{Incoming: Greater(threshold), Answer: SeverityThree},
	}}

	got, err := tree.Classify(NewVitals(0, 80, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SeverityOne {
		t.Fatalf("expected value equal to threshold to take the <= branch, got %s", got)
	}

	got, err = tree.Classify(NewVitals(0, 80.5, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SeverityThree {
		t.Fatalf("expected value above threshold to take the > branch, got %s", got)
	}
}

func TestClassifyMalformedTree(t *testing.T) {
	threshold := decimal.NewFromInt(10)
	tree := &Tree{Root: &Internal{
		Attribute: Breathing,
		Threshold: threshold,
		Left:      &Leaf{Incoming: LessOrEqual(threshold), Answer: SeverityOne},
		Right:     &Leaf{Incoming: LessOrEqual(threshold), Answer: SeverityTwo},
	}}

	_, err := Classify(tree, UnlabeledInstance{ID: 9, Vitals: NewVitals(0, 0, 20)})
	if !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("expected ErrMalformedTree, got %v", err)
	}

	if _, err := (*Tree)(nil).Classify(NewVitals(0, 0, 0)); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("expected ErrMalformedTree for nil tree, got %v", err)
	}
}

func TestLevelsBreadthFirst(t *testing.T) {
	tree, err := Build(rankingFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	levels := tree.Levels()
	sizes := make([]int, len(levels))
	for i, row := range levels {
		sizes[i] = len(row)
	}
	if want := []int{1, 2, 2, 2}; !reflect.DeepEqual(sizes, want) {
		t.Fatalf("expected level sizes %v, got %v", want, sizes)
	}
}
