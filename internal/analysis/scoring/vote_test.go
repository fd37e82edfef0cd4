package scoring

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"smc-trader/internal/analysis/smc"
	"smc-trader/internal/models"
)

func evts(direction smc.Direction, n int) []smc.PatternEvent {
	out := make([]smc.PatternEvent, n)
	for i := range out {
		out[i] = smc.PatternEvent{Pattern: smc.PatternBOS, Direction: direction, Level: 100}
	}
	return out
}

func TestVoteDefaultWeights(t *testing.T) {
	events := map[string][]smc.PatternEvent{
		NameBOS:        evts(smc.Long, 1),  // 2.0
		NameFVG:        evts(smc.Long, 2),  // 1.5
		NameEQH:        evts(smc.Short, 1), // 0.5
		NameInducement: evts(smc.Short, 1), // 2.5
	}
	signal, long, short := Vote(events, nil)
	if long != 3.5 || short != 3.0 {
		t.Fatalf("unexpected scores long=%v short=%v", long, short)
	}
	// 3.5 does not clear 3.0 * 1.2.
	if signal != models.SignalWait {
		t.Fatalf("expected WAIT on contested vote, got %v", signal)
	}
}

func TestVoteLongWins(t *testing.T) {
	events := map[string][]smc.PatternEvent{
		NameBOS:   evts(smc.Long, 2), // 4.0
		NameCHoCH: evts(smc.Short, 1),
	}
	signal, long, short := Vote(events, nil)
	if signal != models.SignalLong || long != 4.0 || short != 2.0 {
		t.Fatalf("expected long win, got %v long=%v short=%v", signal, long, short)
	}
}

func TestVoteShortWins(t *testing.T) {
	events := map[string][]smc.PatternEvent{
		NameLiquiditySweep:  evts(smc.Short, 1),
		NameMitigationBlock: evts(smc.Short, 1),
		NameOrderBlocks:     evts(smc.Long, 1),
	}
	signal, long, short := Vote(events, nil)
	if signal != models.SignalShort || long != 1.0 || short != 3.5 {
		t.Fatalf("expected short win, got %v long=%v short=%v", signal, long, short)
	}
}

func TestVoteDominanceEdge(t *testing.T) {
	weights := Weights{NameBOS: 1.2, NameCHoCH: 1.0}
	at := map[string][]smc.PatternEvent{
		NameBOS:   evts(smc.Long, 1),
		NameCHoCH: evts(smc.Short, 1),
	}
	// Exactly 1.2x is not enough.
	if signal, _, _ := Vote(at, weights); signal != models.SignalWait {
		t.Fatalf("expected WAIT at the dominance boundary, got %v", signal)
	}

	weights[NameBOS] = 1.21
	if signal, _, _ := Vote(at, weights); signal != models.SignalLong {
		t.Fatalf("expected LONG just past the boundary, got %v", signal)
	}
}

func TestVoteEmptyEvents(t *testing.T) {
	signal, long, short := Vote(map[string][]smc.PatternEvent{}, nil)
	if signal != models.SignalWait || long != 0 || short != 0 {
		t.Fatalf("expected neutral vote, got %v %v %v", signal, long, short)
	}
}

func TestVoteUnknownDetectorIgnored(t *testing.T) {
	events := map[string][]smc.PatternEvent{
		"custom_pattern": evts(smc.Long, 5),
	}
	signal, long, short := Vote(events, nil)
	if signal != models.SignalWait || long != 0 || short != 0 {
		t.Fatalf("expected names outside the order to be ignored, got %v %v %v", signal, long, short)
	}
}

func TestVoteWeightOverrides(t *testing.T) {
	events := map[string][]smc.PatternEvent{
		NameEQH: evts(smc.Long, 1),
	}
	_, long, _ := Vote(events, Weights{NameEQH: 4.0})
	if long != 4.0 {
		t.Fatalf("expected override weight, got %v", long)
	}
	// A weights table missing a name falls back to 1.0.
	_, long, _ = Vote(events, Weights{NameBOS: 9.0})
	if long != 1.0 {
		t.Fatalf("expected default weight 1.0, got %v", long)
	}
}

func TestProperty_VoteMirrorSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	countsGen := gen.SliceOfN(len(DetectorOrder)*2, gen.IntRange(0, 3))

	properties.Property("flipping every event direction swaps the scores and mirrors the signal", prop.ForAll(
		func(counts []int) bool {
			if len(counts) < len(DetectorOrder)*2 {
				return true
			}
			events := map[string][]smc.PatternEvent{}
			mirrored := map[string][]smc.PatternEvent{}
			for i, name := range DetectorOrder {
				longN, shortN := counts[2*i], counts[2*i+1]
				events[name] = append(evts(smc.Long, longN), evts(smc.Short, shortN)...)
				mirrored[name] = append(evts(smc.Short, longN), evts(smc.Long, shortN)...)
			}

			sig, long, short := Vote(events, nil)
			mSig, mLong, mShort := Vote(mirrored, nil)

			if long != mShort || short != mLong {
				return false
			}
			switch sig {
			case models.SignalLong:
				return mSig == models.SignalShort
			case models.SignalShort:
				return mSig == models.SignalLong
			default:
				return mSig == models.SignalWait
			}
		},
		countsGen,
	))

	properties.TestingRun(t)
}
