package optimize

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mudesheng/ssdbg/asm"
	"github.com/mudesheng/ssdbg/config"
	"github.com/mudesheng/ssdbg/constructdbg"
	"github.com/mudesheng/ssdbg/findpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReads() [][]byte {
	rnd := rand.New(rand.NewSource(42))
	genome := make([]byte, 200)
	for i := range genome {
		genome[i] = "ACGT"[rnd.Intn(4)]
	}
	var reads [][]byte
	for s := 0; s+50 <= len(genome); s += 5 {
		reads = append(reads, genome[s:s+50])
	}
	return reads
}

func TestScore(t *testing.T) {
	assert.Equal(t, 0.0, Score(findpath.AsmStat{}))
	assert.InDelta(t, 0.6*1000+0.4*500, Score(findpath.AsmStat{Count: 3, TotalLen: 1000, N50: 500}), 1e-9)
}

func TestConfigs(t *testing.T) {
	base := config.Default(21)
	cfgs := DefaultGrid().Configs(base)
	// 3 kmer * 2 count * 2 tip * (2 bubble lengths + 1 without popping)
	assert.Len(t, cfgs, 36)
	for _, cfg := range cfgs {
		if !cfg.PopBubbles {
			assert.Equal(t, base.MaxBubbleLen, cfg.MaxBubbleLen)
		}
		assert.Equal(t, base.MinContigLen, cfg.MinContigLen)
		assert.NoError(t, cfg.Validate())
	}
	assert.Equal(t, 17, cfgs[0].Kmer)
	assert.Equal(t, 21, cfgs[len(cfgs)-1].Kmer)

	cfgs = Grid{}.Configs(base)
	require.Len(t, cfgs, 1)
	assert.Equal(t, base, cfgs[0])
}

func TestLoadGrid(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "grid.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("kmer_length: [15, 25]\npop_bubbles: [true]\nmax_bubble_len: [4, 8]\n"), 0644))
	g, err := LoadGrid(fn)
	require.NoError(t, err)
	assert.Equal(t, []int{15, 25}, g.Kmer)
	assert.Equal(t, []bool{true}, g.PopBubbles)
	assert.Len(t, g.Configs(config.Default(21)), 4)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("kmer: [15]\n"), 0644))
	_, err = LoadGrid(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	g, err = LoadGrid(empty)
	require.NoError(t, err)
	assert.Equal(t, Grid{}, g)

	_, err = LoadGrid(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "sweep.db"))
	require.NoError(t, err)
	defer ledger.Close()

	g := Grid{Kmer: []int{21, 60}, MinContigLen: []int{100, 300}}
	cfgs := g.Configs(config.Default(21))
	require.Len(t, cfgs, 4)
	best, score, err := Sweep(ctx, testReads(), cfgs, ledger, SweepOpt{})
	require.NoError(t, err)
	assert.Equal(t, 21, best.Config.Kmer)
	assert.Equal(t, 100, best.Config.MinContigLen)
	assert.InDelta(t, 200.0, score, 1e-9)

	runs, err := ledger.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Empty(t, runs[0].Err)
	assert.Equal(t, 1, runs[0].Stat.Count)
	assert.Empty(t, runs[1].Err)
	assert.Equal(t, 0, runs[1].Stat.Count)
	assert.Equal(t, 0.0, runs[1].Score)
	// kmer_length 60 is longer than every read
	assert.Contains(t, runs[2].Err, "kmer_length")
	assert.Contains(t, runs[3].Err, "kmer_length")
	assert.Equal(t, 60, runs[3].Config.Kmer)

	r, err := ledger.Best(ctx)
	require.NoError(t, err)
	assert.Equal(t, runs[0].ID, r.ID)
	assert.Equal(t, 21, r.Config.Kmer)
	assert.Equal(t, 200, r.Stat.N50)
}

func TestSweepNoResult(t *testing.T) {
	cfg := config.Default(21)
	cfg.MinContigLen = 1000
	_, _, err := Sweep(context.Background(), testReads(), []config.Config{cfg}, nil, SweepOpt{})
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestSweepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	best, _, err := Sweep(ctx, testReads(), []config.Config{config.Default(21)}, nil, SweepOpt{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, best)
}

func TestSweepCanceledKeepsBest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "sweep.db"))
	require.NoError(t, err)
	defer ledger.Close()

	cfgs := []config.Config{config.Default(21), config.Default(19)}
	hook := func(stage string, g *constructdbg.DBG) error {
		if stage == asm.StageAfterSmfy {
			cancel()
		}
		return nil
	}
	best, score, err := Sweep(ctx, testReads(), cfgs, ledger, SweepOpt{Hook: hook})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, best)
	assert.Equal(t, 21, best.Config.Kmer)
	assert.InDelta(t, 200.0, score, 1e-9)

	runs, err := ledger.Runs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
