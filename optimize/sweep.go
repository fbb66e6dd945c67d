package optimize

import (
	"context"
	"errors"
	"log"

	"github.com/cheggaaa/pb/v3"
	"github.com/mudesheng/ssdbg/asm"
	"github.com/mudesheng/ssdbg/config"
)

// ErrNoResult no configuration of the sweep produced a contig
var ErrNoResult = errors.New("no configuration produced contigs")

type SweepOpt struct {
	Progress bool
	Hook     asm.GraphHook
}

// Sweep runs every configuration in order and keeps the result of the best scoring one.
// A configuration that fails is recorded in ledger and skipped. ledger may be nil.
// When ctx is done the sweep stops before the next configuration and returns the best
// result so far together with ctx.Err().
func Sweep(ctx context.Context, reads [][]byte, cfgs []config.Config, ledger *Ledger, opt SweepOpt) (best *asm.Result, bestScore float64, err error) {
	var bar *pb.ProgressBar
	if opt.Progress {
		bar = pb.Full.Start64(int64(len(cfgs)))
		defer bar.Finish()
	}
	for i, cfg := range cfgs {
		if err = ctx.Err(); err != nil {
			return best, bestScore, err
		}
		run := Run{Config: cfg}
		res, rerr := asm.RunHook(reads, cfg, opt.Hook)
		if rerr != nil {
			log.Printf("[Sweep] config %d kmer_length=%d failed: %v\n", i, cfg.Kmer, rerr)
			run.Err = rerr.Error()
		} else {
			run.Config = res.Config
			run.Stat = res.Stat
			run.Score = Score(res.Stat)
			if res.Stat.Count > 0 && (best == nil || run.Score > bestScore) {
				best, bestScore = res, run.Score
			}
		}
		if ledger != nil {
			// a finished run is recorded even if ctx was canceled meanwhile
			if err = ledger.Record(context.WithoutCancel(ctx), &run); err != nil {
				return best, bestScore, err
			}
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if best == nil {
		return nil, 0, ErrNoResult
	}
	log.Printf("[Sweep] best kmer_length=%d score=%.1f N50=%d\n", best.Config.Kmer, bestScore, best.Stat.N50)
	return best, bestScore, nil
}
