package fluid

import (
	"sync/atomic"
	"testing"
)

func TestPoolPartitionCoversRows(t *testing.T) {
	for _, tc := range []struct{ workers, rows int }{
		{1, 10}, {4, 10}, {3, 9}, {8, 5}, {16, 90}, {64, 1},
	} {
		p := NewPool(tc.workers, tc.rows)
		next := 1
		minSize, maxSize := tc.rows, 0
		for i := 0; i < p.Bands(); i++ {
			y0, y1 := p.Band(i)
			if y0 != next {
				t.Errorf("workers=%d rows=%d: band %d starts at %d, want %d", tc.workers, tc.rows, i, y0, next)
			}
			size := y1 - y0 + 1
			minSize = min(minSize, size)
			maxSize = max(maxSize, size)
			next = y1 + 1
		}
		if next != tc.rows+1 {
			t.Errorf("workers=%d rows=%d: bands end at %d", tc.workers, tc.rows, next-1)
		}
		if maxSize-minSize > 1 {
			t.Errorf("workers=%d rows=%d: band sizes differ by %d", tc.workers, tc.rows, maxSize-minSize)
		}
		p.Close()
	}
}

func TestPoolRunVisitsEveryRowOnce(t *testing.T) {
	p := NewPool(4, 37)
	defer p.Close()

	var hits [38]atomic.Int32
	for range 10 {
		p.Run(func(_, y0, y1 int) {
			for y := y0; y <= y1; y++ {
				hits[y].Add(1)
			}
		})
	}
	for y := 1; y <= 37; y++ {
		if n := hits[y].Load(); n != 10 {
			t.Errorf("row %d visited %d times, want 10", y, n)
		}
	}
	if hits[0].Load() != 0 {
		t.Error("halo row should never be dispatched")
	}
}

func TestPoolRunJoinsBeforeReturning(t *testing.T) {
	p := NewPool(8, 64)
	defer p.Close()

	var done atomic.Int32
	p.Run(func(_, _, _ int) { done.Add(1) })
	if int(done.Load()) != p.Bands() {
		t.Errorf("Run returned after %d of %d bands", done.Load(), p.Bands())
	}
}

func TestPoolResize(t *testing.T) {
	p := NewPool(4, 100)
	defer p.Close()
	p.Resize(3)
	if p.Bands() != 3 {
		t.Errorf("expected 3 bands after resize, got %d", p.Bands())
	}
	if _, y1 := p.Band(2); y1 != 3 {
		t.Errorf("last band should end at row 3, got %d", y1)
	}
}

func TestPoolWorkerDefaults(t *testing.T) {
	p := NewPool(0, 10)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("expected at least one worker, got %d", p.Workers())
	}
	q := NewPool(1000, 10)
	defer q.Close()
	if q.Workers() != MaxWorkers {
		t.Errorf("expected cap %d, got %d", MaxWorkers, q.Workers())
	}
}
