package parallel

import (
	"image"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefault(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if got, want := pool.Workers(), runtime.GOMAXPROCS(0); got != want {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want %d", n, got, want)
		}
		pool.Close()
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if got := counter.Load(); got != 100 {
		t.Errorf("counter = %d, want 100", got)
	}
}

func TestWorkerPool_Closed(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("closed pool is running")
	}
	var counter atomic.Int64
	pool.ExecuteAll([]func(){func() { counter.Add(1) }, func() { counter.Add(1) }})
	if got := counter.Load(); got != 2 {
		t.Errorf("counter = %d, want 2", got)
	}
}

func TestBands(t *testing.T) {
	tests := []struct {
		name    string
		r       image.Rectangle
		n, rows int
		want    []image.Rectangle
	}{
		{
			name: "even",
			r:    image.Rect(0, 0, 5, 8), n: 2, rows: 1,
			want: []image.Rectangle{image.Rect(0, 0, 5, 4), image.Rect(0, 4, 5, 8)},
		},
		{
			name: "uneven",
			r:    image.Rect(0, 10, 1, 13), n: 2, rows: 1,
			want: []image.Rectangle{image.Rect(0, 10, 1, 11), image.Rect(0, 11, 1, 13)},
		},
		{
			name: "min rows caps bands",
			r:    image.Rect(0, 0, 4, 10), n: 8, rows: 4,
			want: []image.Rectangle{image.Rect(0, 0, 4, 5), image.Rect(0, 5, 4, 10)},
		},
		{
			name: "short",
			r:    image.Rect(0, 0, 4, 2), n: 8, rows: 4,
			want: []image.Rectangle{image.Rect(0, 0, 4, 2)},
		},
		{
			name: "empty",
			r:    image.Rectangle{}, n: 4, rows: 1,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bands(tt.r, tt.n, tt.rows)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Bands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForBands_CoversRect(t *testing.T) {
	r := image.Rect(-3, -7, 9, 200)
	var rows atomic.Int64
	ForBands(r, 1, func(b image.Rectangle) {
		rows.Add(int64(b.Dy()))
	})
	if got := rows.Load(); got != int64(r.Dy()) {
		t.Errorf("rows = %d, want %d", got, r.Dy())
	}
}
