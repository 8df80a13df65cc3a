package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"

	"whitted/camera"
	"whitted/rendercache"
	"whitted/vmath/vec3"
)

func TestProgressPrinter(t *testing.T) {
	buf := &bytes.Buffer{}
	p := &progressPrinter{
		out:     buf,
		limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
		enabled: true,
	}

	p.Progress(1, 4) // uses the only token
	p.Progress(2, 4) // throttled
	p.Progress(3, 4) // throttled
	p.Progress(4, 4) // final update always printed

	want := "\r1/4 25%\r4/4 100%\n"
	if diff := cmp.Diff(buf.String(), want); diff != "" {
		t.Errorf("output: diff (-got +want)\n%s", diff)
	}
}

func TestProgressPrinterDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	p := &progressPrinter{out: buf, limiter: rate.NewLimiter(rate.Inf, 1)}

	p.Progress(4, 4)
	if buf.Len() != 0 {
		t.Errorf("disabled printer wrote %q, want nothing", buf.String())
	}
}

func TestVecFlag(t *testing.T) {
	got, err := vecFlag("eye", []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("vecFlag: %v", err)
	}
	if diff := cmp.Diff(got, vec3.T{1, 2, 3}); diff != "" {
		t.Errorf("vecFlag: diff (-got +want)\n%s", diff)
	}

	if _, err := vecFlag("eye", []float64{1, 2}); err == nil {
		t.Errorf("vecFlag with two values: got nil error, want non-nil")
	}
}

func TestCacheKey(t *testing.T) {
	scene := []byte("1 100 0 0 0")
	base := cacheKey(scene, nil, camera.Default(), 100, false)

	moved := camera.Default()
	moved.Eye = vec3.T{1, 2, 3}

	testCases := []struct {
		desc string
		key  func() rendercache.Key
	}{
		{desc: "camera", key: func() rendercache.Key { return cacheKey(scene, nil, moved, 100, false) }},
		{desc: "size", key: func() rendercache.Key { return cacheKey(scene, nil, camera.Default(), 200, false) }},
		{desc: "floor", key: func() rendercache.Key { return cacheKey(scene, nil, camera.Default(), 100, true) }},
		{desc: "texture", key: func() rendercache.Key { return cacheKey(scene, []byte{1}, camera.Default(), 100, false) }},
		{desc: "scene", key: func() rendercache.Key { return cacheKey([]byte("2 100 0 0 0"), nil, camera.Default(), 100, false) }},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if tc.key() == base {
				t.Errorf("changing the %s did not change the cache key", tc.desc)
			}
		})
	}

	if again := cacheKey(scene, nil, camera.Default(), 100, false); again != base {
		t.Errorf("cacheKey is not stable: got %v then %v", base, again)
	}
}

func TestWarnOnCloseReportsFailure(t *testing.T) {
	closeErr := errors.New("flush failed")
	calls := 0
	got := warnOnClose("output", func() error {
		calls++
		return closeErr
	})
	if calls != 1 {
		t.Errorf("close calls: got %d, want 1", calls)
	}
	if !errors.Is(got, closeErr) {
		t.Errorf("warnOnClose: got %v, want %v", got, closeErr)
	}

	if err := warnOnClose("cache", func() error { return nil }); err != nil {
		t.Errorf("warnOnClose of clean close: got %v, want nil", err)
	}
}
