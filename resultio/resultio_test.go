// Copyright 2024 The Amdados Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resultio

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_append_roundtrip(tst *testing.T) {
	chk.PrintTitle("append_roundtrip. write then read back exact records")
	path := filepath.Join(tst.TempDir(), "field.bin")
	w, err := Open(path)
	if err != nil {
		tst.Fatalf("open: %v", err)
	}
	want := []Record{
		{TimeIndex: 0, GlobalX: 1, GlobalY: 2, Value: 3.5},
		{TimeIndex: 1, GlobalX: 0, GlobalY: 0, Value: -1.25},
	}
	for _, r := range want {
		if err := w.Append(r.TimeIndex, r.GlobalX, r.GlobalY, r.Value); err != nil {
			tst.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		tst.Fatalf("close: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		tst.Fatalf("readAll: %v", err)
	}
	if len(got) != len(want) {
		tst.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			tst.Fatalf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func Test_append_is_safe_for_concurrent_writers(tst *testing.T) {
	chk.PrintTitle("append_concurrent. no torn records under concurrent append")
	path := filepath.Join(tst.TempDir(), "field.bin")
	w, err := Open(path)
	if err != nil {
		tst.Fatalf("open: %v", err)
	}
	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := w.Append(i, i, i, float64(i)); err != nil {
				tst.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if err := w.Close(); err != nil {
		tst.Fatalf("close: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		tst.Fatalf("readAll: %v", err)
	}
	if len(got) != n {
		tst.Fatalf("got %d records, want %d (a torn write would drop or duplicate entries)", len(got), n)
	}
	seen := make(map[int]bool, n)
	for _, r := range got {
		if r.TimeIndex != r.GlobalX || r.GlobalX != r.GlobalY || float64(r.TimeIndex) != r.Value {
			tst.Fatalf("torn record: %+v", r)
		}
		seen[r.TimeIndex] = true
	}
	if len(seen) != n {
		tst.Fatalf("expected %d distinct records, saw %d", n, len(seen))
	}
}
