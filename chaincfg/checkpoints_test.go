// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2024 The Shield developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "testing"

func TestCheckpointTableWellFormed(t *testing.T) {
	for i, cp := range MainNetCheckpoints {
		if len(cp.Hash) != 64 {
			t.Errorf("checkpoint %d: hash %q is not 64 hex chars", i, cp.Hash)
		}
		if cp.Target == nil || cp.Target.Sign() <= 0 {
			t.Errorf("checkpoint %d: target must be positive", i)
		}
		if cp.Timestamp <= 0 {
			t.Errorf("checkpoint %d: timestamp must be positive", i)
		}
		if i > 0 && cp.Timestamp <= MainNetCheckpoints[i-1].Timestamp {
			t.Errorf("checkpoint %d: timestamps must increase", i)
		}
	}
}

func TestCheckpointTargetsTighten(t *testing.T) {
	for i := 1; i < len(MainNetCheckpoints); i++ {
		prev, cur := MainNetCheckpoints[i-1].Target, MainNetCheckpoints[i].Target
		if cur.Cmp(prev) >= 0 {
			t.Errorf("checkpoint %d: target did not tighten (%x >= %x)", i, cur, prev)
		}
	}
}
