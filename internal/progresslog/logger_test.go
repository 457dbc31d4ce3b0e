// Copyright (c) 2021 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package progresslog

import (
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/palladium-coin/plmd/wire"
)

var (
	backendLog = slog.NewBackend(io.Discard)
	testLog    = backendLog.Logger("TEST")
)

// TestLogProgress ensures the logging functionality works as expected via a
// test logger.
func TestLogProgress(t *testing.T) {
	testBlocks := []wire.MsgBlock{{
		Header: wire.BlockHeader{
			Version:   wire.BaseVersion,
			Timestamp: time.Unix(1293623863, 0), // 2010-12-29 11:57:43 +0000 UTC
		},
		Transactions: make([]*wire.MsgTx, 4),
	}, {
		Header: wire.BlockHeader{
			Version:   wire.BaseVersion | wire.AuxPowVersionBit,
			Timestamp: time.Unix(1293624163, 0), // 2010-12-29 12:02:43 +0000 UTC
		},
		Transactions: make([]*wire.MsgTx, 2),
	}, {
		Header: wire.BlockHeader{
			Version:   wire.BaseVersion | wire.AuxPowVersionBit,
			Timestamp: time.Unix(1293624463, 0), // 2010-12-29 12:07:43 +0000 UTC
		},
		Transactions: make([]*wire.MsgTx, 3),
	}}

	tests := []struct {
		name               string
		reset              bool
		inputBlock         *wire.MsgBlock
		inputHeight        int64
		forceLog           bool
		inputLastLogTime   time.Time
		wantReceivedBlocks uint64
		wantReceivedTxns   uint64
		wantReceivedAuxPow uint64
	}{{
		name:               "round 1, block 0, last log time < 10 secs ago, not forced",
		inputBlock:         &testBlocks[0],
		inputHeight:        100000,
		forceLog:           false,
		inputLastLogTime:   time.Now(),
		wantReceivedBlocks: 1,
		wantReceivedTxns:   4,
		wantReceivedAuxPow: 0,
	}, {
		name:               "round 1, block 1, last log time < 10 secs ago, not forced",
		inputBlock:         &testBlocks[1],
		inputHeight:        100001,
		forceLog:           false,
		inputLastLogTime:   time.Now(),
		wantReceivedBlocks: 2,
		wantReceivedTxns:   6,
		wantReceivedAuxPow: 1,
	}, {
		name:               "round 1, block 2, last log time < 10 secs ago, forced",
		inputBlock:         &testBlocks[2],
		inputHeight:        100002,
		forceLog:           true,
		inputLastLogTime:   time.Now(),
		wantReceivedBlocks: 0,
		wantReceivedTxns:   0,
		wantReceivedAuxPow: 0,
	}, {
		name:               "round 2, block 0, last log time < 10 secs ago, not forced",
		reset:              true,
		inputBlock:         &testBlocks[0],
		inputHeight:        100000,
		forceLog:           false,
		inputLastLogTime:   time.Now(),
		wantReceivedBlocks: 1,
		wantReceivedTxns:   4,
		wantReceivedAuxPow: 0,
	}, {
		name:               "round 2, block 1, last log time > 10 secs ago, not forced",
		inputBlock:         &testBlocks[1],
		inputHeight:        100001,
		forceLog:           false,
		inputLastLogTime:   time.Now().Add(-11 * time.Second),
		wantReceivedBlocks: 0,
		wantReceivedTxns:   0,
		wantReceivedAuxPow: 0,
	}, {
		name:               "round 2, block 2, last log time > 10 secs ago, forced",
		inputBlock:         &testBlocks[2],
		inputHeight:        100002,
		forceLog:           true,
		inputLastLogTime:   time.Now().Add(-11 * time.Second),
		wantReceivedBlocks: 0,
		wantReceivedTxns:   0,
		wantReceivedAuxPow: 0,
	}}

	progressLogger := New("Processed", testLog)
	for _, test := range tests {
		if test.reset {
			progressLogger = New("Processed", testLog)
		}
		progressLogger.SetLastLogTime(test.inputLastLogTime)
		progressLogger.LogProgress(test.inputBlock, test.inputHeight,
			test.forceLog)
		wantBlockProgressLogger := &Logger{
			receivedBlocks:  test.wantReceivedBlocks,
			receivedTxns:    test.wantReceivedTxns,
			receivedAuxPow:  test.wantReceivedAuxPow,
			lastLogTime:     progressLogger.lastLogTime,
			progressAction:  progressLogger.progressAction,
			subsystemLogger: progressLogger.subsystemLogger,
		}
		if !reflect.DeepEqual(progressLogger, wantBlockProgressLogger) {
			t.Errorf("%s:\nwant: %+v\ngot: %+v\n", test.name,
				wantBlockProgressLogger, progressLogger)
		}
	}
}
