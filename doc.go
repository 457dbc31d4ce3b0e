// Copyright (c) 2013-2014 The btcsuite developers
// Copyright (c) 2015-2024 The Decred developers
// Copyright (c) 2024-2026 The Palladium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
plmd is the Palladium proof of work chain daemon.

It validates blocks against the difficulty rules of the chain, which switch
from the legacy retarget to a linearly weighted moving average at a fixed
height, along with the auxiliary proof of work (merge mining) rules.  Accepted
headers are persisted to a leveldb database in the data directory.  On the
regression test network it can also mine blocks with the CPU, including merge
mined ones once the auxiliary proof of work is active.

Usage:

	plmd [OPTIONS]

Application Options:

	-V, --version        Display version information and exit
	-A, --appdata=       Path to application home directory
	-b, --datadir=       Directory to store data
	    --logdir=        Directory to log output
	    --nofilelogging  Disable file logging
	-d, --debuglevel=    Logging level for all subsystems {trace, debug,
	                     info, warn, error, critical} -- You may also specify
	                     <subsystem>=<level>,<subsystem2>=<level>,... to set
	                     the log level for individual subsystems -- Use show
	                     to list available subsystems (info)
	    --testnet        Use the test network
	    --regnet         Use the regression test network
	    --auxpowheight=  Height at which blocks must be merge mined with an
	                     auxpow (regnet only)
	    --generate       Generate (mine) blocks using the CPU
	    --numblocks=     Number of blocks to generate before shutting down --
	                     0 mines until shutdown
	    --miningworkers= Number of CPU mining workers when continuously
	                     mining (1)
	    --payscript=     Hex encoded script generated coinbases pay to

Help Options:

	-h, --help           Show this help message
*/
package main
