// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages accounts and their storage.
// It follows the flow as below:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ playback ] -> [ kv batch ]
//	          |
//	  [ account cache ]
//	          |
//	  [ read-only store ]
//
// Accounts carry the rent record fields (rent balance, last-paid height,
// storage word count) next to the ordinary balance/code fields. The storage
// word count is maintained here, on every zero<->non-zero slot transition,
// so it stays exact no matter which handler performs the write.
package state
