// Copyright (c) 2024 The Solum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rent

import "github.com/solum-network/solum/metrics"

var (
	metricSettlementCount = metrics.LazyLoadCounter("rent_settlement_count")
	metricEvictionCount   = metrics.LazyLoadCounter("rent_eviction_count")
	metricScheduleSize    = metrics.LazyLoadGauge("rent_schedule_size")
)
