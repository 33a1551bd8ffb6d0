// Copyright 2025 The caddy-sslhaf Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sslhaf

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sslhaf/caddy-sslhaf/clienthello"
)

var sslhafMetrics = struct {
	init        sync.Once
	connections *prometheus.CounterVec
}{
	init: sync.Once{},
}

func initMetrics() {
	sslhafMetrics.connections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caddy",
		Subsystem: "sslhaf",
		Name:      "connections_total",
		Help:      "Connections whose first record was inspected, by outcome.",
	}, []string{"outcome"})
}

// outcomeLabel maps a sniffer failure to a bounded metric label.
func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, clienthello.ErrNotTLS):
		return "not_tls"
	case errors.Is(err, clienthello.ErrInsufficientHeader):
		return "short_header"
	case errors.Is(err, clienthello.ErrRecordTooLarge), errors.Is(err, clienthello.ErrZeroLength):
		return "bad_length"
	default:
		return "malformed"
	}
}
