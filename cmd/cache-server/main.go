// Command cache-server runs one shard-owning node of a distributed cache.
// It loads a cluster config and a node config, validates them against each
// other, and serves the line protocol over TCP. Optionally exposes
// Prometheus metrics on a second listener.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kvshard/kvshard/config"
	"github.com/kvshard/kvshard/factory"
	pmet "github.com/kvshard/kvshard/metrics/prom"
	"github.com/kvshard/kvshard/node"
	"github.com/kvshard/kvshard/server"
)

func main() {
	clusterConfigPath := flag.String("cluster-config", "", "path to cluster config JSON (required)")
	nodeConfigPath := flag.String("node-config", "", "path to node config JSON (required)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics at addr (empty = disabled)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if *clusterConfigPath == "" || *nodeConfigPath == "" {
		log.Fatal().Msg("both --cluster-config and --node-config are required")
	}

	cc, err := config.LoadClusterConfig(*clusterConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load cluster config")
	}
	nc, err := config.LoadNodeConfig(*nodeConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load node config")
	}
	nodeCfg, err := config.BuildNodeConfig(cc, nc)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	f := factory.New()
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		f.SetMetrics(pmet.New(reg, "kvshard", nodeCfg.NodeID, nil))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			log.Info().Str("addr", *metricsAddr).Msg("serving prometheus metrics")
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	n, err := node.New(nodeCfg, f)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct cache node")
	}

	srv := server.New(n, log)
	addr := fmt.Sprintf("%s:%d", nc.Host, nc.Port)

	log.Info().
		Str("node_id", nodeCfg.NodeID).
		Int("n_shards", nodeCfg.NShards).
		Ints("owned_shards", nodeCfg.OwnedShards).
		Int("capacity", nodeCfg.Capacity).
		Str("policy", string(nodeCfg.Policy)).
		Msg("starting cache-server")

	if err := srv.ListenAndServe(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
